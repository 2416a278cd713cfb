package memory

import (
	"context"
	"sync"
)

// Client хранит значения в памяти процесса: режим -dev веб-клиента и тесты.
type Client struct {
	mu   sync.RWMutex
	vals map[string]string
}

func New() *Client {
	return &Client{vals: make(map[string]string)}
}

func (c *Client) Close() error { return nil }

func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vals[key]
	return v, ok, nil
}

func (c *Client) SetMany(ctx context.Context, values map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range values {
		c.vals[k] = v
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.vals, k)
	}
	return nil
}

// Len — число ключей (для тестов очистки сессии).
func (c *Client) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vals)
}
