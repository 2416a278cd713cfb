package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// DefaultPath — ~/.solo/session.json; пустая строка, если домашний каталог не определён.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".solo", "session.json")
}

// Client хранит все ключи одним JSON-документом на диске (аналог localStorage для CLI).
// Каждая запись переписывает файл целиком через временный файл и rename,
// поэтому читатель видит либо старое, либо новое содержимое.
type Client struct {
	mu   sync.Mutex
	path string
}

func New(path string) (*Client, error) {
	if path == "" {
		return nil, errors.New("file storage: empty path")
	}
	return &Client{path: path}, nil
}

// Path — путь к файлу сессии (выводится в whoami).
func (c *Client) Path() string { return c.path }

func (c *Client) Close() error { return nil }

func (c *Client) load() (map[string]string, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file storage read: %w", err)
	}
	vals := map[string]string{}
	if len(data) == 0 {
		return vals, nil
	}
	if err := json.Unmarshal(data, &vals); err != nil {
		return nil, fmt.Errorf("file storage decode %s: %w", c.path, err)
	}
	return vals, nil
}

func (c *Client) save(vals map[string]string) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("file storage mkdir: %w", err)
	}
	data, err := json.MarshalIndent(vals, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file storage temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file storage write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file storage chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file storage close: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file storage rename: %w", err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vals, err := c.load()
	if err != nil {
		return "", false, err
	}
	v, ok := vals[key]
	return v, ok, nil
}

func (c *Client) SetMany(ctx context.Context, values map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	vals, err := c.load()
	if err != nil {
		return err
	}
	for k, v := range values {
		vals[k] = v
	}
	return c.save(vals)
}

// Delete удаляет ключи; если после удаления документ пуст, файл удаляется целиком.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	vals, err := c.load()
	if err != nil {
		return err
	}
	changed := false
	for _, k := range keys {
		if _, ok := vals[k]; ok {
			delete(vals, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if len(vals) == 0 {
		if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file storage remove: %w", err)
		}
		return nil
	}
	return c.save(vals)
}
