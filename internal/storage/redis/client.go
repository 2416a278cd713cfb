package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix — пространство имён ключей клиента в общей БД Redis.
const DefaultPrefix = "solo:"

type Client struct {
	cli    *redis.Client
	prefix string
}

// New подключается по URL (redis://host:6379/0) и проверяет соединение PING.
func New(ctx context.Context, url, prefix string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis parse url: %w", err)
	}
	cli := redis.NewClient(opts)
	if err := cli.Ping(ctx).Err(); err != nil {
		if closeErr := cli.Close(); closeErr != nil {
			return nil, fmt.Errorf("redis ping: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Client{cli: cli, prefix: prefix}, nil
}

func (c *Client) Close() error {
	return c.cli.Close()
}

func (c *Client) key(k string) string { return c.prefix + k }

// Get возвращает значение; redis.Nil означает отсутствие ключа, а не ошибку.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.cli.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// SetMany пишет все пары в одной транзакции MULTI/EXEC: другой читатель не увидит половину сессии.
func (c *Client) SetMany(ctx context.Context, values map[string]string) error {
	_, err := c.cli.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for k, v := range values {
			p.Set(ctx, c.key(k), v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete удаляет ключи одной командой DEL.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.cli.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// flushPrefix удаляет все ключи клиента (сброс сессий при тестах).
func (c *Client) flushPrefix(ctx context.Context) error {
	iter := c.cli.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.cli.Del(ctx, keys...).Err()
}
