package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sololeveling/internal/logger"
	"github.com/sololeveling/migrations"
)

// Client хранит пары ключ/значение в таблице client_storage.
// Используется веб-клиентом, когда несколько экземпляров делят одни сессии браузеров.
type Client struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Client {
	return &Client{pool: pool}
}

// Close закрывает пул соединений.
func (c *Client) Close() error {
	c.pool.Close()
	return nil
}

// Migrate применяет встроенные миграции по порядку имён файлов (001, 002, ...).
func (c *Client) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations.Files, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := migrations.Files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := c.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("run migration %s: %w", name, err)
		}
	}
	logger.Infof("postgres storage: %d migrations applied", len(names))
	return nil
}

func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	defer logger.DeferLogDuration("storage.postgres.Get", time.Now())()
	var val string
	err := c.pool.QueryRow(ctx, `SELECT value FROM client_storage WHERE key = $1`, key).Scan(&val)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("storage.postgres.Get: %w", err)
	}
	return val, true, nil
}

// SetMany записывает пары в одной транзакции (upsert по key).
func (c *Client) SetMany(ctx context.Context, values map[string]string) error {
	defer logger.DeferLogDuration("storage.postgres.SetMany", time.Now())()
	err := pgx.BeginFunc(ctx, c.pool, func(tx pgx.Tx) error {
		for k, v := range values {
			if _, err := tx.Exec(ctx,
				`INSERT INTO client_storage (key, value, updated_at) VALUES ($1, $2, NOW())
				 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
				k, v,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("storage.postgres.SetMany: %w", err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, keys ...string) error {
	defer logger.DeferLogDuration("storage.postgres.Delete", time.Now())()
	if len(keys) == 0 {
		return nil
	}
	if _, err := c.pool.Exec(ctx, `DELETE FROM client_storage WHERE key = ANY($1)`, keys); err != nil {
		return fmt.Errorf("storage.postgres.Delete: %w", err)
	}
	return nil
}
