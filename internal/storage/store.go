package storage

import (
	"context"
	"errors"
)

// Backend — имя реализации хранилища в конфиге (storage.backend / SOLO_STORAGE).
type Backend string

const (
	BackendFile     Backend = "file"
	BackendMemory   Backend = "memory"
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
)

// ErrUnknownBackend — в конфиге указан backend, которого нет.
var ErrUnknownBackend = errors.New("storage: unknown backend")

// Store — долговременное key/value хранилище клиента (аналог localStorage браузера).
// Реализации: file.Client (CLI), memory.Client (-dev и тесты), redis.Client, postgres.Client.
type Store interface {
	// Get возвращает значение и признак наличия ключа. Отсутствие ключа — не ошибка.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetMany записывает все пары одной операцией: либо все, либо ни одной.
	SetMany(ctx context.Context, values map[string]string) error
	// Delete удаляет ключи; отсутствующие ключи игнорируются.
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// ParseBackend проверяет имя backend из конфига.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendFile, BackendMemory, BackendRedis, BackendPostgres:
		return b, nil
	case "":
		return BackendFile, nil
	default:
		return "", errors.Join(ErrUnknownBackend, errors.New(s))
	}
}
