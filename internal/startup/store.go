package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/sololeveling/internal/config"
	"github.com/sololeveling/internal/logger"
	"github.com/sololeveling/internal/storage"
	"github.com/sololeveling/internal/storage/file"
	"github.com/sololeveling/internal/storage/memory"
	"github.com/sololeveling/internal/storage/postgres"
)

// OpenStore открывает хранилище сессий по storage.backend.
// maxWait ограничивает ожидание Redis/Postgres (CLI — несколько секунд, веб — минута).
func OpenStore(ctx context.Context, cfg config.StorageConfig, maxWait time.Duration, logPrefix string) (storage.Store, error) {
	backend, err := storage.ParseBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	switch backend {
	case storage.BackendMemory:
		return memory.New(), nil
	case storage.BackendRedis:
		rc, err := ConnectRedisWithRetry(ctx, cfg.RedisURL, cfg.RedisPrefix, maxWait, logPrefix)
		if err != nil {
			return nil, err
		}
		return rc, nil
	case storage.BackendPostgres:
		pool, err := ConnectDBWithRetry(ctx, cfg.DatabaseURL, cfg.DBMaxConnections, maxWait, logPrefix)
		if err != nil {
			return nil, err
		}
		pg := postgres.New(pool)
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	default:
		path := cfg.FilePath
		if path == "" {
			path = file.DefaultPath()
		}
		fc, err := file.New(path)
		if err != nil {
			return nil, fmt.Errorf("%w (задайте SOLO_SESSION_FILE)", err)
		}
		logger.Debugf("%ssession file %s", logPrefix, path)
		return fc, nil
	}
}
