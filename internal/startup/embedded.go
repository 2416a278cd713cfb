package startup

import (
	"fmt"
	"os"
	"path/filepath"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"

	"github.com/sololeveling/internal/config"
	"github.com/sololeveling/internal/logger"
)

// StartEmbeddedPostgres запускает локальный PostgreSQL (режим -embedded-db) и
// переключает cfg на postgres-хранилище с этим адресом. Вызывающий обязан вызвать Stop.
func StartEmbeddedPostgres(cfg *config.Config, dataDir string, port uint32) (*embeddedpostgres.EmbeddedPostgres, error) {
	const (
		user     = "solo"
		password = "solo_secret"
		database = "solo"
	)
	if dataDir == "" {
		dataDir = filepath.Join(".", ".pgdata")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create pgdata dir: %w", err)
	}

	db := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(port).
			Username(user).
			Password(password).
			Database(database).
			DataPath(dataDir).
			RuntimePath(filepath.Join(os.TempDir(), "solo-embedded-pg-runtime")),
	)

	logger.Info("starting embedded PostgreSQL...")
	if err := db.Start(); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	cfg.Storage.Backend = "postgres"
	cfg.Storage.DatabaseURL = fmt.Sprintf(
		"postgres://%s:%s@localhost:%d/%s?sslmode=disable",
		user, password, port, database,
	)
	logger.Infof("embedded PostgreSQL running on port %d", port)
	return db, nil
}
