package main

import (
	"context"
	"os"
	"time"

	"github.com/redundancy-gate/gateway/internal/config"
	"github.com/redundancy-gate/gateway/internal/record/repository"
	"github.com/redundancy-gate/gateway/pkg/logger"
)

// migrate creates the records table (or collection/index) for the configured driver.
func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open %s store: %v", cfg.Store.Driver, err)
	}
	defer closeStore()

	m, ok := store.(repository.Migrator)
	if !ok {
		logger.Infof("%s store has no schema to migrate", cfg.Store.Driver)
		return
	}
	if err := m.Migrate(ctx); err != nil {
		closeStore()
		logger.Fatalf("migrate %s (%s): %v", cfg.Store.Table, cfg.Store.Driver, err)
	}
	logger.Infof("migrated %s on %s (unique=%v)", cfg.Store.Table, cfg.Store.Driver, cfg.Store.UniqueContent)
}
