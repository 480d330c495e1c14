package repository

import (
	"context"
	"fmt"

	"github.com/redundancy-gate/gateway/internal/config"
	"github.com/redundancy-gate/gateway/internal/database"
	"github.com/redundancy-gate/gateway/internal/storage"
	"github.com/redundancy-gate/gateway/pkg/logger"
)

// Open builds the Store selected by cfg.Store.Driver. The returned cleanup
// releases connections and is never nil.
func Open(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	noop := func() {}
	table := cfg.Store.Table

	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warnf("using in-memory store; records are lost on restart")
		return NewMemoryStore(), noop, nil

	case config.DriverSupabase:
		s, err := NewRESTStore(cfg.Supabase.URL, cfg.Supabase.Key, table)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil

	case config.DriverPostgres:
		db, err := database.ConnectPostgres(cfg.Postgres.DSN, database.PostgresOptions{
			MaxOpen: cfg.Postgres.MaxOpen,
			MaxIdle: cfg.Postgres.MaxIdle,
			MaxLife: cfg.Postgres.MaxLife,
		})
		if err != nil {
			return nil, noop, err
		}
		s, err := NewPostgresStore(db, table, cfg.Store.UniqueContent)
		if err != nil {
			if sqlDB, derr := db.DB(); derr == nil {
				_ = sqlDB.Close()
			}
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, noop, err
		}
		s, err := NewSQLiteStore(ctx, db, table, cfg.Store.UniqueContent)
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil

	case config.DriverMongo:
		db, err := database.ConnectMongo(ctx, cfg.MongoDB)
		if err != nil {
			return nil, noop, err
		}
		s := NewMongoStore(db.Collection(table), cfg.Store.UniqueContent)
		if err := s.Migrate(ctx); err != nil {
			logger.Warnf("mongo: %v", err)
		}
		return s, func() { _ = db.Client().Disconnect(context.Background()) }, nil

	case config.DriverRedis:
		client, err := database.ConnectRedis(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, noop, err
		}
		s := NewRedisStore(client, "records:"+table)
		return s, func() { _ = s.Close() }, nil

	case config.DriverMinIO:
		objs, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			return nil, noop, err
		}
		return NewMinIOStore(objs, table), noop, nil
	}
	return nil, noop, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Store.Driver)
}
