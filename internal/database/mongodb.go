package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redundancy-gate/gateway/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultMongoTimeout = 10 * time.Second

// ConnectMongo dials cfg.URI and returns the configured database once a ping
// succeeds within cfg.Timeout. Release it with db.Client().Disconnect.
func ConnectMongo(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Database, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo: uri is required")
	}
	if cfg.Database == "" {
		return nil, errors.New("mongo: database name is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultMongoTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName("redundancy-gateway").
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping %s: %w", cfg.Database, err)
	}
	return client.Database(cfg.Database), nil
}
