package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/redundancy-gate/gateway/internal/record"
)

// RedisStore keeps records in a single Redis hash keyed by content, so the
// lookup is an exact match and the insert is atomic (HSETNX).
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-based record store. Key may be empty.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "records:user_data"
	}
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) FindByContent(ctx context.Context, content string) (*record.Record, error) {
	b, err := r.client.HGet(ctx, r.key, content).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var rec record.Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RedisStore) Insert(ctx context.Context, content string) (*record.Record, error) {
	rec := &record.Record{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	ok, err := r.client.HSetNX(ctx, r.key, content, b).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDuplicateContent
	}
	return rec, nil
}

func (r *RedisStore) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

func (r *RedisStore) Close() error { return r.client.Close() }
