package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redundancy-gate/gateway/internal/record"
	"github.com/redundancy-gate/gateway/internal/storage"
)

// objectStore is the part of storage.MinIOStorage the record store uses.
type objectStore interface {
	PutJSON(ctx context.Context, key string, v interface{}) error
	GetJSON(ctx context.Context, key string, v interface{}) error
}

// MinIOStore keeps one JSON object per record. The object key is derived from
// the content digest only to locate it; equality is still decided on the
// stored content. Inserts are not conditional, so concurrent writers race.
type MinIOStore struct {
	objects objectStore
	prefix  string
}

func NewMinIOStore(objects objectStore, prefix string) *MinIOStore {
	return &MinIOStore{objects: objects, prefix: prefix}
}

func (m *MinIOStore) objectKey(content string) string {
	sum := sha256.Sum256([]byte(content))
	return m.prefix + "/" + hex.EncodeToString(sum[:]) + ".json"
}

func (m *MinIOStore) FindByContent(ctx context.Context, content string) (*record.Record, error) {
	var rec record.Record
	if err := m.objects.GetJSON(ctx, m.objectKey(content), &rec); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if rec.Content != content {
		return nil, nil
	}
	return &rec, nil
}

func (m *MinIOStore) Insert(ctx context.Context, content string) (*record.Record, error) {
	rec := &record.Record{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.objects.PutJSON(ctx, m.objectKey(content), rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (m *MinIOStore) Ping(ctx context.Context) error {
	if p, ok := m.objects.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
