package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redundancy-gate/gateway/internal/record"
)

// MemoryStore keeps records in process memory. It is used for local runs and
// tests; content is unique because the map is keyed by it.
type MemoryStore struct {
	mu    sync.RWMutex
	store map[string]*record.Record
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{store: make(map[string]*record.Record), now: time.Now}
}

func (m *MemoryStore) FindByContent(_ context.Context, content string) (*record.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.store[content]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryStore) Insert(_ context.Context, content string) (*record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[content]; ok {
		return nil, ErrDuplicateContent
	}
	r := &record.Record{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: m.now().UTC(),
	}
	m.store[content] = r
	cp := *r
	return &cp, nil
}

// Len reports how many records are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

func (m *MemoryStore) Ping(context.Context) error { return nil }
