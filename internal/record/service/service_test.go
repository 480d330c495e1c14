package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redundancy-gate/gateway/internal/record"
	"github.com/redundancy-gate/gateway/internal/record/repository"
	"github.com/redundancy-gate/gateway/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore records calls and can inject failures or a lost insert race.
type fakeStore struct {
	mu        sync.Mutex
	rows      []*record.Record
	findErr   error
	insertErr error
	findCalls int
	inserts   int
	// hidden is inserted by "another writer" when Insert is first called.
	hidden *record.Record
}

func (f *fakeStore) FindByContent(_ context.Context, content string) (*record.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, r := range f.rows {
		if r.Content == content {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Insert(_ context.Context, content string) (*record.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.hidden != nil {
		f.rows = append(f.rows, f.hidden)
		f.hidden = nil
		return nil, repository.ErrDuplicateContent
	}
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	r := &record.Record{ID: fmt.Sprintf("id-%d", len(f.rows)+1), Content: content, CreatedAt: time.Now().UTC()}
	f.rows = append(f.rows, r)
	return r, nil
}

func TestSubmit_UniqueThenDuplicate(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, Options{Driver: "fake"})
	ctx := context.Background()

	first, err := svc.Submit(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, Unique, first.Status)
	assert.Equal(t, "hello", first.Record.Content)

	second, err := svc.Submit(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, Duplicate, second.Status)
	assert.Equal(t, first.Record.ID, second.Record.ID)
	assert.Equal(t, 1, store.inserts)
}

func TestSubmit_TrimEquivalence(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, Options{})
	ctx := context.Background()

	first, err := svc.Submit(ctx, "  hello  ")
	require.NoError(t, err)
	require.Equal(t, Unique, first.Status)
	require.Equal(t, "hello", first.Record.Content)

	second, err := svc.Submit(ctx, "hello")
	require.NoError(t, err)
	require.Equal(t, Duplicate, second.Status)

	// no case folding
	third, err := svc.Submit(ctx, "HELLO")
	require.NoError(t, err)
	require.Equal(t, Unique, third.Status)

	// inner whitespace is significant
	fourth, err := svc.Submit(ctx, "hel lo")
	require.NoError(t, err)
	require.Equal(t, Unique, fourth.Status)
}

func TestTrimContent(t *testing.T) {
	cases := map[string]string{
		"  hello  ":             "hello",
		"\ufeffhello":           "hello",
		"\u00a0hello\u3000":     "hello",
		"\u2028hello\u2029\r\n": "hello",
		"\u0085hello":           "\u0085hello",
		"\u200bhello":           "\u200bhello",
		"hel lo":                "hel lo",
	}
	for in, want := range cases {
		require.Equal(t, want, trimContent(in), "%q", in)
	}
}

func TestSubmit_ByteOrderMarkIsTrimmed(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, Options{})
	ctx := context.Background()

	first, err := svc.Submit(ctx, "\ufeffhello")
	require.NoError(t, err)
	require.Equal(t, Unique, first.Status)
	require.Equal(t, "hello", first.Record.Content)

	second, err := svc.Submit(ctx, "hello")
	require.NoError(t, err)
	require.Equal(t, Duplicate, second.Status)

	// NEL is not whitespace for this comparison
	third, err := svc.Submit(ctx, "\u0085hello")
	require.NoError(t, err)
	require.Equal(t, Unique, third.Status)
	require.Equal(t, "\u0085hello", third.Record.Content)

	_, err = svc.Submit(ctx, "\ufeff \u2028")
	require.ErrorIs(t, err, ErrContentRequired)
}

func TestSubmit_ValidationSkipsStore(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, Options{})
	before := testutil.ToFloat64(metrics.Submissions.WithLabelValues("invalid"))

	for _, in := range []string{"", "   ", "\n\t "} {
		_, err := svc.Submit(context.Background(), in)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, "Content is required", ve.Message)
	}
	require.Zero(t, store.findCalls)
	require.Zero(t, store.inserts)
	require.Equal(t, before+3, testutil.ToFloat64(metrics.Submissions.WithLabelValues("invalid")))
}

func TestSubmit_FindFailureSkipsInsert(t *testing.T) {
	store := &fakeStore{findErr: errors.New("connection refused")}
	svc := NewService(store, Options{Driver: "fake-find"})
	before := testutil.ToFloat64(metrics.StoreErrors.WithLabelValues("find", "fake-find"))

	_, err := svc.Submit(context.Background(), "hello")
	var se *StorageError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "find", se.Op)
	require.Equal(t, "connection refused", se.Detail())
	require.Zero(t, store.inserts)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.StoreErrors.WithLabelValues("find", "fake-find")))
}

func TestSubmit_InsertFailure(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("permission denied for table user_data")}
	svc := NewService(store, Options{})

	_, err := svc.Submit(context.Background(), "hello")
	var se *StorageError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "insert", se.Op)
	require.Equal(t, "permission denied for table user_data", se.Detail())
	require.ErrorIs(t, err, store.insertErr)
}

func TestSubmit_LostRaceReportsDuplicate(t *testing.T) {
	winner := &record.Record{ID: "winner", Content: "hello", CreatedAt: time.Now().UTC()}
	store := &fakeStore{hidden: winner}
	svc := NewService(store, Options{})

	res, err := svc.Submit(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, Duplicate, res.Status)
	require.Equal(t, "winner", res.Record.ID)
	require.Equal(t, 2, store.findCalls)
}

func TestSubmit_WithMemoryStoreConcurrent(t *testing.T) {
	svc := NewService(repository.NewMemoryStore(), Options{})
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		uniques int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Submit(ctx, "same")
			if !assert.NoError(t, err) {
				return
			}
			if res.Status == Unique {
				mu.Lock()
				uniques++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	// the memory store enforces uniqueness, so exactly one submission wins
	require.Equal(t, 1, uniques)
}

func TestSubmit_TimeoutApplied(t *testing.T) {
	var deadline bool
	store := &deadlineStore{seen: &deadline}
	svc := NewService(store, Options{Timeout: time.Second})
	_, _ = svc.Submit(context.Background(), "x")
	require.True(t, deadline)
}

type deadlineStore struct{ seen *bool }

func (d *deadlineStore) FindByContent(ctx context.Context, _ string) (*record.Record, error) {
	_, *d.seen = ctx.Deadline()
	return nil, nil
}

func (d *deadlineStore) Insert(_ context.Context, content string) (*record.Record, error) {
	return &record.Record{ID: "1", Content: content}, nil
}

func TestHealth(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	store := &fakeStore{findErr: errors.New("down")}
	svc := NewService(store, Options{Name: "Data Redundancy System", Provider: "Go + Supabase", Now: func() time.Time { return fixed }})

	h := svc.Health()
	require.Equal(t, "ACTIVE", h.Status)
	require.Equal(t, "Data Redundancy System", h.Service)
	require.Equal(t, "Go + Supabase", h.Provider)
	require.Equal(t, fixed, h.Timestamp)
	require.Zero(t, store.findCalls)
}
