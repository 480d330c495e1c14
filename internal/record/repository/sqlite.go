package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redundancy-gate/gateway/internal/record"
)

// SQLiteStore keeps records in a local SQLite table. The schema is created on
// construction.
type SQLiteStore struct {
	db     *sql.DB
	table  string
	unique bool
}

// NewSQLiteStore wraps an open database. When unique is set the content
// column carries a UNIQUE index and colliding inserts return ErrDuplicateContent.
func NewSQLiteStore(ctx context.Context, db *sql.DB, table string, unique bool) (*SQLiteStore, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db, table: table, unique: unique}
	if err := s.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Migrate creates the table and its content index if they don't exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	idx := "INDEX"
	if s.unique {
		idx = "UNIQUE INDEX"
	}
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE %[2]s IF NOT EXISTS idx_%[1]s_content ON %[1]s(content);
	`, s.table, idx)
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *SQLiteStore) FindByContent(ctx context.Context, content string) (*record.Record, error) {
	q := fmt.Sprintf("SELECT id, content, created_at FROM %s WHERE content = ? LIMIT 1", s.table)
	var (
		r  record.Record
		ts string
	)
	err := s.db.QueryRowContext(ctx, q, content).Scan(&r.ID, &r.Content, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if r.CreatedAt, err = parseTimestamp(ts); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, content string) (*record.Record, error) {
	r := &record.Record{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	q := fmt.Sprintf("INSERT INTO %s (id, content, created_at) VALUES (?, ?, ?)", s.table)
	if _, err := s.db.ExecContext(ctx, q, r.ID, r.Content, r.CreatedAt.Format(time.RFC3339Nano)); err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateContent, err)
		}
		return nil, err
	}
	return r, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteStore) Close() error { return s.db.Close() }

// SQLite reports constraint failures only in the message text.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
