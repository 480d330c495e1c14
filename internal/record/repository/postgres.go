package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redundancy-gate/gateway/internal/record"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pgRow maps the user_data table. id and created_at are filled by column defaults.
type pgRow struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Content   string    `gorm:"column:content;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (r pgRow) toRecord() *record.Record {
	return &record.Record{ID: r.ID, Content: r.Content, CreatedAt: r.CreatedAt.UTC()}
}

// PostgresStore reads and writes user_data directly over a Postgres
// connection (the database behind a Supabase project, or any other).
type PostgresStore struct {
	db     *gorm.DB
	table  string
	unique bool
}

func NewPostgresStore(db *gorm.DB, table string, unique bool) (*PostgresStore, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db, table: table, unique: unique}, nil
}

// Migrate creates the table and the content index. The schema is usually
// owned by the managed database, so this only runs from cmd/migrate.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.Table(s.table).AutoMigrate(&pgRow{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", s.table, err)
	}
	idx := "INDEX"
	if s.unique {
		idx = "UNIQUE INDEX"
	}
	stmt := fmt.Sprintf("CREATE %[2]s IF NOT EXISTS idx_%[1]s_content ON %[1]s (content)", s.table, idx)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("failed to index %s.content: %w", s.table, err)
	}
	return nil
}

func (s *PostgresStore) FindByContent(ctx context.Context, content string) (*record.Record, error) {
	var rows []pgRow
	err := s.db.WithContext(ctx).
		Table(s.table).
		Where("content = ?", content).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toRecord(), nil
}

func (s *PostgresStore) Insert(ctx context.Context, content string) (*record.Record, error) {
	row := pgRow{Content: content}
	if err := pgInsertError(s.create(ctx, &row).Error); err != nil {
		return nil, err
	}
	return row.toRecord(), nil
}

// create inserts content only; id and created_at come back through RETURNING.
func (s *PostgresStore) create(ctx context.Context, row *pgRow) *gorm.DB {
	return s.db.WithContext(ctx).
		Table(s.table).
		Clauses(clause.Returning{}).
		Omit("id", "created_at").
		Create(row)
}

// pgInsertError maps a unique violation (translated by gorm) to ErrDuplicateContent.
func pgInsertError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateContent, err)
	}
	return err
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
