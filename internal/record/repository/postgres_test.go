package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dryRunPostgres builds statements without a server.
func dryRunPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=127.0.0.1 user=test dbname=test sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestPostgresStore_InsertStatement(t *testing.T) {
	s, err := NewPostgresStore(dryRunPostgres(t), "user_data", true)
	require.NoError(t, err)

	tx := s.create(context.Background(), &pgRow{Content: "hello"})
	require.NoError(t, tx.Error)

	sql := tx.Statement.SQL.String()
	require.Contains(t, sql, `INSERT INTO "user_data" ("content") VALUES ($1)`)
	require.Contains(t, sql, "RETURNING")
	require.Equal(t, []interface{}{"hello"}, tx.Statement.Vars)
}

func TestNewPostgresStore_RejectsBadTable(t *testing.T) {
	_, err := NewPostgresStore(dryRunPostgres(t), "user_data; drop table x", false)
	require.Error(t, err)
}

func TestPgInsertError(t *testing.T) {
	require.NoError(t, pgInsertError(nil))

	err := pgInsertError(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey))
	require.ErrorIs(t, err, ErrDuplicateContent)

	other := errors.New("permission denied for table user_data")
	require.Equal(t, other, pgInsertError(other))
}
