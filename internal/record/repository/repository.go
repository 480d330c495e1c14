package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/redundancy-gate/gateway/internal/record"
)

var (
	// ErrDuplicateContent is returned by Insert when the backend enforces
	// uniqueness on content and a row with the same content already exists.
	ErrDuplicateContent = errors.New("content already stored")

	errInvalidTable = errors.New("invalid table name")
)

// Store is the narrow capability the gateway needs from persistence.
//
// FindByContent returns (nil, nil) when nothing matches. Insert stores the
// given content and returns the row as the store assigned it.
type Store interface {
	FindByContent(ctx context.Context, content string) (*record.Record, error)
	Insert(ctx context.Context, content string) (*record.Record, error)
}

// Pinger is implemented by stores that can report connectivity for /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Migrator is implemented by stores that can create their own schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// validTable guards table names that end up interpolated into SQL.
func validTable(name string) error {
	if !identRe.MatchString(name) {
		return errInvalidTable
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

// parseTimestamp accepts the timestamp renderings of the SQL backends, with
// or without a zone. Zone-less values are taken as UTC.
func parseTimestamp(v string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", v)
}
