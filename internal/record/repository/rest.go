package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/redundancy-gate/gateway/internal/record"
	"github.com/supabase-community/postgrest-go"
)

// RESTStore talks to a Supabase project through its PostgREST API
// (<baseURL>/rest/v1/<table>), authenticating with the project access key.
type RESTStore struct {
	client *postgrest.Client
	table  string
}

// NewRESTStore builds a store for the given project URL and key.
func NewRESTStore(baseURL, key, table string) (*RESTStore, error) {
	if baseURL == "" || key == "" {
		return nil, errors.New("supabase url and key are required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("supabase url: %w", err)
	}
	if err := validTable(table); err != nil {
		return nil, err
	}
	client := postgrest.NewClient(strings.TrimRight(baseURL, "/")+"/rest/v1", "public", map[string]string{
		"apikey":        key,
		"Authorization": "Bearer " + key,
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("supabase client: %w", client.ClientError)
	}
	return &RESTStore{client: client, table: table}, nil
}

// restRow is a user_data row as PostgREST renders it. id may be numeric or a uuid.
type restRow struct {
	ID        json.RawMessage `json:"id"`
	Content   string          `json:"content"`
	CreatedAt string          `json:"created_at"`
}

func (r restRow) toRecord() (*record.Record, error) {
	ts, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &record.Record{ID: rawID(r.ID), Content: r.Content, CreatedAt: ts}, nil
}

func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// postgrest-go renders API errors as "(<code>) <message>".
var restErrRe = regexp.MustCompile(`(?s)^\(([^)]*)\) (.*)$`)

// restError strips the client's code prefix so callers see the API message
// unchanged, and maps unique violations to ErrDuplicateContent.
func restError(err error) error {
	m := restErrRe.FindStringSubmatch(err.Error())
	if m == nil {
		return err
	}
	if m[1] == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateContent, m[2])
	}
	return errors.New(m[2])
}

// call runs fn so that a done ctx returns promptly; the PostgREST client
// itself takes no context.
func call(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		if err != nil {
			return restError(err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *RESTStore) FindByContent(ctx context.Context, content string) (*record.Record, error) {
	var rows []restRow
	err := call(ctx, func() error {
		_, err := s.client.From(s.table).
			Select("*", "", false).
			Eq("content", content).
			Limit(1, "").
			ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toRecord()
}

func (s *RESTStore) Insert(ctx context.Context, content string) (*record.Record, error) {
	var rows []restRow
	err := call(ctx, func() error {
		_, err := s.client.From(s.table).
			Insert([]map[string]string{{"content": content}}, false, "", "representation", "").
			ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("insert returned no rows")
	}
	return rows[0].toRecord()
}

// Ping reads at most one id so /ready reflects reachability and credentials.
func (s *RESTStore) Ping(ctx context.Context) error {
	return call(ctx, func() error {
		_, _, err := s.client.From(s.table).
			Select("id", "", false).
			Limit(1, "").
			Execute()
		return err
	})
}
