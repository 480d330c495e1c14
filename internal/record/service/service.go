package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/redundancy-gate/gateway/internal/record"
	"github.com/redundancy-gate/gateway/internal/record/repository"
	"github.com/redundancy-gate/gateway/pkg/logger"
	"github.com/redundancy-gate/gateway/pkg/metrics"
	"go.uber.org/zap"
)

// Classification of a submission.
type Classification string

const (
	Duplicate Classification = "DUPLICATE"
	Unique    Classification = "UNIQUE"
)

// ErrContentRequired is the validation failure for missing or blank content.
var ErrContentRequired = &ValidationError{Message: "Content is required"}

// Result is the outcome of Submit. Record is the matched row for Duplicate
// and the newly inserted row for Unique.
type Result struct {
	Status Classification
	Record *record.Record
}

// Health is the static service metadata returned by the health query.
type Health struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"`
}

// Options configure a Service.
type Options struct {
	Name     string
	Provider string
	Driver   string
	// Timeout bounds each store call; zero disables it.
	Timeout time.Duration
	Now     func() time.Time
}

// Service is the deduplication gateway core. It holds no mutable state.
type Service struct {
	store repository.Store
	opts  Options
}

func NewService(store repository.Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Driver == "" {
		opts.Driver = "unknown"
	}
	return &Service{store: store, opts: opts}
}

// Health never touches the store.
func (s *Service) Health() Health {
	return Health{
		Status:    "ACTIVE",
		Service:   s.opts.Name,
		Provider:  s.opts.Provider,
		Timestamp: s.opts.Now().UTC(),
	}
}

// Submit trims content, looks for an exact match and inserts when there is none.
// Errors are *ValidationError or *StorageError.
func (s *Service) Submit(ctx context.Context, content string) (*Result, error) {
	trimmed := trimContent(content)
	if trimmed == "" {
		metrics.Submissions.WithLabelValues("invalid").Inc()
		return nil, ErrContentRequired
	}

	existing, err := s.find(ctx, trimmed)
	if err != nil {
		return nil, s.fail("find", err)
	}
	if existing != nil {
		metrics.Submissions.WithLabelValues("duplicate").Inc()
		return &Result{Status: Duplicate, Record: existing}, nil
	}

	created, err := s.insert(ctx, trimmed)
	if errors.Is(err, repository.ErrDuplicateContent) {
		// lost a race against a concurrent insert of the same content
		existing, ferr := s.find(ctx, trimmed)
		if ferr != nil {
			return nil, s.fail("find", ferr)
		}
		if existing != nil {
			logger.L().Debug("insert collided; reporting existing record", zap.String("id", existing.ID))
			metrics.Submissions.WithLabelValues("duplicate").Inc()
			return &Result{Status: Duplicate, Record: existing}, nil
		}
	}
	if err != nil {
		return nil, s.fail("insert", err)
	}
	metrics.Submissions.WithLabelValues("unique").Inc()
	return &Result{Status: Unique, Record: created}, nil
}

// trimContent strips Unicode Zs plus tab, VT, FF, BOM, LF, CR, LS and PS.
// Unlike strings.TrimSpace it strips U+FEFF and keeps U+0085.
func trimContent(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		switch r {
		case '\t', '\n', '\v', '\f', '\r', '\ufeff', '\u2028', '\u2029':
			return true
		}
		return unicode.Is(unicode.Zs, r)
	})
}

func (s *Service) find(ctx context.Context, content string) (*record.Record, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer observe("find", s.opts.Driver, start)
	return s.store.FindByContent(ctx, content)
}

func (s *Service) insert(ctx context.Context, content string) (*record.Record, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer observe("insert", s.opts.Driver, start)
	return s.store.Insert(ctx, content)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opts.Timeout)
}

func (s *Service) fail(op string, err error) error {
	metrics.Submissions.WithLabelValues("error").Inc()
	metrics.StoreErrors.WithLabelValues(op, s.opts.Driver).Inc()
	logger.L().Warn("store call failed",
		zap.String("op", op),
		zap.String("driver", s.opts.Driver),
		zap.Error(err),
	)
	return &StorageError{Op: op, Err: err}
}

func observe(op, driver string, start time.Time) {
	metrics.StoreLatency.WithLabelValues(op, driver).Observe(time.Since(start).Seconds())
}
