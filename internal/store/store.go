package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/matheus3301/wppmcp/internal/enrich"
	"go.uber.org/zap"
)

// Queryer is the subset of *sqlx.DB the reader needs.
type Queryer interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
	Rebind(query string) string
}

// Store answers read requests from the bridge's local SQLite mirror and owns
// the nickname overrides. It holds no mutable state between calls.
type Store struct {
	contacts Queryer
	messages Queryer
	enrich   *enrich.Enricher
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for "today" and rolling windows.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for JID anomalies and query failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a Store over the contacts and messages databases.
func New(contacts, messages Queryer, opts ...Option) *Store {
	s := &Store{
		contacts: contacts,
		messages: messages,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.enrich = enrich.New(s.logger)
	return s
}

// Enricher exposes the enricher bound to the store's logger.
func (s *Store) Enricher() *enrich.Enricher {
	return s.enrich
}

// window holds the bounds of the rolling counters. Today is the local
// calendar day of the clock; the 7 and 30 day windows include their lower
// bound.
type window struct {
	dayStart   time.Time
	dayEnd     time.Time
	weekStart  time.Time
	monthStart time.Time
}

func (s *Store) window() window {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return window{
		dayStart:   start,
		dayEnd:     start.AddDate(0, 0, 1),
		weekStart:  now.Add(-7 * 24 * time.Hour),
		monthStart: now.Add(-30 * 24 * time.Hour),
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a lower-cased substring pattern for LIKE ... ESCAPE '\'.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func paginate(limit, page, def int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if page < 0 {
		page = 0
	}
	return limit, page * limit
}

// inQuery expands IN (?) placeholders, tagging failures with op.
func inQuery(op, query string, args ...any) (string, []any, error) {
	q, out, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return q, out, nil
}
