// Package jobstore persists quoted jobs to the hosted jobs table and falls
// back to a local store when the remote cannot take the write.
//
// Insert decision tree:
//
//	probe ── transport failure ───────────────► local (demo mode)
//	  │
//	insert ── ok ─────────────────────────────► remote record
//	  ├── unreachable / schema / access ──────► local (demo mode) + message
//	  └── anything else ──────────────────────► error, no fallback
package jobstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"factoryflow/quote-service/internal/model"
)

// DefaultTimeout bounds every remote call.
const DefaultTimeout = 10 * time.Second

// InsertResult has the same shape whichever path stored the record.
type InsertResult struct {
	// Data is the stored record and always carries an id when the error
	// is nil. When Insert returns an error, Data is the submitted record with
	// no id, so the caller still has the quoted values; it must not be
	// treated as saved.
	Data     *model.Job `json:"data"`
	DemoMode bool       `json:"demoMode"`
	Message  string     `json:"message,omitempty"`
	// Reason is why the remote was bypassed; nil when the remote took the write.
	Reason *RemoteError `json:"-"`
}

// Store is the persistence facade used by the quote service.
type Store struct {
	remote  Remote
	local   *Local
	timeout time.Duration
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock overrides the clock used to stamp created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New builds a Store. remote may be nil, in which case every insert goes to
// local storage.
func New(remote Remote, local *Local, opts ...Option) *Store {
	s := &Store{remote: remote, local: local, timeout: DefaultTimeout, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Insert persists job into table. The returned result is never nil. The error
// is non-nil only for an unclassified remote failure or when the local
// fallback itself failed.
func (s *Store) Insert(ctx context.Context, table string, job model.Job) (*InsertResult, error) {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = s.now().UTC()
	}

	if s.remote == nil {
		return s.fallback(table, job, &RemoteError{Kind: KindUnreachable, Err: ErrUnavailable})
	}

	if err := s.probe(ctx, table); err != nil {
		if re := Classify(err); re.Kind == KindUnreachable {
			slog.Warn("job store unreachable, using local storage", "table", table, "err", err)
			return s.fallback(table, job, re)
		}
		// The database answered, so it is reachable; the insert below
		// reports what is wrong with the table.
	}

	saved, err := s.insertRemote(ctx, table, job)
	if err == nil {
		return &InsertResult{Data: &saved}, nil
	}

	re := Classify(err)
	if re.Kind == KindOther {
		slog.Error("remote insert failed", "table", table, "code", re.Code, "err", err)
		return &InsertResult{Data: &job}, re
	}
	logDiagnostic(table, re)
	return s.fallback(table, job, re)
}

// Query reads jobs from the remote table. Errors are *RemoteError values.
func (s *Store) Query(ctx context.Context, table string, f Filter) ([]model.Job, error) {
	if s.remote == nil {
		return nil, &RemoteError{Kind: KindUnreachable, Err: ErrUnavailable}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	jobs, err := s.remote.Query(ctx, table, f)
	if err != nil {
		return nil, Classify(fmt.Errorf("query %s: %w", table, err))
	}
	return jobs, nil
}

// Probe reports whether the remote table can be read.
func (s *Store) Probe(ctx context.Context, table string) error {
	if s.remote == nil {
		return &RemoteError{Kind: KindUnreachable, Err: ErrUnavailable}
	}
	if err := s.probe(ctx, table); err != nil {
		return Classify(err)
	}
	return nil
}

// ListLocal returns the records saved locally in demo mode.
func (s *Store) ListLocal(table string) ([]model.Job, error) {
	return s.local.List(table)
}

func (s *Store) probe(ctx context.Context, table string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.remote.Probe(ctx, table)
}

func (s *Store) insertRemote(ctx context.Context, table string, job model.Job) (model.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.remote.Insert(ctx, table, job)
}

func (s *Store) fallback(table string, job model.Job, reason *RemoteError) (*InsertResult, error) {
	saved, err := s.local.Append(table, job)
	if err != nil {
		slog.Error("local fallback failed", "table", table, "err", err)
		return &InsertResult{Data: &job, DemoMode: true, Reason: reason},
			fmt.Errorf("%w: %w", ErrFallbackFailed, err)
	}
	return &InsertResult{
		Data:     &saved,
		DemoMode: true,
		Message:  reason.FallbackMessage(),
		Reason:   reason,
	}, nil
}

// IsUnavailable reports whether err means the remote could not be reached.
func IsUnavailable(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == KindUnreachable
}
