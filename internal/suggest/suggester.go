// Package suggest asks a language model for a quote based on similar past
// jobs, and falls back to a local estimate when the model is unavailable.
package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"factoryflow/quote-service/internal/jobstore"
	"factoryflow/quote-service/internal/model"
	"factoryflow/quote-service/internal/pricing"
)

// SimilarJobsLimit caps the history embedded in the prompt.
const SimilarJobsLimit = 5

// MsgFallback accompanies every estimate shown instead of a suggestion.
const MsgFallback = "Could not reach AI service. Showing an estimated quote instead."

// Sources of a Suggestion.
const (
	SourceAI       = "ai"
	SourceEstimate = "estimate"
)

// JobQuerier reads past jobs. *jobstore.Store satisfies it.
type JobQuerier interface {
	Query(ctx context.Context, table string, f jobstore.Filter) ([]model.Job, error)
}

// Completer answers a prompt. *Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ServiceError is a failed call to the AI service.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string { return "ai service: " + e.Err.Error() }

func (e *ServiceError) Unwrap() error { return e.Err }

// Suggestion is the answer shown next to a calculated quote.
type Suggestion struct {
	Amount      model.Money `json:"amount"`
	Text        string      `json:"suggestion"`
	Source      string      `json:"source"`
	SimilarJobs []model.Job `json:"similarJobs"`
	Message     string      `json:"message,omitempty"`
	// Cause is why the estimate was used; nil for an AI answer.
	Cause *ServiceError `json:"-"`
}

// Suggester builds suggestions.
type Suggester struct {
	jobs  JobQuerier
	table string
	ai    Completer
	now   func() time.Time
	noise func(hasHistory bool) pricing.Noise
}

// Option configures a Suggester.
type Option func(*Suggester)

// WithClock overrides the clock used for deadline distances.
func WithClock(now func() time.Time) Option {
	return func(s *Suggester) { s.now = now }
}

// WithEstimateNoise overrides the variance of the fallback estimate.
func WithEstimateNoise(noise func(hasHistory bool) pricing.Noise) Option {
	return func(s *Suggester) { s.noise = noise }
}

// NewSuggester returns a Suggester reading history from table. ai may be nil,
// in which case every suggestion is an estimate.
func NewSuggester(jobs JobQuerier, table string, ai Completer, opts ...Option) *Suggester {
	s := &Suggester{
		jobs:  jobs,
		table: table,
		ai:    ai,
		now:   time.Now,
		noise: func(hasHistory bool) pricing.Noise { return pricing.EstimateNoise(hasHistory) },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Suggest never fails: a history lookup error counts as no history, and any
// AI failure yields the local estimate with MsgFallback.
func (s *Suggester) Suggest(ctx context.Context, req pricing.Request, cfg model.PricingConfig) *Suggestion {
	similar := s.similarJobs(ctx, req)

	if s.ai == nil {
		return s.estimate(req, cfg, similar, &ServiceError{Err: ErrNoAPIKey})
	}

	reply, err := s.ai.Complete(ctx, BuildPrompt(req, similar, s.now()))
	if err != nil {
		slog.Warn("ai suggestion failed, using estimate", "err", err)
		return s.estimate(req, cfg, similar, &ServiceError{Err: err})
	}
	amount, err := ParseAmount(reply)
	if err != nil {
		slog.Warn("ai reply not usable, using estimate", "reply", reply, "err", err)
		return s.estimate(req, cfg, similar, &ServiceError{Err: err})
	}
	return &Suggestion{
		Amount:      amount,
		Text:        reply,
		Source:      SourceAI,
		SimilarJobs: similar,
	}
}

func (s *Suggester) similarJobs(ctx context.Context, req pricing.Request) []model.Job {
	jobs, err := s.jobs.Query(ctx, s.table, jobstore.Filter{
		Material: req.Material,
		PartType: req.PartType,
		Limit:    SimilarJobsLimit,
	})
	if err != nil {
		slog.Warn("similar jobs lookup failed", "table", s.table, "err", err)
		return []model.Job{}
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	return jobs
}

func (s *Suggester) estimate(req pricing.Request, cfg model.PricingConfig, similar []model.Job, cause *ServiceError) *Suggestion {
	amount := pricing.Estimate(req, cfg, s.noise(len(similar) > 0))
	return &Suggestion{
		Amount:      amount,
		Text:        fmt.Sprint(amount),
		Source:      SourceEstimate,
		SimilarJobs: similar,
		Message:     MsgFallback,
		Cause:       cause,
	}
}
