// Package quote contains the business logic of the quote service. It is
// transport-agnostic: used by the gin handlers in this package and by the
// gRPC server (grpcserver package).
package quote

import (
	"context"
	"fmt"
	"log/slog"

	"factoryflow/quote-service/internal/jobstore"
	"factoryflow/quote-service/internal/model"
	"factoryflow/quote-service/internal/pricing"
	"factoryflow/quote-service/internal/settings"
	"factoryflow/quote-service/internal/suggest"
)

// Submission statuses.
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)

// Submission messages.
const (
	MsgSaved      = "Quote saved successfully!"
	MsgSaveFailed = "Failed to save quote."
)

// Publisher announces stored jobs. *events.Publisher satisfies it.
type Publisher interface {
	QuoteSaved(ctx context.Context, job model.Job, demoMode bool)
}

// ─── Response types ───────────────────────────────────────────────────────────

// Submission is the outcome of Submit. Quote and Breakdown are always set,
// whatever happened to the write.
type Submission struct {
	Quote     model.Money       `json:"quote"`
	Breakdown pricing.Breakdown `json:"breakdown"`
	Job       *model.Job        `json:"job"`
	DemoMode  bool              `json:"demoMode"`
	Status    string            `json:"status"`
	Message   string            `json:"message"`
}

// History is the remote job list. Warning is set when it could not be read.
type History struct {
	Jobs    []model.Job `json:"jobs"`
	Warning string      `json:"warning,omitempty"`
}

// PricingView is the pricing configuration as shown in the settings panel.
type PricingView struct {
	model.PricingConfig
	Materials  []string `json:"materials"`
	Customized bool     `json:"customized"`
}

// ─── Service ─────────────────────────────────────────────────────────────────

// Deps are the collaborators of a Service.
type Deps struct {
	Calculator *pricing.Calculator
	Jobs       *jobstore.Store
	Table      string
	Settings   *settings.Store
	Suggester  *suggest.Suggester
	Events     Publisher // optional
}

// Service encapsulates all quoting business logic.
type Service struct {
	calc      *pricing.Calculator
	jobs      *jobstore.Store
	table     string
	settings  *settings.Store
	suggester *suggest.Suggester
	events    Publisher
}

// NewService returns a configured Service.
func NewService(d Deps) *Service {
	calc := d.Calculator
	if calc == nil {
		calc = pricing.NewCalculator(nil)
	}
	return &Service{
		calc:      calc,
		jobs:      d.Jobs,
		table:     d.Table,
		settings:  d.Settings,
		suggester: d.Suggester,
		events:    d.Events,
	}
}

// ─── Quotes ───────────────────────────────────────────────────────────────────

// Preview validates in and prices it with the current configuration without
// storing anything.
func (s *Service) Preview(ctx context.Context, in pricing.Input) (*pricing.Result, error) {
	req, err := pricing.Validate(in)
	if err != nil {
		return nil, err
	}
	cfg, err := s.settings.Load()
	if err != nil {
		return nil, fmt.Errorf("load pricing: %w", err)
	}
	res := s.calc.Calculate(req, cfg)
	return &res, nil
}

// Submit prices in and stores the job with the pricing configuration in
// effect. On a failed save it returns both the Submission, which still holds
// the quote, and the error.
func (s *Service) Submit(ctx context.Context, in pricing.Input) (*Submission, error) {
	req, err := pricing.Validate(in)
	if err != nil {
		return nil, err
	}
	cfg, err := s.settings.Load()
	if err != nil {
		return nil, fmt.Errorf("load pricing: %w", err)
	}
	res := s.calc.Calculate(req, cfg)

	job := model.Job{
		PartType:         req.PartType,
		Material:         req.Material,
		Quantity:         req.Quantity,
		Complexity:       req.Complexity,
		Deadline:         req.Deadline,
		Quote:            res.Quote,
		RushFeeEnabled:   cfg.RushFeeEnabled,
		MarginPercentage: cfg.MarginPercentage,
	}
	if cfg.RushFeeEnabled {
		job.RushFeeAmount = model.RoundMoney(cfg.RushFeeAmount)
	}

	sub := &Submission{Quote: res.Quote, Breakdown: res.Breakdown, Job: &job}

	stored, err := s.jobs.Insert(ctx, s.table, job)
	if stored != nil && stored.Data != nil {
		sub.Job = stored.Data
		sub.DemoMode = stored.DemoMode
	}
	if err != nil {
		slog.Warn("save quote failed", "table", s.table, "quote", res.Quote, "err", err)
		sub.Status = StatusError
		sub.Message = MsgSaveFailed
		return sub, fmt.Errorf("submit: %w", err)
	}

	if stored.DemoMode {
		sub.Status = StatusWarning
		sub.Message = stored.Message
	} else {
		sub.Status = StatusSuccess
		sub.Message = MsgSaved
	}

	if s.events != nil {
		s.events.QuoteSaved(ctx, *sub.Job, sub.DemoMode)
	}
	return sub, nil
}

// Suggest validates in and asks for an AI suggestion, or an estimate when the
// AI service is unavailable.
func (s *Service) Suggest(ctx context.Context, in pricing.Input) (*suggest.Suggestion, error) {
	req, err := pricing.Validate(in)
	if err != nil {
		return nil, err
	}
	cfg, err := s.settings.Load()
	if err != nil {
		return nil, fmt.Errorf("load pricing: %w", err)
	}
	return s.suggester.Suggest(ctx, req, cfg), nil
}

// ─── History ──────────────────────────────────────────────────────────────────

// History returns the remote jobs, newest first. A remote failure yields an
// empty list with a warning.
func (s *Service) History(ctx context.Context) History {
	jobs, err := s.jobs.Query(ctx, s.table, jobstore.Filter{})
	if err != nil {
		slog.Warn("load job history failed", "table", s.table, "err", err)
		return History{Jobs: []model.Job{}, Warning: "Could not load job history."}
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	return History{Jobs: jobs}
}

// LocalHistory returns the jobs saved locally in demo mode.
func (s *Service) LocalHistory() ([]model.Job, error) {
	jobs, err := s.jobs.ListLocal(s.table)
	if err != nil {
		return nil, fmt.Errorf("local history: %w", err)
	}
	return jobs, nil
}

// ─── Pricing settings ─────────────────────────────────────────────────────────

// Pricing returns the current pricing configuration.
func (s *Service) Pricing() (*PricingView, error) {
	cfg, err := s.settings.Load()
	if err != nil {
		return nil, fmt.Errorf("load pricing: %w", err)
	}
	return s.view(cfg), nil
}

// SetMaterialPrice sets one material's unit price.
func (s *Service) SetMaterialPrice(material string, price float64) (*PricingView, error) {
	cfg, err := s.settings.SetMaterialPrice(material, price)
	if err != nil {
		return nil, err
	}
	return s.view(cfg), nil
}

// ResetMaterialPrices restores the default price table.
func (s *Service) ResetMaterialPrices() (*PricingView, error) {
	cfg, err := s.settings.ResetMaterialPrices()
	if err != nil {
		return nil, err
	}
	return s.view(cfg), nil
}

// SetAdvancedOptions replaces the margin and rush-fee settings.
func (s *Service) SetAdvancedOptions(opts model.AdvancedOptions) (*PricingView, error) {
	cfg, err := s.settings.SetAdvancedOptions(opts)
	if err != nil {
		return nil, err
	}
	return s.view(cfg), nil
}

func (s *Service) view(cfg model.PricingConfig) *PricingView {
	return &PricingView{
		PricingConfig: cfg,
		Materials:     cfg.Materials(),
		Customized:    s.settings.Customized(cfg),
	}
}
