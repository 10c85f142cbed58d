// Package events announces saved quotes on Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"factoryflow/quote-service/internal/model"
)

// ChannelQuoteSaved carries one QuoteSaved event per stored job.
const ChannelQuoteSaved = "EVENT_QUOTE_SAVED"

// QuoteSaved is the payload published after a job is stored.
type QuoteSaved struct {
	Type     string      `json:"type"`
	JobID    string      `json:"jobId"`
	Material string      `json:"material"`
	Quote    model.Money `json:"quote"`
	DemoMode bool        `json:"demoMode"`
}

// Publisher sends events to Redis. A nil *Publisher or one without a client
// drops every event.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher returns a Publisher on rdb.
func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// QuoteSaved publishes EVENT_QUOTE_SAVED for job (non-fatal).
func (p *Publisher) QuoteSaved(ctx context.Context, job model.Job, demoMode bool) {
	if p == nil || p.rdb == nil {
		return
	}
	event, _ := json.Marshal(QuoteSaved{
		Type:     ChannelQuoteSaved,
		JobID:    job.ID,
		Material: job.Material,
		Quote:    job.Quote,
		DemoMode: demoMode,
	})
	if err := p.rdb.Publish(ctx, ChannelQuoteSaved, event).Err(); err != nil {
		slog.Warn("publish EVENT_QUOTE_SAVED failed", "jobId", job.ID, "err", err)
	}
}
