package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"factoryflow/quote-service/internal/db"
	"factoryflow/quote-service/internal/events"
	"factoryflow/quote-service/internal/model"
)

func TestQuoteSaved_Published(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rdb, err := db.NewRedisClient(ctx, "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })

	// Pub/Sub has no replay: subscribe first.
	sub := rdb.Subscribe(ctx, events.ChannelQuoteSaved)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	pub := events.NewPublisher(rdb)
	pub.QuoteSaved(ctx, model.Job{ID: "job-1", Material: "steel", Quote: 540}, true)

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("ReceiveMessage: %v", err)
	}
	var got events.QuoteSaved
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("payload %q: %v", msg.Payload, err)
	}
	want := events.QuoteSaved{Type: "EVENT_QUOTE_SAVED", JobID: "job-1", Material: "steel", Quote: 540, DemoMode: true}
	if got != want {
		t.Errorf("event = %+v, want %+v", got, want)
	}
}

func TestQuoteSaved_NilPublisherIsNoop(t *testing.T) {
	var p *events.Publisher
	p.QuoteSaved(context.Background(), model.Job{ID: "x"}, false)
	events.NewPublisher(nil).QuoteSaved(context.Background(), model.Job{ID: "x"}, false)
}

func TestQuoteSaved_RedisDownIsNonFatal(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	rdb, err := db.NewRedisClient(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	defer rdb.Close()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	events.NewPublisher(rdb).QuoteSaved(ctx, model.Job{ID: "job-2"}, false)
}
