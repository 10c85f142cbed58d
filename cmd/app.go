package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	bolt "go.etcd.io/bbolt"

	"factoryflow/quote-service/internal/config"
	"factoryflow/quote-service/internal/db"
	"factoryflow/quote-service/internal/events"
	"factoryflow/quote-service/internal/jobstore"
	"factoryflow/quote-service/internal/quote"
	"factoryflow/quote-service/internal/settings"
	"factoryflow/quote-service/internal/suggest"
)

// app holds the connections and services shared by the subcommands.
type app struct {
	cfg      *config.Config
	local    *bolt.DB
	pool     *pgxpool.Pool // nil in demo-only mode
	rdb      *redis.Client // nil when events are disabled
	jobs     *jobstore.Store
	settings *settings.Store
	svc      *quote.Service
}

// openApp wires the service from cfg. withRedis is false for one-shot
// commands that never publish.
func openApp(ctx context.Context, cfg *config.Config, withRedis bool) (*app, error) {
	a := &app{cfg: cfg}

	local, err := db.OpenLocalStore(cfg.LocalStorePath)
	if err != nil {
		return nil, err
	}
	a.local = local

	localJobs, err := jobstore.NewLocal(local)
	if err != nil {
		a.close()
		return nil, err
	}

	// A nil *PostgresRemote must not reach the store as a non-nil interface.
	var remote jobstore.Remote
	if !cfg.DemoOnly() {
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		a.pool = pool
		remote = jobstore.NewPostgresRemote(pool)
	}
	a.jobs = jobstore.New(remote, localJobs, jobstore.WithTimeout(cfg.RemoteTimeout))

	a.settings, err = settings.New(local, cfg.Pricing)
	if err != nil {
		a.close()
		return nil, err
	}

	if withRedis && cfg.RedisURL != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("[quote-service] Redis unavailable, events disabled: %v", err)
		} else {
			a.rdb = rdb
		}
	}

	var ai suggest.Completer
	if cfg.OpenAIKey != "" {
		ai = suggest.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	}

	a.svc = quote.NewService(quote.Deps{
		Jobs:      a.jobs,
		Table:     cfg.JobsTable,
		Settings:  a.settings,
		Suggester: suggest.NewSuggester(a.jobs, cfg.JobsTable, ai),
		Events:    events.NewPublisher(a.rdb),
	})
	return a, nil
}

func (a *app) close() {
	if a.rdb != nil {
		a.rdb.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.local != nil {
		a.local.Close()
	}
}
