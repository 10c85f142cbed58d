// Package scheduler wires up the cron job that periodically checks whether the
// hosted jobs table is reachable, which decides the demo-mode banner.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"factoryflow/quote-service/internal/jobstore"
)

// Prober checks a remote table. *jobstore.Store satisfies it.
type Prober interface {
	Probe(ctx context.Context, table string) error
}

// SetupFunc creates a missing table.
type SetupFunc func(ctx context.Context) error

// Status is the outcome of the latest connectivity check.
type Status struct {
	DemoMode  bool      `json:"demoMode"`
	Reason    string    `json:"reason,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Scheduler wraps robfig/cron and manages the probe loop.
type Scheduler struct {
	cron   *cron.Cron
	prober Prober
	table  string
	setup  SetupFunc
	spec   string // cron spec, e.g. "@every 1m"
	now    func() time.Time

	mu     sync.RWMutex
	status Status
}

// New creates a Scheduler that probes table every interval. setup may be nil;
// when set it runs once whenever the probe finds the table missing.
func New(prober Prober, table string, interval time.Duration, setup SetupFunc) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		prober: prober,
		table:  table,
		setup:  setup,
		spec:   fmt.Sprintf("@every %s", interval),
		now:    time.Now,
	}
}

// Start registers the job and starts the scheduler. Also runs one check
// immediately so the status is known without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.Check(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	go s.Check(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[scheduler] Cron stopped")
}

// Status returns the latest check result.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// DemoMode reports whether writes are currently expected to go to local
// storage.
func (s *Scheduler) DemoMode() bool { return s.Status().DemoMode }

// Check probes the table once and records the result.
func (s *Scheduler) Check(ctx context.Context) Status {
	err := s.prober.Probe(ctx, s.table)

	var re *jobstore.RemoteError
	if err != nil {
		re = jobstore.Classify(err)
		if re.MissingTable() && s.setup != nil {
			log.Printf("[scheduler] Table %s does not exist — creating it", s.table)
			if serr := s.setup(ctx); serr != nil {
				log.Printf("[scheduler] Table setup failed: %v", serr)
			} else {
				err = s.prober.Probe(ctx, s.table)
				re = jobstore.Classify(err)
			}
		}
	}

	st := Status{CheckedAt: s.now().UTC()}
	switch {
	case err == nil:
		// connected
	case re.Kind == jobstore.KindUnreachable:
		st.DemoMode = true
		st.Reason = jobstore.MsgDemoMode
	default:
		st.DemoMode = true
		st.Reason = re.FallbackMessage()
	}

	s.mu.Lock()
	prev := s.status
	s.status = st
	s.mu.Unlock()

	if prev.CheckedAt.IsZero() || prev.DemoMode != st.DemoMode {
		if st.DemoMode {
			log.Printf("[scheduler] Demo mode ON (%v)", err)
		} else {
			log.Printf("[scheduler] Jobs table %s reachable — demo mode OFF", s.table)
		}
	}
	return st
}

// Fixed is a status that never changes, for a service with no remote
// configured.
type Fixed Status

// Status returns f.
func (f Fixed) Status() Status { return Status(f) }
