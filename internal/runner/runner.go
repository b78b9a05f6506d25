// Package runner drives one action provider: it fetches that provider's
// due action events, attempts each one externally, and reconciles the
// outcomes back into the event store.
//
// Per event the state machine is:
//
//	PENDING --(success)-------------------> DISABLED (never retried)
//	PENDING --(no/invalid credentials)----> DISABLED
//	PENDING --(transient failure)---------> PENDING  (retried next run)
//
// A single event's failure never aborts the batch; errors talking to the
// store itself are fatal for the whole run.
package runner

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"fitagent/internal/provider"
	"fitagent/internal/store"
)

// Config holds one runner invocation's settings
type Config struct {
	// WindowStart/WindowEnd bound the fetched events' scheduled times as
	// offsets from now, e.g. (0, 7*24h).
	WindowStart time.Duration
	WindowEnd   time.Duration
	// Parallel is the number of concurrent execution attempts. 1 runs the
	// batch strictly sequentially; raise it only when the remote platform
	// tolerates parallel sessions.
	Parallel int
	Logger   *log.Logger
}

// Runner executes due events for one provider
type Runner struct {
	db   *store.DB
	prov provider.Provider
	cfg  Config
	log  *log.Logger
}

// Summary reports what one run did
type Summary struct {
	Fetched   int
	Succeeded int
	Disabled  int // successes + permanent failures, reconciled in one batch
	Pending   int // transient failures left for the next run
}

// New creates a runner for one provider
func New(db *store.DB, prov provider.Provider, cfg Config) *Runner {
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	if cfg.WindowEnd == 0 {
		cfg.WindowEnd = 7 * 24 * time.Hour
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Runner{db: db, prov: prov, cfg: cfg, log: logger}
}

type result struct {
	event store.ExecutableActionEvent
	err   error
}

// Run fetches and executes the provider's due events, then issues one
// bulk disable for successes and permanent failures. Events that failed
// transiently are left untouched.
func (r *Runner) Run(ctx context.Context, now time.Time) (*Summary, error) {
	events, err := r.db.ExecutableActionEvents(r.prov.Name(), now.Add(r.cfg.WindowStart), now.Add(r.cfg.WindowEnd))
	if err != nil {
		return nil, fmt.Errorf("fetching executable events: %w", err)
	}

	summary := &Summary{Fetched: len(events)}
	if len(events) == 0 {
		return summary, nil
	}

	// Attempts run under a bounded semaphore; outcomes funnel through the
	// results channel to this single collector, so nothing below shares
	// mutable state.
	sem := make(chan struct{}, r.cfg.Parallel)
	results := make(chan result, len(events))
	var wg sync.WaitGroup

	for _, e := range events {
		wg.Add(1)
		go func(e store.ExecutableActionEvent) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results <- result{event: e, err: r.prov.Execute(ctx, e)}
		}(e)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var disable []int64
	for res := range results {
		e := res.event
		switch {
		case res.err == nil:
			summary.Succeeded++
			disable = append(disable, e.EventID)
			r.log.Printf("event %d (%s at %s): done", e.EventID, e.ActionName, e.ScheduledAt.Format(time.RFC3339))
		case provider.Permanent(res.err):
			disable = append(disable, e.EventID)
			r.log.Printf("event %d (%s at %s): disabling: %v", e.EventID, e.ActionName, e.ScheduledAt.Format(time.RFC3339), res.err)
		default:
			summary.Pending++
			r.log.Printf("event %d (%s at %s): left pending: %v", e.EventID, e.ActionName, e.ScheduledAt.Format(time.RFC3339), res.err)
		}
	}

	if _, err := r.db.DisableActionEvents(disable); err != nil {
		return nil, fmt.Errorf("disabling events: %w", err)
	}
	summary.Disabled = len(disable)
	return summary, nil
}
