// Package scheduler implements the Deadline Scheduler from spec.md §4.3:
// a timer service that fires an opaque action at a future instant and
// re-enters it onto a work channel for a worker pool to execute. It is
// grounded on the one-timer-per-schedule + worker-pool pattern in
// internal/draft/orchestrator/{scheduler,worker}.go, adapted from
// per-draft DB-polled deadlines to purely in-memory, caller-supplied
// instants — there is no persistence layer here, so there is nothing to
// poll.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Action is the work a fired deadline hands to a worker. In production
// this wraps an internal/manager.EnforceDeadline request.
type Action func(ctx context.Context)

// Scheduler fires Actions at their scheduled instant onto a bounded
// worker pool. It never cancels a scheduled Action once Schedule has been
// called (spec.md §4.3 "Fire-and-forget").
type Scheduler struct {
	clock  clockwork.Clock
	workCh chan Action

	// instanceID tags every log line this Scheduler emits, the same short-ID
	// logging convention as orchestrator.go's instanceID field — useful once
	// a deployment runs more than one process and needs to tell their
	// scheduler logs apart.
	instanceID string

	numWorkers int
	wg         sync.WaitGroup
}

// New constructs a Scheduler. Production callers pass
// clockwork.NewRealClock(); tests pass a clockwork.NewFakeClock().
func New(clock clockwork.Clock, numWorkers int) *Scheduler {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &Scheduler{
		clock:      clock,
		workCh:     make(chan Action, numWorkers*4),
		instanceID: uuid.New().String()[:8],
		numWorkers: numWorkers,
	}
}

// Run starts the worker pool and blocks until ctx is canceled, then waits
// for in-flight Actions to finish. Call it in its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	log.Info().Str("instance", s.instanceID).Int("workers", s.numWorkers).Msg("scheduler started")
	for i := 0; i < s.numWorkers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}
	<-ctx.Done()
	s.wg.Wait()
	log.Info().Str("instance", s.instanceID).Msg("scheduler stopped")
}

func (s *Scheduler) worker(ctx context.Context, id int) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case action, ok := <-s.workCh:
			if !ok {
				return
			}
			action(ctx)
		}
	}
}

// Schedule arranges for action to run on the worker pool at instant at.
// Instants already in the past fire with effectively zero delay (spec.md
// §4.3 "Missed deadlines ... still fire promptly"). Schedule itself never
// blocks; the spawned timer goroutine is the only thing that waits.
func (s *Scheduler) Schedule(ctx context.Context, at time.Time, action Action) {
	dur := at.Sub(s.clock.Now())
	if dur < 0 {
		dur = 0
	}
	timer := s.clock.NewTimer(dur)

	go func() {
		select {
		case <-timer.Chan():
			select {
			case s.workCh <- action:
			case <-ctx.Done():
				log.Error().Str("instance", s.instanceID).Msg("scheduler shutting down; dropping fired action")
			}
		case <-ctx.Done():
			timer.Stop()
		}
	}()
}
