// Package scheduler runs uniquely named background jobs, periodic or
// one-shot. Re-scheduling a name replaces the existing job rather than
// duplicating it, and a single name never has two executions in flight.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"cryptotracker/internal/logger"
)

// State is the lifecycle position of a named job.
type State string

const (
	StateScheduled State = "scheduled"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Job is one unit of background work.
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc adapts a function to the Job interface.
type JobFunc func(ctx context.Context) error

func (f JobFunc) Run(ctx context.Context) error { return f(ctx) }

var jobRunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scheduler_job_runs_total",
		Help: "Total job executions by result",
	},
	[]string{"job", "result"},
)

func init() {
	prometheus.MustRegister(jobRunsTotal)
}

type entry struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	state State
}

func (e *entry) setState(s State) {
	e.mu.Lock()
	// Cancelled is terminal; a cancelled run must not report success after
	// the fact.
	if e.state != StateCancelled {
		e.state = s
	}
	e.mu.Unlock()
}

func (e *entry) getState() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Scheduler owns the set of named jobs.
type Scheduler struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Scheduler {
	return &Scheduler{entries: make(map[string]*entry)}
}

// SchedulePeriodic runs job every interval until the name is cancelled or
// replaced. The first firing happens after one full interval. A job run that
// returns an error is logged and counted; the schedule continues regardless.
func (s *Scheduler) SchedulePeriodic(name string, interval time.Duration, job Job) {
	logger.Log.Info("Scheduling periodic job",
		zap.String("job", name),
		zap.Duration("interval", interval),
	)

	prev, e, ctx := s.replace(name)

	go func() {
		defer close(e.done)
		waitForPrevious(ctx, prev)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.execute(ctx, name, e, job)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// ScheduleOnce runs job once after delay. Enqueueing a one-shot under a name
// that already has one pending replaces the pending job.
func (s *Scheduler) ScheduleOnce(name string, delay time.Duration, job Job) {
	logger.Log.Info("Scheduling one-shot job",
		zap.String("job", name),
		zap.Duration("delay", delay),
	)

	prev, e, ctx := s.replace(name)

	go func() {
		defer close(e.done)
		waitForPrevious(ctx, prev)

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			s.execute(ctx, name, e, job)
		case <-ctx.Done():
		}
	}()
}

// Cancel stops the named job's pending and future firings. Effects already
// produced by a started execution are not rolled back. Safe to call for
// unknown names.
func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	e, ok := s.entries[name]
	if ok {
		delete(s.entries, name)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	e.mu.Lock()
	e.state = StateCancelled
	e.mu.Unlock()
	e.cancel()

	logger.Log.Info("Cancelled job", zap.String("job", name))
}

// CancelAll stops every scheduled job. Idempotent.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	s.mu.Unlock()

	for _, name := range names {
		s.Cancel(name)
	}
}

// Status reports the current state of a named job.
func (s *Scheduler) Status(name string) (State, bool) {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return "", false
	}
	return e.getState(), true
}

// replace installs a fresh entry under name, returning the displaced entry
// (already cancelled) so the new goroutine can wait for it to drain.
func (s *Scheduler) replace(name string) (*entry, *entry, context.Context) {
	ctx, cancel := context.WithCancel(context.Background())
	e := &entry{
		cancel: cancel,
		done:   make(chan struct{}),
		state:  StateScheduled,
	}

	s.mu.Lock()
	prev := s.entries[name]
	s.entries[name] = e
	s.mu.Unlock()

	if prev != nil {
		prev.mu.Lock()
		prev.state = StateCancelled
		prev.mu.Unlock()
		prev.cancel()
		logger.Log.Info("Replacing existing job", zap.String("job", name))
	}
	return prev, e, ctx
}

// waitForPrevious blocks until the displaced goroutine for this name has
// fully exited, so two executions of the same name never overlap.
func waitForPrevious(ctx context.Context, prev *entry) {
	if prev == nil {
		return
	}
	select {
	case <-prev.done:
	case <-ctx.Done():
	}
}

func (s *Scheduler) execute(ctx context.Context, name string, e *entry, job Job) {
	e.setState(StateRunning)

	err := job.Run(ctx)
	switch {
	case ctx.Err() != nil:
		// Cancelled mid-run; state was already forced to Cancelled.
		jobRunsTotal.WithLabelValues(name, "cancelled").Inc()
	case err != nil:
		e.setState(StateFailed)
		jobRunsTotal.WithLabelValues(name, "failed").Inc()
		logger.Log.Error("Job run failed",
			zap.String("job", name),
			zap.Error(err),
		)
	default:
		e.setState(StateSucceeded)
		jobRunsTotal.WithLabelValues(name, "succeeded").Inc()
	}
}
