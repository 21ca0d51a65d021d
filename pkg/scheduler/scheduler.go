// Package scheduler dispatches queued tasks with bounded concurrency and
// drives the task lifecycle: Queued on submit, InProgress on dispatch,
// Completed or Failed on the outcome. Every transition is recorded in the
// status store, which broadcasts it to subscribers.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/soundvault/artist-ingest/pkg/task"
)

// Prometheus metrics for task scheduling.
var (
	tasksSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_tasks_submitted_total",
		Help: "Total tasks submitted by kind",
	}, []string{"kind"})

	tasksFinishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_tasks_finished_total",
		Help: "Total tasks finished by kind and terminal status",
	}, []string{"kind", "status"})

	taskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ingest_task_duration_seconds",
		Help:    "Task execution duration in seconds by kind",
		Buckets: []float64{0.5, 1, 5, 15, 60, 300, 900},
	}, []string{"kind"})

	tasksInProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ingest_tasks_in_progress",
		Help: "Tasks currently executing",
	})
)

// Config holds scheduler configuration.
type Config struct {
	// PollInterval is how often the queue is polled for pending tasks.
	// It bounds queuing latency against poll overhead.
	PollInterval time.Duration

	// MaxConcurrent caps how many tasks may execute simultaneously.
	MaxConcurrent int
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:  500 * time.Millisecond,
		MaxConcurrent: 20,
	}
}

// Scheduler owns the task queue and dispatches work from it. One scheduler
// loop runs per process; task bodies run on their own goroutines behind the
// concurrency gate.
type Scheduler struct {
	queue  *task.Queue
	store  *task.StatusStore
	gate   chan struct{}
	config Config
	logger zerolog.Logger

	wg sync.WaitGroup
}

// New creates a scheduler recording lifecycle state in store.
func New(store *task.StatusStore, cfg Config) *Scheduler {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 20
	}

	return &Scheduler{
		queue:  task.NewQueue(),
		store:  store,
		gate:   make(chan struct{}, cfg.MaxConcurrent),
		config: cfg,
		logger: log.With().Str("component", "scheduler").Logger(),
	}
}

// Submit records the task as Queued and enqueues it. Queued must land
// before the task becomes dequeueable, or a fast dispatch could publish
// InProgress first and the late Queued would mask the real status.
// Returns the task id. Safe for concurrent use.
func (s *Scheduler) Submit(t *task.Task) string {
	s.store.Set(t.ID, task.StatusQueued)
	s.queue.Enqueue(t)
	tasksSubmittedTotal.WithLabelValues(string(t.Kind)).Inc()

	s.logger.Info().
		Str("task_id", t.ID).
		Str("kind", string(t.Kind)).
		Msg("Task submitted")
	return t.ID
}

// Status returns the current status for a task id.
func (s *Scheduler) Status(id string) (task.Status, bool) {
	return s.store.Get(id)
}

// Run polls the queue until ctx is cancelled, dispatching each pending task
// on its own goroutine once a concurrency slot is free. It returns after all
// in-flight tasks have finished. The loop itself never fails: task errors
// and panics are absorbed at the task boundary.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info().
		Dur("poll_interval", s.config.PollInterval).
		Int("max_concurrent", s.config.MaxConcurrent).
		Msg("Scheduler started")

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
		}

		// Drain everything pending this tick; the gate provides the
		// backpressure, not the poll interval.
		for {
			t, ok := s.queue.DequeueOne()
			if !ok {
				break
			}

			select {
			case s.gate <- struct{}{}:
			case <-ctx.Done():
				// Shutting down; leave the task Queued.
				s.queue.Enqueue(t)
				break loop
			}

			s.wg.Add(1)
			go s.execute(ctx, t)
		}
	}

	s.wg.Wait()
	s.logger.Info().Msg("Scheduler stopped")
}

// execute runs one task to its terminal status. The slot is released on
// every exit path, and panics in the operation body are converted to Failed.
func (s *Scheduler) execute(ctx context.Context, t *task.Task) {
	defer s.wg.Done()
	defer func() { <-s.gate }()

	start := time.Now()
	tasksInProgress.Inc()
	defer tasksInProgress.Dec()

	s.store.Set(t.ID, task.StatusInProgress)
	s.logger.Info().
		Str("task_id", t.ID).
		Str("kind", string(t.Kind)).
		Msg("Task started")

	err := s.runBody(ctx, t)

	duration := time.Since(start)
	taskDuration.WithLabelValues(string(t.Kind)).Observe(duration.Seconds())

	if err != nil {
		s.store.Set(t.ID, task.StatusFailed)
		tasksFinishedTotal.WithLabelValues(string(t.Kind), string(task.StatusFailed)).Inc()
		// Terminal and local: the cause is logged, never re-raised.
		s.logger.Error().
			Err(err).
			Str("task_id", t.ID).
			Str("kind", string(t.Kind)).
			Dur("duration", duration).
			Msg("Task failed")
		return
	}

	s.store.Set(t.ID, task.StatusCompleted)
	tasksFinishedTotal.WithLabelValues(string(t.Kind), string(task.StatusCompleted)).Inc()
	s.logger.Info().
		Str("task_id", t.ID).
		Str("kind", string(t.Kind)).
		Dur("duration", duration).
		Msg("Task completed")
}

// runBody invokes the operation body, converting panics into errors so the
// scheduler stays live no matter what a task does.
func (s *Scheduler) runBody(ctx context.Context, t *task.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("task_id", t.ID).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Task panicked")
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return t.Run(ctx)
}
