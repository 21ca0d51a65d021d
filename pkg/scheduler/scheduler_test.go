package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soundvault/artist-ingest/pkg/task"
)

// transitionRecorder captures per-task status histories as they are published.
type transitionRecorder struct {
	mu       sync.Mutex
	byTaskID map[string][]task.Status
}

func newTransitionRecorder() *transitionRecorder {
	return &transitionRecorder{byTaskID: make(map[string][]task.Status)}
}

func (r *transitionRecorder) Publish(ev task.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTaskID[ev.TaskID] = append(r.byTaskID[ev.TaskID], ev.Status)
}

func (r *transitionRecorder) history(id string) []task.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]task.Status(nil), r.byTaskID[id]...)
}

func testConfig() Config {
	return Config{
		PollInterval:  10 * time.Millisecond,
		MaxConcurrent: 20,
	}
}

// waitForStatus polls until the task reaches want or the deadline passes.
func waitForStatus(t *testing.T, s *Scheduler, id string, want task.Status) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if status, ok := s.Status(id); ok && status == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	status, _ := s.Status(id)
	t.Fatalf("Task %s never reached %s (currently %s)", id, want, status)
}

func TestScheduler_SubmitReturnsQueuedImmediately(t *testing.T) {
	store := task.NewStatusStore(nil, 0)
	s := New(store, testConfig())

	// No Run loop: the task must still be visible as Queued right away.
	id := s.Submit(&task.Task{
		ID:   "task-1",
		Kind: task.KindAlbums,
		Run:  func(ctx context.Context) error { return nil },
	})

	status, ok := s.Status(id)
	if !ok {
		t.Fatal("Status() returned false immediately after Submit")
	}
	if status != task.StatusQueued {
		t.Errorf("Status() = %q, want %q", status, task.StatusQueued)
	}
}

func TestScheduler_RunsTaskToCompletion(t *testing.T) {
	rec := newTransitionRecorder()
	store := task.NewStatusStore(rec, 0)
	s := New(store, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	var ran atomic.Bool
	id := s.Submit(&task.Task{
		ID:   "task-1",
		Kind: task.KindAlbums,
		Run: func(ctx context.Context) error {
			ran.Store(true)
			return nil
		},
	})

	waitForStatus(t, s, id, task.StatusCompleted)
	cancel()
	<-done

	if !ran.Load() {
		t.Error("Task body never ran")
	}

	history := rec.history(id)
	expected := []task.Status{task.StatusQueued, task.StatusInProgress, task.StatusCompleted}
	if len(history) != len(expected) {
		t.Fatalf("History = %v, want %v", history, expected)
	}
	for i := range expected {
		if history[i] != expected[i] {
			t.Errorf("history[%d] = %q, want %q", i, history[i], expected[i])
		}
	}
}

func TestScheduler_FailedTaskIsContained(t *testing.T) {
	store := task.NewStatusStore(nil, 0)
	s := New(store, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	failingID := s.Submit(&task.Task{
		ID:   "failing",
		Kind: task.KindSongs,
		Run: func(ctx context.Context) error {
			return errors.New("crawl blew up")
		},
	})
	healthyID := s.Submit(&task.Task{
		ID:   "healthy",
		Kind: task.KindAlbums,
		Run:  func(ctx context.Context) error { return nil },
	})

	waitForStatus(t, s, failingID, task.StatusFailed)
	waitForStatus(t, s, healthyID, task.StatusCompleted)

	cancel()
	<-done
}

func TestScheduler_PanicBecomesFailed(t *testing.T) {
	store := task.NewStatusStore(nil, 0)
	s := New(store, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	panicID := s.Submit(&task.Task{
		ID:   "panicking",
		Kind: task.KindComments,
		Run: func(ctx context.Context) error {
			panic("nil map write, probably")
		},
	})
	afterID := s.Submit(&task.Task{
		ID:   "after-panic",
		Kind: task.KindAlbums,
		Run:  func(ctx context.Context) error { return nil },
	})

	// The scheduler must survive the panic and keep dispatching.
	waitForStatus(t, s, panicID, task.StatusFailed)
	waitForStatus(t, s, afterID, task.StatusCompleted)

	cancel()
	<-done
}

func TestScheduler_ConcurrencyGate(t *testing.T) {
	store := task.NewStatusStore(nil, 0)
	cfg := testConfig()
	cfg.MaxConcurrent = 5
	s := New(store, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	var current, peak atomic.Int32
	release := make(chan struct{})

	const total = 20
	ids := make([]string, total)
	for i := 0; i < total; i++ {
		ids[i] = s.Submit(&task.Task{
			ID:   fmt.Sprintf("task-%d", i),
			Kind: task.KindAlbums,
			Run: func(ctx context.Context) error {
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				<-release
				current.Add(-1)
				return nil
			},
		})
	}

	// Give the scheduler time to dispatch as much as the gate allows.
	time.Sleep(200 * time.Millisecond)
	if got := current.Load(); got != 5 {
		t.Errorf("In-flight tasks = %d, want 5 (gate size)", got)
	}

	close(release)
	for _, id := range ids {
		waitForStatus(t, s, id, task.StatusCompleted)
	}

	if got := peak.Load(); got > 5 {
		t.Errorf("Peak concurrency = %d, want at most 5", got)
	}

	cancel()
	<-done
}

func TestScheduler_SlotReleasedAfterFailure(t *testing.T) {
	store := task.NewStatusStore(nil, 0)
	cfg := testConfig()
	cfg.MaxConcurrent = 1
	s := New(store, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	// With a single slot, each later task can only run if the previous
	// failure released it.
	s.Submit(&task.Task{
		ID:   "fail-1",
		Kind: task.KindSongs,
		Run:  func(ctx context.Context) error { return errors.New("boom") },
	})
	s.Submit(&task.Task{
		ID:   "panic-1",
		Kind: task.KindSongs,
		Run:  func(ctx context.Context) error { panic("boom") },
	})
	lastID := s.Submit(&task.Task{
		ID:   "ok-1",
		Kind: task.KindSongs,
		Run:  func(ctx context.Context) error { return nil },
	})

	waitForStatus(t, s, lastID, task.StatusCompleted)

	cancel()
	<-done
}

func TestScheduler_DuplicateSubmitRunsBoth(t *testing.T) {
	store := task.NewStatusStore(nil, 0)
	s := New(store, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	var runs atomic.Int32
	mk := func() *task.Task {
		return &task.Task{
			ID:   "same-id",
			Kind: task.KindAlbums,
			Run: func(ctx context.Context) error {
				runs.Add(1)
				return nil
			},
		}
	}
	s.Submit(mk())
	id := s.Submit(mk())

	waitForStatus(t, s, id, task.StatusCompleted)

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := runs.Load(); got != 2 {
		t.Errorf("Task body ran %d times, want 2 (no deduplication)", got)
	}

	cancel()
	<-done
}

func TestScheduler_FirstTransitionIsQueued(t *testing.T) {
	rec := newTransitionRecorder()
	store := task.NewStatusStore(rec, 0)
	cfg := testConfig()
	cfg.PollInterval = time.Millisecond
	s := New(store, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	// Submit from many goroutines while the dispatch loop races each task
	// to InProgress. Queued must land before a task is dequeueable, so
	// every observed history starts with Queued and no finished task reads
	// back as Queued.
	const (
		submitters = 8
		perWorker  = 50
	)
	ids := make(chan string, submitters*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < submitters; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids <- s.Submit(&task.Task{
					ID:   fmt.Sprintf("task-%d-%d", w, i),
					Kind: task.KindAlbums,
					Run:  func(ctx context.Context) error { return nil },
				})
			}
		}(w)
	}
	wg.Wait()
	close(ids)

	for id := range ids {
		waitForStatus(t, s, id, task.StatusCompleted)

		history := rec.history(id)
		if len(history) == 0 {
			t.Fatalf("Task %s published no transitions", id)
		}
		if history[0] != task.StatusQueued {
			t.Errorf("Task %s first transition = %q, want %q (history %v)",
				id, history[0], task.StatusQueued, history)
		}
		if status, _ := s.Status(id); status == task.StatusQueued {
			t.Errorf("Task %s reads back Queued after completing", id)
		}
	}

	cancel()
	<-done
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("PollInterval = %v, want 500ms", cfg.PollInterval)
	}
	if cfg.MaxConcurrent != 20 {
		t.Errorf("MaxConcurrent = %d, want 20", cfg.MaxConcurrent)
	}
}
