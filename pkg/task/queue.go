package task

import (
	"sync"
)

// Queue is the FIFO list of pending tasks. Producers enqueue from any
// goroutine; the scheduler polls DequeueOne. No priority, no deduplication:
// two enqueues of the same id are processed independently even though they
// share a status-store key.
type Queue struct {
	mu    sync.Mutex
	items []*Task
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends a task. It never blocks.
func (q *Queue) Enqueue(t *Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, t)
}

// DequeueOne removes and returns the oldest pending task.
// Returns false when the queue is empty; it never blocks the caller.
func (q *Queue) DequeueOne() (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}

	t := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return t, true
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
