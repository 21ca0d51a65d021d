package task

import (
	"sync"
)

// StatusStore is the single source of truth for task lifecycle state.
// Every Set is pushed to the publisher as well, so the synchronous getter
// and the broadcast channel always observe the same transitions.
//
// Entries live for the process lifetime by default. An optional cap evicts
// the oldest terminal entries once the map grows past MaxEntries; in-flight
// tasks are never evicted.
type StatusStore struct {
	mu         sync.RWMutex
	statuses   map[string]Status
	terminal   []string // terminal ids in completion order, for eviction
	maxEntries int

	publisher Publisher
}

// NewStatusStore creates a status store publishing every transition to pub.
// maxEntries 0 disables eviction.
func NewStatusStore(pub Publisher, maxEntries int) *StatusStore {
	return &StatusStore{
		statuses:   make(map[string]Status),
		maxEntries: maxEntries,
		publisher:  pub,
	}
}

// Set records a status transition and publishes it.
func (s *StatusStore) Set(id string, status Status) {
	s.mu.Lock()
	s.statuses[id] = status
	if status.Terminal() {
		s.terminal = append(s.terminal, id)
		s.evictLocked()
	}
	s.mu.Unlock()

	// Publish outside the lock; a slow broadcaster must not stall getters.
	if s.publisher != nil {
		s.publisher.Publish(Event{TaskID: id, Status: status})
	}
}

// Get returns the current status for id.
// The second return value is false for ids never submitted.
func (s *StatusStore) Get(id string) (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.statuses[id]
	return status, ok
}

// Len returns the number of tracked tasks.
func (s *StatusStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.statuses)
}

// evictLocked drops the oldest terminal entries while over capacity.
// Callers must hold mu.
func (s *StatusStore) evictLocked() {
	if s.maxEntries <= 0 {
		return
	}
	for len(s.statuses) > s.maxEntries && len(s.terminal) > 0 {
		oldest := s.terminal[0]
		s.terminal = s.terminal[1:]
		// The id may have been re-submitted since it completed; only evict
		// entries that are still terminal.
		if status, ok := s.statuses[oldest]; ok && status.Terminal() {
			delete(s.statuses, oldest)
		}
	}
}
