// Package task defines the unit of scheduled work and the shared state that
// tracks it: the FIFO queue of pending tasks and the status store queried by
// clients and pushed to subscribers.
package task

import (
	"context"
	"fmt"
)

// Kind identifies which ingestion operation a task runs.
type Kind string

const (
	KindArtistInfo Kind = "crawling-artist"
	KindAlbums     Kind = "crawling-albums"
	KindSongs      Kind = "crawling-songs"
	KindVideos     Kind = "crawling-videos"
	KindPhotos     Kind = "crawling-photos"
	KindComments   Kind = "crawling-comments"
)

// Status represents the lifecycle state of a task. Transitions move forward
// only: Queued -> InProgress -> {Completed, Failed}. A repeated submit of the
// same id starts a fresh lifecycle under the same status-store key.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"

	// StatusNotFound is reported for ids never submitted. It is a
	// user-visible result, not a stored state.
	StatusNotFound Status = "not_found"
)

// Terminal reports whether a status is absorbing.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// RunFunc is a task's operation body with its arguments already bound.
type RunFunc func(ctx context.Context) error

// Task is one unit of scheduled work.
type Task struct {
	// ID is the externally visible handle, derived deterministically from
	// kind and primary argument so repeated requests for the same target
	// collide on the same id.
	ID string

	// Kind names the operation.
	Kind Kind

	// Arg is the primary argument (artist id or source URL).
	Arg string

	// Run executes the operation body.
	Run RunFunc
}

// DeriveID builds the deterministic task id for a kind and primary argument.
func DeriveID(kind Kind, arg string) string {
	return fmt.Sprintf("%s-%s", kind, arg)
}

// Event is one status transition, as delivered to subscribers.
type Event struct {
	TaskID string `json:"task_id"`
	Status Status `json:"status"`
}

// Publisher receives every status transition recorded in the StatusStore.
type Publisher interface {
	Publish(Event)
}
