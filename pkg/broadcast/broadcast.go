// Package broadcast implements pub/sub fan-out of task status transitions.
//
// Delivery is isolated per subscriber: each subscription owns a buffered
// channel, and a publish that finds a subscriber's buffer full drops the
// event for that subscriber only. A slow or broken consumer can never block
// delivery to the others, or the publisher itself.
package broadcast

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/soundvault/artist-ingest/pkg/task"
)

// Prometheus metrics for broadcast delivery.
var (
	eventsPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_broadcast_events_total",
		Help: "Total status events published",
	})

	eventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_broadcast_dropped_total",
		Help: "Total status events dropped for slow subscribers",
	})

	subscribersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ingest_broadcast_subscribers",
		Help: "Currently active status subscribers",
	})
)

// DefaultBuffer is the per-subscriber event buffer size.
const DefaultBuffer = 16

// Subscription represents one live subscriber.
type Subscription struct {
	ch chan task.Event
}

// Events returns the channel status transitions are delivered on.
// The channel is closed when the subscription is removed.
func (s *Subscription) Events() <-chan task.Event {
	return s.ch
}

// Broadcaster fans status transitions out to all active subscriptions.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[*Subscription]struct{}
	buffer      int
	logger      zerolog.Logger
}

// New creates a broadcaster with the given per-subscriber buffer size
// (0 uses DefaultBuffer).
func New(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broadcaster{
		subscribers: make(map[*Subscription]struct{}),
		buffer:      buffer,
		logger:      log.With().Str("component", "broadcaster").Logger(),
	}
}

// Subscribe registers a new subscriber and returns its handle.
func (b *Broadcaster) Subscribe() *Subscription {
	sub := &Subscription{
		ch: make(chan task.Event, b.buffer),
	}

	b.mu.Lock()
	b.subscribers[sub] = struct{}{}
	count := len(b.subscribers)
	b.mu.Unlock()

	subscribersGauge.Set(float64(count))
	b.logger.Debug().Int("subscribers", count).Msg("Subscriber added")
	return sub
}

// Unsubscribe removes a subscriber and closes its event channel.
// Events still buffered for it are dropped, not re-queued.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	_, ok := b.subscribers[sub]
	if ok {
		delete(b.subscribers, sub)
	}
	count := len(b.subscribers)
	b.mu.Unlock()

	if ok {
		close(sub.ch)
	}

	subscribersGauge.Set(float64(count))
	b.logger.Debug().Int("subscribers", count).Msg("Subscriber removed")
}

// Publish delivers an event to every active subscription.
// Implements task.Publisher.
func (b *Broadcaster) Publish(ev task.Event) {
	eventsPublishedTotal.Inc()

	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub.ch <- ev:
		default:
			eventsDroppedTotal.Inc()
			b.logger.Warn().
				Str("task_id", ev.TaskID).
				Str("status", string(ev.Status)).
				Msg("Dropped status event for slow subscriber")
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
