// Package ratelimit implements a fixed-window request budget shared across
// process instances via Redis. The upstream source publishes no rate-limit
// headers, so the budget is enforced locally: every fetch consumes one unit
// from the current window, and requests are blocked once the window is spent.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit gating.
var (
	rateLimitRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ingest_rate_limit_remaining",
		Help: "Requests remaining in the current rate limit window",
	})

	rateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_rate_limit_blocks_total",
		Help: "Total number of requests blocked by the local request budget",
	})
)

// RedisKeyWindowPrefix is the key prefix for per-window request counters.
const RedisKeyWindowPrefix = "crawl:rate_limit:window:"

// Limiter gates requests against a shared per-window budget.
type Limiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
	logger zerolog.Logger
}

// NewLimiter creates a new limiter allowing limit requests per window.
func NewLimiter(redisClient *redis.Client, limit int, window time.Duration, logger zerolog.Logger) *Limiter {
	if limit <= 0 {
		limit = 300
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		redis:  redisClient,
		limit:  limit,
		window: window,
		logger: logger,
	}
}

// windowKey returns the Redis key for the window containing now.
func (l *Limiter) windowKey(now time.Time) string {
	bucket := now.UnixNano() / int64(l.window)
	return fmt.Sprintf("%s%d", RedisKeyWindowPrefix, bucket)
}

// Allow consumes one unit of the current window's budget. It returns false
// when the window is exhausted; the counter is still incremented so that a
// burst of blocked callers cannot sneak through on the next check.
func (l *Limiter) Allow(ctx context.Context) (bool, error) {
	key := l.windowKey(time.Now())

	pipe := l.redis.Pipeline()
	incr := pipe.Incr(ctx, key)
	// Expire two windows out so stale buckets clean themselves up.
	pipe.Expire(ctx, key, 2*l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("increment rate limit window: %w", err)
	}

	used := incr.Val()
	remaining := int64(l.limit) - used
	if remaining < 0 {
		remaining = 0
	}
	rateLimitRemaining.Set(float64(remaining))

	if used > int64(l.limit) {
		l.logger.Warn().
			Int64("used", used).
			Int("limit", l.limit).
			Dur("window", l.window).
			Msg("Request budget exhausted - blocking request")
		rateLimitBlocksTotal.Inc()
		return false, nil
	}

	return true, nil
}

// Remaining reports how much budget is left in the current window.
// Returns the full limit when no requests were made yet this window.
func (l *Limiter) Remaining(ctx context.Context) (int, error) {
	key := l.windowKey(time.Now())

	used, err := l.redis.Get(ctx, key).Int()
	if err != nil {
		if err == redis.Nil {
			return l.limit, nil
		}
		return 0, fmt.Errorf("get rate limit window: %w", err)
	}

	remaining := l.limit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
