// Package metrics provides the centralized Prometheus metrics registry for
// the ingest service. All metrics are defined in their respective packages
// (fetch, cache, ratelimit, scheduler, broadcast) to maintain modularity and
// avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the ingest service.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/fetch):
//   - ingest_requests_total{endpoint, status} (Counter): Total upstream requests by endpoint and HTTP status
//   - ingest_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - ingest_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, decode)
//
// Retry Metrics (pkg/fetch):
//   - ingest_retries_total{error_class} (Counter): Retry attempts by error class
//   - ingest_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - ingest_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Cache Metrics (pkg/cache):
//   - ingest_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - ingest_cache_misses_total (Counter): Cache misses
//   - ingest_cache_size_bytes{layer="redis"} (Gauge): Current cache size in bytes
//   - ingest_cache_errors_total{operation} (Counter): Cache operation errors
//
// Rate Limit Metrics (pkg/ratelimit):
//   - ingest_rate_limit_remaining (Gauge): Requests remaining in the current window
//   - ingest_rate_limit_blocks_total (Counter): Requests blocked because the window budget was spent
//
// Task Metrics (pkg/scheduler):
//   - ingest_tasks_submitted_total{kind} (Counter): Tasks submitted by kind
//   - ingest_tasks_finished_total{kind, status} (Counter): Finished tasks by kind and terminal status
//   - ingest_task_duration_seconds{kind} (Histogram): Task execution duration by kind
//   - ingest_tasks_in_progress (Gauge): Tasks currently executing
//
// Broadcast Metrics (pkg/broadcast):
//   - ingest_broadcast_events_total (Counter): Status events published to subscribers
//   - ingest_broadcast_dropped_total (Counter): Events dropped because a subscriber buffer was full
//   - ingest_broadcast_subscribers (Gauge): Currently connected subscribers
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(ingest_cache_hits_total[5m])) /
//   (sum(rate(ingest_cache_hits_total[5m])) + sum(rate(ingest_cache_misses_total[5m])))
//
//   # Task Failure Rate
//   sum(rate(ingest_tasks_finished_total{status="failed"}[5m])) /
//   sum(rate(ingest_tasks_finished_total[5m]))
//
//   # P95 Task Duration
//   histogram_quantile(0.95, rate(ingest_task_duration_seconds_bucket[5m]))
//
//   # Upstream Error Rate
//   rate(ingest_errors_total[5m])
//
//   # Slow Subscriber Pressure
//   rate(ingest_broadcast_dropped_total[5m])
