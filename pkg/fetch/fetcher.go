// Package fetch provides the retrying HTTP fetcher every crawl operation is
// built on, with rate limiting, response caching, and error classification.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/soundvault/artist-ingest/pkg/cache"
	"github.com/soundvault/artist-ingest/pkg/ratelimit"
)

// Prometheus metrics for fetch operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_requests_total",
		Help: "Total upstream requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ingest_request_duration_seconds",
		Help:    "Upstream request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_errors_total",
		Help: "Total fetch errors by class",
	}, []string{"class"})
)

// Fetcher performs single logical fetches against the upstream source.
type Fetcher struct {
	httpClient *http.Client
	cache      *cache.Manager
	limiter    *ratelimit.Limiter
	config     Config
	logger     zerolog.Logger
}

// Config holds the fetcher configuration.
type Config struct {
	// Redis client for response caching and shared rate-limit state.
	// Optional: when nil, caching and rate gating are disabled.
	Redis *redis.Client

	// User-Agent header sent on every request (the source rejects bare clients).
	UserAgent string

	// RequestTimeout bounds a single HTTP round trip.
	RequestTimeout time.Duration

	// CacheTTL is how long successful responses stay cached. The source sends
	// no cache headers, so freshness is a local policy.
	CacheTTL time.Duration

	// RateLimit is the request budget per RateWindow (0 disables gating).
	RateLimit  int
	RateWindow time.Duration

	// Retry controls backoff behavior.
	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(redisClient *redis.Client, userAgent string) Config {
	return Config{
		Redis:          redisClient,
		UserAgent:      userAgent,
		RequestTimeout: 30 * time.Second,
		CacheTTL:       5 * time.Minute,
		RateLimit:      300,
		RateWindow:     time.Minute,
		Retry:          DefaultRetryConfig(),
	}
}

// New creates a new fetcher.
func New(cfg Config) (*Fetcher, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	logger := log.With().Str("component", "fetcher").Logger()

	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		config: cfg,
		logger: logger,
	}

	if cfg.Redis != nil {
		f.cache = cache.NewManager(cfg.Redis)
		if cfg.RateLimit > 0 {
			f.limiter = ratelimit.NewLimiter(cfg.Redis, cfg.RateLimit, cfg.RateWindow, logger)
		}
	}

	return f, nil
}

// Get performs a GET request with rate limiting, caching, and bounded retry.
// It returns the response body, or a FetchError classified by the last
// observed cause once retries are exhausted.
func (f *Fetcher) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	endpoint := endpointLabel(rawURL)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: check the shared request budget
	if f.limiter != nil {
		allowed, err := f.limiter.Allow(ctx)
		if err != nil {
			f.logger.Error().Err(err).Msg("Rate limit check failed")
			return nil, fmt.Errorf("rate limit check: %w", err)
		}
		if !allowed {
			f.logger.Warn().
				Str("endpoint", endpoint).
				Msg("Request blocked by rate limiter")
			requestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
			return nil, ErrRateLimited
		}
	}

	// Step 2: check cache
	cacheKey := cache.Key{
		Endpoint:    endpoint,
		QueryParams: params,
	}

	if f.cache != nil {
		entry, err := f.cache.Get(ctx, cacheKey)
		if err != nil && err != cache.ErrCacheMiss {
			f.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
		if entry != nil {
			f.logger.Debug().Str("endpoint", endpoint).Msg("Cache hit")
			return entry.Data, nil
		}
	}

	// Step 3: execute with retry
	f.logger.Debug().
		Str("endpoint", endpoint).
		Msg("Executing upstream request")

	var body []byte
	var lastErr *FetchError

	retryErr := retryWithBackoff(ctx, f.config.Retry, func(error) ErrorClass {
		if lastErr != nil {
			return lastErr.Class
		}
		return ErrorClassNetwork
	}, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		if params != nil {
			req.URL.RawQuery = params.Encode()
		}
		req.Header.Set("User-Agent", f.config.UserAgent)
		req.Header.Set("Accept", "application/json")

		resp, reqErr := f.httpClient.Do(req)
		if reqErr != nil {
			f.logger.Error().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			lastErr = &FetchError{Class: ErrorClassNetwork, Message: "request failed", Err: reqErr}
			return lastErr
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			errClass := classify(resp.StatusCode, nil)
			errorsTotal.WithLabelValues(string(errClass)).Inc()
			requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

			f.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Upstream request error")

			lastErr = &FetchError{
				StatusCode: resp.StatusCode,
				Class:      errClass,
				Message:    resp.Status,
			}
			return lastErr
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			lastErr = &FetchError{Class: ErrorClassNetwork, Message: "read response body", Err: err}
			return lastErr
		}

		requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	// Step 4: cache on success
	if f.cache != nil && f.config.CacheTTL > 0 {
		entry := cache.NewEntry(body, http.StatusOK, f.config.CacheTTL)
		if err := f.cache.Set(ctx, cacheKey, entry); err != nil {
			f.logger.Warn().Err(err).Msg("Failed to cache response")
		} else {
			f.logger.Debug().
				Str("endpoint", endpoint).
				Dur("ttl", entry.TTL()).
				Msg("Cached response")
		}
	}

	return body, nil
}

// GetJSON performs a GET request and decodes the JSON response body into v.
// A malformed body surfaces as a permanent decode FetchError: the upstream
// returned something, it just wasn't what it promised.
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, params url.Values, v any) error {
	body, err := f.Get(ctx, rawURL, params)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return &FetchError{
			Class:   ErrorClassDecode,
			Message: fmt.Sprintf("decode response from %s", endpointLabel(rawURL)),
			Err:     err,
		}
	}
	return nil
}

// endpointLabel reduces a URL to its path for metric labels and cache keys,
// keeping label cardinality bounded.
func endpointLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (f *Fetcher) SetHTTPClient(client *http.Client) {
	f.httpClient = client
}
