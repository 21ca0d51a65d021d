package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/soundvault/artist-ingest/pkg/broadcast"
	"github.com/soundvault/artist-ingest/pkg/fetch"
	"github.com/soundvault/artist-ingest/pkg/ingest"
	"github.com/soundvault/artist-ingest/pkg/logging"
	"github.com/soundvault/artist-ingest/pkg/scheduler"
	"github.com/soundvault/artist-ingest/pkg/source"
	"github.com/soundvault/artist-ingest/pkg/store/memory"
	"github.com/soundvault/artist-ingest/pkg/task"
)

func main() {
	// Configuration from environment
	port := getEnv("PORT", "8080")
	redisURL := getEnv("REDIS_URL", "localhost:6379")
	sourceURL := getEnv("SOURCE_URL", "https://api.example-music.net")
	userAgent := getEnv("USER_AGENT", "artist-ingest/0.1.0")
	logLevel := getEnv("LOG_LEVEL", "info")
	maxConcurrent := getEnvInt("MAX_CONCURRENT", 20)
	statusMaxEntries := getEnvInt("STATUS_MAX_ENTRIES", 0)

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(logLevel),
		Pretty: getEnv("LOG_PRETTY", "") != "",
		Output: os.Stderr,
	})

	// Setup Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("redis_url", redisURL).Msg("Failed to connect to Redis")
	}
	log.Info().Str("redis_url", redisURL).Msg("Connected to Redis")

	// Upstream client
	fetcher, err := fetch.New(fetch.DefaultConfig(redisClient, userAgent))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create fetcher")
	}
	sourceClient, err := source.New(fetcher, sourceURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create source client")
	}

	// Ingestion service against the in-memory store. The managed document
	// store plugs in behind the same interface.
	svc, err := ingest.NewService(sourceClient, memory.New(), ingest.DefaultConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create ingest service")
	}

	// Task machinery
	broadcaster := broadcast.New(broadcast.DefaultBuffer)
	statusStore := task.NewStatusStore(broadcaster, statusMaxEntries)

	schedCfg := scheduler.DefaultConfig()
	schedCfg.MaxConcurrent = maxConcurrent
	sched := scheduler.New(statusStore, schedCfg)

	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		sched.Run(ctx)
	}()

	// HTTP server
	srv := newServer(svc, sched, statusStore, broadcaster)
	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: srv.routes(),
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("Starting ingest server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP shutdown error")
	}

	// Wait for in-flight tasks to finish.
	<-schedDone
	log.Info().Msg("Shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
