package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/soundvault/artist-ingest/pkg/task"
)

// Config holds crawl-shape parameters shared by the operations.
type Config struct {
	// PageSize for artist list endpoints (songs, videos, photos, albums).
	PageSize int

	// CommentPageSize for the comment endpoint, which caps pages far lower.
	CommentPageSize int

	// BatchSize for chunked like-count lookups.
	BatchSize int

	// MaxAhead is the speculative pagination wave width.
	MaxAhead int

	// DetailConcurrency caps concurrent per-song detail fetches.
	DetailConcurrency int
}

// DefaultConfig returns the crawl parameters the source tolerates.
func DefaultConfig() Config {
	return Config{
		PageSize:          1000,
		CommentPageSize:   10,
		BatchSize:         100,
		MaxAhead:          8,
		DetailConcurrency: 10,
	}
}

// Service binds the ingestion operations to their collaborators.
type Service struct {
	extractor Extractor
	store     Store
	config    Config
	logger    zerolog.Logger
}

// NewService creates an ingestion service.
func NewService(extractor Extractor, store Store, cfg Config) (*Service, error) {
	if extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.PageSize <= 0 {
		cfg = DefaultConfig()
	}

	return &Service{
		extractor: extractor,
		store:     store,
		config:    cfg,
		logger:    log.With().Str("component", "ingest").Logger(),
	}, nil
}

// NewTask builds a schedulable task for an operation kind and its primary
// argument (artist id, or source URL for artist-info). The id is derived
// deterministically, so repeated requests for the same target collide.
func (s *Service) NewTask(kind task.Kind, arg string) (*task.Task, error) {
	t := &task.Task{
		ID:   task.DeriveID(kind, arg),
		Kind: kind,
		Arg:  arg,
	}

	switch kind {
	case task.KindArtistInfo:
		t.Run = func(ctx context.Context) error { return s.CrawlArtist(ctx, arg) }
	case task.KindAlbums:
		t.Run = func(ctx context.Context) error { return s.CrawlAlbums(ctx, arg) }
	case task.KindSongs:
		t.Run = func(ctx context.Context) error { return s.CrawlSongs(ctx, arg) }
	case task.KindVideos:
		t.Run = func(ctx context.Context) error { return s.CrawlVideos(ctx, arg) }
	case task.KindPhotos:
		t.Run = func(ctx context.Context) error { return s.CrawlPhotos(ctx, arg) }
	case task.KindComments:
		t.Run = func(ctx context.Context) error { return s.CrawlComments(ctx, arg) }
	default:
		return nil, fmt.Errorf("unknown operation kind: %s", kind)
	}

	return t, nil
}
