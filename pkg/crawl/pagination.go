package crawl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// PageFunc fetches a single page of a paginated resource.
// An empty (or nil) slice with a nil error means the page holds no items.
type PageFunc[T any] func(ctx context.Context, startIndex, pageSize int) ([]T, error)

// PagerConfig holds pagination crawl configuration.
type PagerConfig struct {
	// InitialStartIndex is the startIndex of the first page (the source
	// indexes from 1).
	InitialStartIndex int

	// PageSize is the number of items requested per page.
	PageSize int

	// MaxAhead is how many pages are fetched concurrently per wave once the
	// probe page proves non-empty.
	MaxAhead int
}

// DefaultPagerConfig returns safe defaults for the source's paging endpoints.
func DefaultPagerConfig() PagerConfig {
	return PagerConfig{
		InitialStartIndex: 1,
		PageSize:          1000,
		MaxAhead:          8,
	}
}

// PageResult is the tagged outcome of one page fetch: items, empty, or error.
type PageResult[T any] struct {
	StartIndex int
	Items      []T
	Err        error
}

// Empty reports whether the page was fetched successfully and held no items.
// An empty page is the sole end-of-data signal; a partial page is not.
func (r PageResult[T]) Empty() bool {
	return r.Err == nil && len(r.Items) == 0
}

// CrawlAll drives a paginated resource to completion and returns all items in
// ascending startIndex order.
//
// The first page is probed synchronously: a resource with zero items (the
// common case for an artist missing one content type) costs exactly one
// request. After a non-empty probe, pages are fetched in concurrent waves of
// MaxAhead. Within each wave results are consumed in index order; the first
// empty page ends the crawl and every later page in the wave is dropped. A
// page fetch error aborts the crawl with no partial result.
func CrawlAll[T any](ctx context.Context, cfg PagerConfig, fetchPage PageFunc[T]) ([]T, error) {
	if cfg.InitialStartIndex <= 0 {
		cfg.InitialStartIndex = 1
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}
	if cfg.MaxAhead <= 0 {
		cfg.MaxAhead = 8
	}

	start := time.Now()

	first, err := fetchPage(ctx, cfg.InitialStartIndex, cfg.PageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch first page: %w", err)
	}
	if len(first) == 0 {
		log.Debug().
			Int("start_index", cfg.InitialStartIndex).
			Msg("First page empty - nothing to crawl")
		return nil, nil
	}

	items := append([]T(nil), first...)
	next := cfg.InitialStartIndex + cfg.PageSize

	for {
		results := make([]PageResult[T], cfg.MaxAhead)

		var wg sync.WaitGroup
		for i := 0; i < cfg.MaxAhead; i++ {
			wg.Add(1)
			go func(slot, startIndex int) {
				defer wg.Done()
				pageItems, err := fetchPage(ctx, startIndex, cfg.PageSize)
				results[slot] = PageResult[T]{
					StartIndex: startIndex,
					Items:      pageItems,
					Err:        err,
				}
			}(i, next+i*cfg.PageSize)
		}
		wg.Wait()

		// Consume in index order; arrival order is irrelevant.
		for _, result := range results {
			if result.Err != nil {
				return nil, fmt.Errorf("fetch page at index %d: %w", result.StartIndex, result.Err)
			}
			if result.Empty() {
				log.Info().
					Int("items", len(items)).
					Int("last_index", result.StartIndex).
					Dur("duration", time.Since(start)).
					Msg("Crawl complete")
				return items, nil
			}
			items = append(items, result.Items...)
		}

		next += cfg.MaxAhead * cfg.PageSize

		log.Debug().
			Int("items", len(items)).
			Int("next_index", next).
			Msg("Crawl progress")
	}
}
