package crawl

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultBatchSize is the largest id group the source accepts per lookup.
const DefaultBatchSize = 100

// BatchFunc looks up values for one batch of ids. The returned mapping may
// omit ids the source knows nothing about.
type BatchFunc[K comparable, V any] func(ctx context.Context, ids []K) (map[K]V, error)

// ResolveBatches splits ids into contiguous batches of at most batchSize,
// fetches all batches concurrently, and merges the partial mappings. Ids
// absent from every batch response resolve to defaultValue instead of being
// omitted. A single batch failure fails the whole resolve: a silently partial
// mapping would be indistinguishable from a complete one.
func ResolveBatches[K comparable, V any](ctx context.Context, ids []K, batchSize int, defaultValue V, fetchBatch BatchFunc[K, V]) (map[K]V, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	merged := make(map[K]V, len(ids))
	if len(ids) == 0 {
		return merged, nil
	}

	batches := chunk(ids, batchSize)
	partials := make([]map[K]V, len(batches))
	errs := make([]error, len(batches))

	log.Debug().
		Int("ids", len(ids)).
		Int("batches", len(batches)).
		Int("batch_size", batchSize).
		Msg("Resolving id batches")

	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go func(slot int, batchIDs []K) {
			defer wg.Done()
			partials[slot], errs[slot] = fetchBatch(ctx, batchIDs)
		}(i, batch)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("fetch batch %d/%d: %w", i+1, len(batches), err)
		}
	}

	// Batches partition a disjoint id set, so merge order cannot matter; the
	// defaults are laid down first and overwritten by whatever resolved.
	for _, id := range ids {
		merged[id] = defaultValue
	}
	for _, partial := range partials {
		for id, value := range partial {
			merged[id] = value
		}
	}

	return merged, nil
}

// chunk splits ids into contiguous groups of at most size, preserving order.
func chunk[K any](ids []K, size int) [][]K {
	var batches [][]K
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
