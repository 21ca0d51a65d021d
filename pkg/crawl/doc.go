// Package crawl implements the generic pagination and chunking protocol the
// ingestion operations are built on.
//
// The upstream source exposes no total-count signal, so CrawlAll uses a
// speculative-probe protocol: the first page is fetched alone, and only once
// it proves non-empty are subsequent pages fetched concurrently in waves.
// The first empty page in index order terminates the crawl; items from pages
// requested after it are discarded even when they arrived non-empty earlier
// in wall-clock time.
//
// ResolveBatches covers the complementary shape: a large known id set that
// must be looked up in fixed-size groups to stay within an upstream
// request-size limit, fetched concurrently and merged into one mapping.
//
// Example usage:
//
//	videos, err := crawl.CrawlAll(ctx, crawl.DefaultPagerConfig(),
//		func(ctx context.Context, startIndex, pageSize int) ([]Video, error) {
//			return client.VideoPage(ctx, artistID, startIndex, pageSize)
//		})
//
//	likes, err := crawl.ResolveBatches(ctx, songIDs, 100, 0, client.SongLikes)
package crawl
