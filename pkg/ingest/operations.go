package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/soundvault/artist-ingest/pkg/crawl"
)

// CrawlArtist fetches an artist profile from a source URL and persists it.
func (s *Service) CrawlArtist(ctx context.Context, url string) error {
	artist, err := s.extractor.ArtistInfo(ctx, url)
	if err != nil {
		return fmt.Errorf("get artist info from %s: %w", url, err)
	}

	if err := s.store.SaveArtist(ctx, artist); err != nil {
		return fmt.Errorf("save artist %s: %w", artist.ID, err)
	}

	s.logger.Info().
		Str("artist_id", artist.ID).
		Str("artist_name", artist.Name).
		Msg("Artist saved")
	return nil
}

// CrawlAlbums crawls an artist's album list, persists it, and moves the
// artist's debut date earlier when the oldest album release predates it.
func (s *Service) CrawlAlbums(ctx context.Context, artistID string) error {
	albums, err := crawl.CrawlAll(ctx, s.pagerConfig(), func(ctx context.Context, startIndex, pageSize int) ([]Album, error) {
		return s.extractor.AlbumPage(ctx, artistID, startIndex, pageSize)
	})
	if err != nil {
		return fmt.Errorf("crawl albums for %s: %w", artistID, err)
	}
	if len(albums) == 0 {
		s.logger.Info().Str("artist_id", artistID).Msg("No albums found")
		return nil
	}

	if err := s.store.SaveAlbums(ctx, albums); err != nil {
		return fmt.Errorf("save %d albums for %s: %w", len(albums), artistID, err)
	}
	s.logger.Info().
		Str("artist_id", artistID).
		Int("albums", len(albums)).
		Msg("Albums saved")

	return s.updateDebutDate(ctx, artistID, albums)
}

// updateDebutDate backdates the artist's debut date to the earliest album
// release. Release dates are zero-padded (YYYY.MM.DD), so string comparison
// orders them correctly.
func (s *Service) updateDebutDate(ctx context.Context, artistID string, albums []Album) error {
	artist, err := s.store.LoadArtist(ctx, artistID)
	if err != nil {
		return fmt.Errorf("load artist %s: %w", artistID, err)
	}
	if artist == nil {
		// Profile not crawled yet; nothing to update.
		return nil
	}

	firstReleased := albums[0].ReleaseDate
	for _, album := range albums[1:] {
		if album.ReleaseDate != "" && (firstReleased == "" || album.ReleaseDate < firstReleased) {
			firstReleased = album.ReleaseDate
		}
	}

	s.logger.Info().
		Str("artist_id", artistID).
		Str("debut_date", artist.DebutDate).
		Str("first_album_released", firstReleased).
		Msg("Checking debut date against first album release")

	if firstReleased == "" || (artist.DebutDate != "" && artist.DebutDate <= firstReleased) {
		return nil
	}

	artist.DebutDate = firstReleased
	if err := s.store.SaveArtist(ctx, artist); err != nil {
		return fmt.Errorf("update debut date for %s: %w", artistID, err)
	}
	s.logger.Info().
		Str("artist_id", artistID).
		Str("debut_date", firstReleased).
		Msg("Updated artist debut date")
	return nil
}

// CrawlSongs crawls an artist's song list, resolves like counts in chunked
// batches, enriches each song with listener and stream counts, and persists
// the songs together with catalogue totals.
func (s *Service) CrawlSongs(ctx context.Context, artistID string) error {
	songs, err := crawl.CrawlAll(ctx, s.pagerConfig(), func(ctx context.Context, startIndex, pageSize int) ([]Song, error) {
		return s.extractor.SongPage(ctx, artistID, startIndex, pageSize)
	})
	if err != nil {
		return fmt.Errorf("crawl songs for %s: %w", artistID, err)
	}
	if len(songs) == 0 {
		s.logger.Info().Str("artist_id", artistID).Msg("No songs found")
		return nil
	}

	// Resolve like counts in batches; songs the source has no counter for
	// default to zero.
	songIDs := make([]string, len(songs))
	for i, song := range songs {
		songIDs[i] = song.ID
	}
	likes, err := crawl.ResolveBatches(ctx, songIDs, s.config.BatchSize, 0, s.extractor.SongLikes)
	if err != nil {
		return fmt.Errorf("resolve song likes for %s: %w", artistID, err)
	}
	for i := range songs {
		songs[i].Likes = likes[songs[i].ID]
	}

	if err := s.enrichSongDetails(ctx, songs); err != nil {
		return fmt.Errorf("fetch song details for %s: %w", artistID, err)
	}

	var totals SongTotals
	for _, song := range songs {
		totals.Hearts += song.Likes
		totals.Listeners += song.Listeners
		totals.Streams += song.Streams
	}

	if err := s.store.SaveSongs(ctx, songs, totals); err != nil {
		return fmt.Errorf("save %d songs for %s: %w", len(songs), artistID, err)
	}
	s.logger.Info().
		Str("artist_id", artistID).
		Int("songs", len(songs)).
		Int("total_hearts", totals.Hearts).
		Msg("Songs saved")
	return nil
}

// enrichSongDetails fans out per-song detail fetches over a bounded worker
// pool, writing results back in place. The first failure aborts the whole
// enrichment.
func (s *Service) enrichSongDetails(ctx context.Context, songs []Song) error {
	indexes := make(chan int, len(songs))
	for i := range songs {
		indexes <- i
	}
	close(indexes)

	workers := s.config.DetailConcurrency
	if workers <= 0 {
		workers = 10
	}
	if workers > len(songs) {
		workers = len(songs)
	}

	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			for i := range indexes {
				detailed, err := s.extractor.SongDetail(ctx, songs[i])
				if err != nil {
					errs[slot] = fmt.Errorf("song %s: %w", songs[i].ID, err)
					return
				}
				songs[i] = detailed
			}
		}(w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// CrawlVideos crawls an artist's video list and persists it.
func (s *Service) CrawlVideos(ctx context.Context, artistID string) error {
	videos, err := crawl.CrawlAll(ctx, s.pagerConfig(), func(ctx context.Context, startIndex, pageSize int) ([]Video, error) {
		return s.extractor.VideoPage(ctx, artistID, startIndex, pageSize)
	})
	if err != nil {
		return fmt.Errorf("crawl videos for %s: %w", artistID, err)
	}
	if len(videos) == 0 {
		s.logger.Info().Str("artist_id", artistID).Msg("No videos found")
		return nil
	}

	if err := s.store.SaveVideos(ctx, videos); err != nil {
		return fmt.Errorf("save %d videos for %s: %w", len(videos), artistID, err)
	}
	s.logger.Info().
		Str("artist_id", artistID).
		Int("videos", len(videos)).
		Msg("Videos saved")
	return nil
}

// CrawlPhotos crawls an artist's photo list and persists it.
func (s *Service) CrawlPhotos(ctx context.Context, artistID string) error {
	photos, err := crawl.CrawlAll(ctx, s.pagerConfig(), func(ctx context.Context, startIndex, pageSize int) ([]Photo, error) {
		return s.extractor.PhotoPage(ctx, artistID, startIndex, pageSize)
	})
	if err != nil {
		return fmt.Errorf("crawl photos for %s: %w", artistID, err)
	}
	if len(photos) == 0 {
		s.logger.Info().Str("artist_id", artistID).Msg("No photos found")
		return nil
	}

	if err := s.store.SavePhotos(ctx, photos); err != nil {
		return fmt.Errorf("save %d photos for %s: %w", len(photos), artistID, err)
	}
	s.logger.Info().
		Str("artist_id", artistID).
		Int("photos", len(photos)).
		Msg("Photos saved")
	return nil
}

// CrawlComments crawls comments per album for an artist whose albums were
// already ingested, persisting each album's comments as they complete.
// Albums are processed concurrently; comment pages inside one album follow
// the usual speculative pagination.
func (s *Service) CrawlComments(ctx context.Context, artistID string) error {
	albums, err := s.store.LoadArtistAlbums(ctx, artistID)
	if err != nil {
		return fmt.Errorf("load albums for %s: %w", artistID, err)
	}
	if len(albums) == 0 {
		return fmt.Errorf("no albums ingested for artist %s: crawl albums first", artistID)
	}

	pagerCfg := s.pagerConfig()
	pagerCfg.PageSize = s.config.CommentPageSize

	errs := make([]error, len(albums))
	var wg sync.WaitGroup
	for i, album := range albums {
		wg.Add(1)
		go func(slot int, albumID string) {
			defer wg.Done()
			errs[slot] = s.crawlAlbumComments(ctx, pagerCfg, artistID, albumID)
		}(i, album.ID)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("album %s: %w", albums[i].ID, err)
		}
	}
	return nil
}

func (s *Service) crawlAlbumComments(ctx context.Context, pagerCfg crawl.PagerConfig, artistID, albumID string) error {
	comments, err := crawl.CrawlAll(ctx, pagerCfg, func(ctx context.Context, startIndex, pageSize int) ([]Comment, error) {
		return s.extractor.CommentPage(ctx, artistID, albumID, startIndex, pageSize)
	})
	if err != nil {
		return fmt.Errorf("crawl comments: %w", err)
	}
	if len(comments) == 0 {
		s.logger.Debug().
			Str("artist_id", artistID).
			Str("album_id", albumID).
			Msg("No comments found")
		return nil
	}

	if err := s.store.SaveComments(ctx, comments); err != nil {
		return fmt.Errorf("save %d comments: %w", len(comments), err)
	}
	s.logger.Info().
		Str("artist_id", artistID).
		Str("album_id", albumID).
		Int("comments", len(comments)).
		Msg("Comments saved")
	return nil
}

func (s *Service) pagerConfig() crawl.PagerConfig {
	return crawl.PagerConfig{
		InitialStartIndex: 1,
		PageSize:          s.config.PageSize,
		MaxAhead:          s.config.MaxAhead,
	}
}
