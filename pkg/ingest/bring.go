package ingest

import (
	"context"
	"fmt"
)

// The Bring accessors are the synchronous read side of the service: they
// load previously ingested records for direct serving, bypassing the task
// machinery entirely.

// BringArtist loads one artist profile.
func (s *Service) BringArtist(ctx context.Context, artistID string) (*Artist, error) {
	artist, err := s.store.LoadArtist(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("load artist %s: %w", artistID, err)
	}
	return artist, nil
}

// BringAllArtists loads every ingested artist profile.
func (s *Service) BringAllArtists(ctx context.Context) ([]Artist, error) {
	artists, err := s.store.LoadAllArtists(ctx)
	if err != nil {
		return nil, fmt.Errorf("load artists: %w", err)
	}
	return artists, nil
}

// BringAlbums loads an artist's ingested albums.
func (s *Service) BringAlbums(ctx context.Context, artistID string) ([]Album, error) {
	albums, err := s.store.LoadArtistAlbums(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("load albums for %s: %w", artistID, err)
	}
	return albums, nil
}

// BringSongs loads an artist's ingested songs.
func (s *Service) BringSongs(ctx context.Context, artistID string) ([]Song, error) {
	songs, err := s.store.LoadArtistSongs(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("load songs for %s: %w", artistID, err)
	}
	return songs, nil
}

// BringVideos loads an artist's ingested videos.
func (s *Service) BringVideos(ctx context.Context, artistID string) ([]Video, error) {
	videos, err := s.store.LoadArtistVideos(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("load videos for %s: %w", artistID, err)
	}
	return videos, nil
}

// BringPhotos loads an artist's ingested photos.
func (s *Service) BringPhotos(ctx context.Context, artistID string) ([]Photo, error) {
	photos, err := s.store.LoadArtistPhotos(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("load photos for %s: %w", artistID, err)
	}
	return photos, nil
}

// BringAlbumComments loads the ingested comments for one album.
func (s *Service) BringAlbumComments(ctx context.Context, albumID string) ([]Comment, error) {
	comments, err := s.store.LoadAlbumComments(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("load comments for album %s: %w", albumID, err)
	}
	return comments, nil
}

// BringArtistComments loads the ingested comments across all of an artist's
// albums.
func (s *Service) BringArtistComments(ctx context.Context, artistID string) ([]Comment, error) {
	comments, err := s.store.LoadArtistComments(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("load comments for artist %s: %w", artistID, err)
	}
	return comments, nil
}

// BringLatestComments loads an artist's most recent comments.
func (s *Service) BringLatestComments(ctx context.Context, artistID string) ([]Comment, error) {
	comments, err := s.store.LoadLatestComments(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("load latest comments for artist %s: %w", artistID, err)
	}
	return comments, nil
}
