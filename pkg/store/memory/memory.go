// Package memory is an in-memory implementation of ingest.Store, used for
// development and tests. The production document store lives behind the same
// interface in its own deployment.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/soundvault/artist-ingest/pkg/ingest"
)

// Store keeps every collection in maps keyed by record id.
type Store struct {
	mu       sync.RWMutex
	artists  map[string]ingest.Artist
	albums   map[string]ingest.Album
	songs    map[string]ingest.Song
	videos   map[string]ingest.Video
	photos   map[string]ingest.Photo
	comments map[string]ingest.Comment
	totals   map[string]ingest.SongTotals // keyed by artist id
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		artists:  make(map[string]ingest.Artist),
		albums:   make(map[string]ingest.Album),
		songs:    make(map[string]ingest.Song),
		videos:   make(map[string]ingest.Video),
		photos:   make(map[string]ingest.Photo),
		comments: make(map[string]ingest.Comment),
		totals:   make(map[string]ingest.SongTotals),
	}
}

// SaveArtist stores or replaces an artist profile.
func (s *Store) SaveArtist(ctx context.Context, artist *ingest.Artist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artists[artist.ID] = *artist
	return nil
}

// SaveAlbums stores or replaces albums by id.
func (s *Store) SaveAlbums(ctx context.Context, albums []ingest.Album) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, album := range albums {
		s.albums[album.ID] = album
	}
	return nil
}

// SaveSongs stores or replaces songs by id along with the artist's totals.
func (s *Store) SaveSongs(ctx context.Context, songs []ingest.Song, totals ingest.SongTotals) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, song := range songs {
		s.songs[song.ID] = song
	}
	if len(songs) > 0 {
		s.totals[songs[0].ArtistID] = totals
	}
	return nil
}

// SaveVideos stores or replaces videos by id.
func (s *Store) SaveVideos(ctx context.Context, videos []ingest.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, video := range videos {
		s.videos[video.ID] = video
	}
	return nil
}

// SavePhotos stores or replaces photos by id.
func (s *Store) SavePhotos(ctx context.Context, photos []ingest.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, photo := range photos {
		s.photos[photo.ID] = photo
	}
	return nil
}

// SaveComments stores or replaces comments by id.
func (s *Store) SaveComments(ctx context.Context, comments []ingest.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, comment := range comments {
		s.comments[comment.ID] = comment
	}
	return nil
}

// LoadArtist returns one artist, or nil when not ingested.
func (s *Store) LoadArtist(ctx context.Context, artistID string) (*ingest.Artist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	artist, ok := s.artists[artistID]
	if !ok {
		return nil, nil
	}
	return &artist, nil
}

// LoadAllArtists returns every ingested artist, ordered by id.
func (s *Store) LoadAllArtists(ctx context.Context) ([]ingest.Artist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	artists := make([]ingest.Artist, 0, len(s.artists))
	for _, artist := range s.artists {
		artists = append(artists, artist)
	}
	sort.Slice(artists, func(i, j int) bool { return artists[i].ID < artists[j].ID })
	return artists, nil
}

// LoadArtistAlbums returns an artist's albums, ordered by id.
func (s *Store) LoadArtistAlbums(ctx context.Context, artistID string) ([]ingest.Album, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var albums []ingest.Album
	for _, album := range s.albums {
		if album.ArtistID == artistID {
			albums = append(albums, album)
		}
	}
	sort.Slice(albums, func(i, j int) bool { return albums[i].ID < albums[j].ID })
	return albums, nil
}

// LoadArtistSongs returns an artist's songs, ordered by id.
func (s *Store) LoadArtistSongs(ctx context.Context, artistID string) ([]ingest.Song, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var songs []ingest.Song
	for _, song := range s.songs {
		if song.ArtistID == artistID {
			songs = append(songs, song)
		}
	}
	sort.Slice(songs, func(i, j int) bool { return songs[i].ID < songs[j].ID })
	return songs, nil
}

// LoadArtistVideos returns an artist's videos, ordered by id.
func (s *Store) LoadArtistVideos(ctx context.Context, artistID string) ([]ingest.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var videos []ingest.Video
	for _, video := range s.videos {
		if video.ArtistID == artistID {
			videos = append(videos, video)
		}
	}
	sort.Slice(videos, func(i, j int) bool { return videos[i].ID < videos[j].ID })
	return videos, nil
}

// LoadArtistPhotos returns an artist's photos, ordered by id.
func (s *Store) LoadArtistPhotos(ctx context.Context, artistID string) ([]ingest.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var photos []ingest.Photo
	for _, photo := range s.photos {
		if photo.ArtistID == artistID {
			photos = append(photos, photo)
		}
	}
	sort.Slice(photos, func(i, j int) bool { return photos[i].ID < photos[j].ID })
	return photos, nil
}

// LoadAlbumComments returns one album's comments, ordered by id.
func (s *Store) LoadAlbumComments(ctx context.Context, albumID string) ([]ingest.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var comments []ingest.Comment
	for _, comment := range s.comments {
		if comment.AlbumID == albumID {
			comments = append(comments, comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

// LoadArtistComments returns all comments across an artist's albums,
// ordered by id.
func (s *Store) LoadArtistComments(ctx context.Context, artistID string) ([]ingest.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var comments []ingest.Comment
	for _, comment := range s.comments {
		if comment.ArtistID == artistID {
			comments = append(comments, comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

// LoadLatestComments returns an artist's comments ordered most recent first
// (display date and time descending).
func (s *Store) LoadLatestComments(ctx context.Context, artistID string) ([]ingest.Comment, error) {
	comments, err := s.LoadArtistComments(ctx, artistID)
	if err != nil {
		return nil, err
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].DisplayDate != comments[j].DisplayDate {
			return comments[i].DisplayDate > comments[j].DisplayDate
		}
		return comments[i].DisplayTime > comments[j].DisplayTime
	})
	return comments, nil
}

// SongTotals returns the stored totals for an artist.
func (s *Store) SongTotals(artistID string) (ingest.SongTotals, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	totals, ok := s.totals[artistID]
	return totals, ok
}
