package ingest

import (
	"context"
)

// Extractor is the field-extraction collaborator. Implementations own the
// site-specific request and parsing details; the operations here only drive
// pagination, batching, and fan-out over these calls.
type Extractor interface {
	// ArtistInfo extracts the artist profile from a source URL.
	ArtistInfo(ctx context.Context, url string) (*Artist, error)

	// AlbumPage returns one page of the artist's album list.
	AlbumPage(ctx context.Context, artistID string, startIndex, pageSize int) ([]Album, error)

	// SongPage returns one page of the artist's song list.
	SongPage(ctx context.Context, artistID string, startIndex, pageSize int) ([]Song, error)

	// SongLikes resolves like counts for one batch of song ids. Ids the
	// source knows nothing about may be omitted from the mapping.
	SongLikes(ctx context.Context, songIDs []string) (map[string]int, error)

	// SongDetail enriches a song with listener and stream counts.
	SongDetail(ctx context.Context, song Song) (Song, error)

	// VideoPage returns one page of the artist's video list.
	VideoPage(ctx context.Context, artistID string, startIndex, pageSize int) ([]Video, error)

	// PhotoPage returns one page of the artist's photo list.
	PhotoPage(ctx context.Context, artistID string, startIndex, pageSize int) ([]Photo, error)

	// CommentPage returns one page of comments for an album.
	CommentPage(ctx context.Context, artistID, albumID string, startIndex, pageSize int) ([]Comment, error)
}

// Store is the persistence collaborator, a document store keyed by
// collection. Save calls replace records by id within their collection.
type Store interface {
	SaveArtist(ctx context.Context, artist *Artist) error
	SaveAlbums(ctx context.Context, albums []Album) error
	SaveSongs(ctx context.Context, songs []Song, totals SongTotals) error
	SaveVideos(ctx context.Context, videos []Video) error
	SavePhotos(ctx context.Context, photos []Photo) error
	SaveComments(ctx context.Context, comments []Comment) error

	LoadArtist(ctx context.Context, artistID string) (*Artist, error)
	LoadAllArtists(ctx context.Context) ([]Artist, error)
	LoadArtistAlbums(ctx context.Context, artistID string) ([]Album, error)
	LoadArtistSongs(ctx context.Context, artistID string) ([]Song, error)
	LoadArtistVideos(ctx context.Context, artistID string) ([]Video, error)
	LoadArtistPhotos(ctx context.Context, artistID string) ([]Photo, error)
	LoadAlbumComments(ctx context.Context, albumID string) ([]Comment, error)
	LoadArtistComments(ctx context.Context, artistID string) ([]Comment, error)
	LoadLatestComments(ctx context.Context, artistID string) ([]Comment, error)
}
