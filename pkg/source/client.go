// Package source implements the upstream JSON API client. It satisfies
// ingest.Extractor by mapping the source's paging and lookup endpoints onto
// the record types; all transport concerns (retry, caching, rate gating)
// live in pkg/fetch.
package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/soundvault/artist-ingest/pkg/fetch"
	"github.com/soundvault/artist-ingest/pkg/ingest"
)

// Endpoint paths relative to the base URL.
const (
	pathArtistInfo  = "/artist/info.json"
	pathAlbumPaging = "/artist/albumPaging.json"
	pathSongPaging  = "/artist/songPaging.json"
	pathVideoPaging = "/artist/videoPaging.json"
	pathPhotoPaging = "/artist/photoPaging.json"
	pathSongLikes   = "/commonlike/getSongLike.json"
	pathSongDetail  = "/song/detail.json"
	pathComments    = "/comments/list.json"
)

// Client talks to the upstream source.
type Client struct {
	fetcher *fetch.Fetcher
	baseURL string
}

// New creates a source client rooted at baseURL.
func New(fetcher *fetch.Fetcher, baseURL string) (*Client, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	return &Client{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// ArtistInfo extracts an artist profile. The argument may be a full profile
// URL (as submitted by callers) or a bare artist id.
func (c *Client) ArtistInfo(ctx context.Context, artistURL string) (*ingest.Artist, error) {
	params := url.Values{}
	if strings.Contains(artistURL, "://") {
		params.Set("url", artistURL)
	} else {
		params.Set("artistId", artistURL)
	}

	var artist ingest.Artist
	if err := c.fetcher.GetJSON(ctx, c.baseURL+pathArtistInfo, params, &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// AlbumPage returns one page of an artist's album list.
func (c *Client) AlbumPage(ctx context.Context, artistID string, startIndex, pageSize int) ([]ingest.Album, error) {
	var albums []ingest.Album
	if err := c.fetcher.GetJSON(ctx, c.baseURL+pathAlbumPaging, pagingParams(artistID, startIndex, pageSize), &albums); err != nil {
		return nil, err
	}
	return albums, nil
}

// SongPage returns one page of an artist's song list.
func (c *Client) SongPage(ctx context.Context, artistID string, startIndex, pageSize int) ([]ingest.Song, error) {
	var songs []ingest.Song
	if err := c.fetcher.GetJSON(ctx, c.baseURL+pathSongPaging, pagingParams(artistID, startIndex, pageSize), &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// SongLikes resolves like counts for one batch of song ids.
func (c *Client) SongLikes(ctx context.Context, songIDs []string) (map[string]int, error) {
	params := url.Values{}
	params.Set("contsIds", strings.Join(songIDs, ","))

	var resp struct {
		Likes map[string]int `json:"likes"`
	}
	if err := c.fetcher.GetJSON(ctx, c.baseURL+pathSongLikes, params, &resp); err != nil {
		return nil, err
	}
	return resp.Likes, nil
}

// SongDetail enriches a song with listener and stream counts.
func (c *Client) SongDetail(ctx context.Context, song ingest.Song) (ingest.Song, error) {
	params := url.Values{}
	params.Set("songId", song.ID)

	var resp struct {
		Listeners int `json:"listeners"`
		Streams   int `json:"streams"`
	}
	if err := c.fetcher.GetJSON(ctx, c.baseURL+pathSongDetail, params, &resp); err != nil {
		return song, err
	}

	song.Listeners = resp.Listeners
	song.Streams = resp.Streams
	return song, nil
}

// VideoPage returns one page of an artist's video list.
func (c *Client) VideoPage(ctx context.Context, artistID string, startIndex, pageSize int) ([]ingest.Video, error) {
	var videos []ingest.Video
	if err := c.fetcher.GetJSON(ctx, c.baseURL+pathVideoPaging, pagingParams(artistID, startIndex, pageSize), &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// PhotoPage returns one page of an artist's photo list.
func (c *Client) PhotoPage(ctx context.Context, artistID string, startIndex, pageSize int) ([]ingest.Photo, error) {
	var photos []ingest.Photo
	if err := c.fetcher.GetJSON(ctx, c.baseURL+pathPhotoPaging, pagingParams(artistID, startIndex, pageSize), &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

// CommentPage returns one page of comments for an album.
func (c *Client) CommentPage(ctx context.Context, artistID, albumID string, startIndex, pageSize int) ([]ingest.Comment, error) {
	params := pagingParams(artistID, startIndex, pageSize)
	params.Set("albumId", albumID)

	var comments []ingest.Comment
	if err := c.fetcher.GetJSON(ctx, c.baseURL+pathComments, params, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// pagingParams builds the query the source's paging endpoints share.
func pagingParams(artistID string, startIndex, pageSize int) url.Values {
	params := url.Values{}
	params.Set("artistId", artistID)
	params.Set("startIndex", strconv.Itoa(startIndex))
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("orderBy", "ISSUE_DATE")
	return params
}
