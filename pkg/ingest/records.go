// Package ingest implements the ingestion operation bodies: one per content
// type, each built from the crawl protocol against injected extraction and
// persistence collaborators. Operations return nothing meaningful to the
// caller; their outcome is reflected entirely through task status.
package ingest

// Artist is the normalized artist profile record.
type Artist struct {
	ID        string `json:"id"`
	Name      string `json:"artist_name"`
	DebutDate string `json:"debut_date"`
	ImageURL  string `json:"image_url"`
}

// Album is one entry in an artist's album list.
type Album struct {
	ID          string `json:"id"`
	ArtistID    string `json:"artist_id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Likes       int    `json:"likes"`
}

// Song is one entry in an artist's song list, enriched with per-song counters.
type Song struct {
	ID        string `json:"id"`
	ArtistID  string `json:"artist_id"`
	Title     string `json:"song_title"`
	Likes     int    `json:"likes"`
	Listeners int    `json:"listeners"`
	Streams   int    `json:"streams"`
}

// SongTotals aggregates counters across an artist's whole catalogue.
type SongTotals struct {
	Hearts    int `json:"total_hearts"`
	Listeners int `json:"total_listeners"`
	Streams   int `json:"total_streams"`
}

// Video is one entry in an artist's video list.
type Video struct {
	ID           string `json:"id"`
	ArtistID     string `json:"artist_id"`
	Title        string `json:"title"`
	Playtime     string `json:"playtime"`
	ThumbnailURL string `json:"thumbnail_url"`
	ViewCount    int    `json:"view_count"`
}

// Photo is one entry in an artist's photo list.
type Photo struct {
	ID       string `json:"id"`
	ArtistID string `json:"artist_id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

// Comment is one user comment on an album.
type Comment struct {
	ID                 string `json:"id"`
	ArtistID           string `json:"artist_id"`
	AlbumID            string `json:"album_id"`
	UserID             string `json:"user_id"`
	Username           string `json:"username"`
	Content            string `json:"content"`
	DisplayDate        string `json:"display_date"`
	DisplayTime        string `json:"display_time"`
	Recommendations    int    `json:"recommendations"`
	NonRecommendations int    `json:"non_recommendations"`
}
