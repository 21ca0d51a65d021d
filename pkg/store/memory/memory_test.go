package memory

import (
	"context"
	"testing"

	"github.com/soundvault/artist-ingest/pkg/ingest"
)

func TestStore_ImplementsIngestStore(t *testing.T) {
	var _ ingest.Store = New()
}

func TestStore_SaveAndLoadArtist(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.SaveArtist(ctx, &ingest.Artist{ID: "1", Name: "IU"}); err != nil {
		t.Fatalf("SaveArtist() error = %v", err)
	}

	artist, err := s.LoadArtist(ctx, "1")
	if err != nil {
		t.Fatalf("LoadArtist() error = %v", err)
	}
	if artist == nil || artist.Name != "IU" {
		t.Errorf("LoadArtist() = %+v, want name IU", artist)
	}

	missing, err := s.LoadArtist(ctx, "nope")
	if err != nil {
		t.Fatalf("LoadArtist() error = %v", err)
	}
	if missing != nil {
		t.Errorf("LoadArtist(unknown) = %+v, want nil", missing)
	}
}

func TestStore_SaveArtistReplaces(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.SaveArtist(ctx, &ingest.Artist{ID: "1", Name: "IU", DebutDate: "2010.01.01"})
	s.SaveArtist(ctx, &ingest.Artist{ID: "1", Name: "IU", DebutDate: "2008.09.18"})

	artist, _ := s.LoadArtist(ctx, "1")
	if artist.DebutDate != "2008.09.18" {
		t.Errorf("DebutDate = %q, want replaced value 2008.09.18", artist.DebutDate)
	}

	all, _ := s.LoadAllArtists(ctx)
	if len(all) != 1 {
		t.Errorf("LoadAllArtists() returned %d artists, want 1", len(all))
	}
}

func TestStore_LoadAllArtistsOrdered(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.SaveArtist(ctx, &ingest.Artist{ID: "b"})
	s.SaveArtist(ctx, &ingest.Artist{ID: "a"})
	s.SaveArtist(ctx, &ingest.Artist{ID: "c"})

	all, _ := s.LoadAllArtists(ctx)
	if len(all) != 3 {
		t.Fatalf("Got %d artists, want 3", len(all))
	}
	for i, want := range []string{"a", "b", "c"} {
		if all[i].ID != want {
			t.Errorf("all[%d].ID = %q, want %q", i, all[i].ID, want)
		}
	}
}

func TestStore_AlbumsFilteredByArtist(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.SaveAlbums(ctx, []ingest.Album{
		{ID: "a1", ArtistID: "1"},
		{ID: "a2", ArtistID: "2"},
		{ID: "a3", ArtistID: "1"},
	})

	albums, _ := s.LoadArtistAlbums(ctx, "1")
	if len(albums) != 2 {
		t.Errorf("Got %d albums for artist 1, want 2", len(albums))
	}
	for _, album := range albums {
		if album.ArtistID != "1" {
			t.Errorf("Album %s belongs to artist %s", album.ID, album.ArtistID)
		}
	}
}

func TestStore_SongsAndTotals(t *testing.T) {
	s := New()
	ctx := context.Background()

	totals := ingest.SongTotals{Hearts: 400, Listeners: 60, Streams: 600}
	s.SaveSongs(ctx, []ingest.Song{
		{ID: "s1", ArtistID: "1", Likes: 300},
		{ID: "s2", ArtistID: "1", Likes: 100},
	}, totals)

	songs, _ := s.LoadArtistSongs(ctx, "1")
	if len(songs) != 2 {
		t.Errorf("Got %d songs, want 2", len(songs))
	}

	got, ok := s.SongTotals("1")
	if !ok {
		t.Fatal("SongTotals() not found")
	}
	if got != totals {
		t.Errorf("SongTotals() = %+v, want %+v", got, totals)
	}
}

func TestStore_CommentsByAlbumAndArtist(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.SaveComments(ctx, []ingest.Comment{
		{ID: "c1", ArtistID: "1", AlbumID: "a1"},
		{ID: "c2", ArtistID: "1", AlbumID: "a2"},
		{ID: "c3", ArtistID: "2", AlbumID: "a9"},
	})

	byAlbum, _ := s.LoadAlbumComments(ctx, "a1")
	if len(byAlbum) != 1 {
		t.Errorf("Got %d comments for album a1, want 1", len(byAlbum))
	}

	byArtist, _ := s.LoadArtistComments(ctx, "1")
	if len(byArtist) != 2 {
		t.Errorf("Got %d comments for artist 1, want 2", len(byArtist))
	}
}

func TestStore_LoadLatestCommentsOrder(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.SaveComments(ctx, []ingest.Comment{
		{ID: "c1", ArtistID: "1", DisplayDate: "2024.01.01", DisplayTime: "09:00"},
		{ID: "c2", ArtistID: "1", DisplayDate: "2024.03.01", DisplayTime: "09:00"},
		{ID: "c3", ArtistID: "1", DisplayDate: "2024.03.01", DisplayTime: "18:30"},
	})

	latest, _ := s.LoadLatestComments(ctx, "1")
	if len(latest) != 3 {
		t.Fatalf("Got %d comments, want 3", len(latest))
	}
	for i, want := range []string{"c3", "c2", "c1"} {
		if latest[i].ID != want {
			t.Errorf("latest[%d].ID = %q, want %q", i, latest[i].ID, want)
		}
	}
}
