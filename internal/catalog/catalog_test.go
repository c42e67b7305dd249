package catalog

import (
	"testing"

	"github.com/trackquiz/backend/internal/models"
)

func TestCatalogReplaceAndGet(t *testing.T) {
	c := New()
	if c.Len() != 0 {
		t.Fatalf("new catalog len = %d, want 0", c.Len())
	}

	c.Replace([]models.Track{
		{ID: "t1", Title: "One"},
		{ID: "t2", Title: "Two"},
	})
	if c.Len() != 2 {
		t.Errorf("len = %d, want 2", c.Len())
	}

	track, ok := c.Get("t2")
	if !ok || track.Title != "Two" {
		t.Errorf("Get(t2) = %+v, %v", track, ok)
	}
	if _, ok := c.Get("t9"); ok {
		t.Error("Get(t9) found a track that was never added")
	}

	// Replace is wholesale, not additive.
	c.Replace([]models.Track{{ID: "t3"}})
	if c.Len() != 1 {
		t.Errorf("len after replace = %d, want 1", c.Len())
	}
	if _, ok := c.Get("t1"); ok {
		t.Error("old track survived a wholesale replace")
	}
}

func TestCatalogTracksIsASnapshot(t *testing.T) {
	c := New()
	c.Replace([]models.Track{{ID: "t1", Title: "One"}})

	snapshot := c.Tracks()
	snapshot[0].Title = "mutated"

	track, _ := c.Get("t1")
	if track.Title != "One" {
		t.Errorf("mutating the snapshot changed the catalog: %q", track.Title)
	}
}

func TestCatalogClear(t *testing.T) {
	c := New()
	c.Replace([]models.Track{{ID: "t1"}, {ID: "t2"}})
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("len after clear = %d, want 0", c.Len())
	}
}

func TestParsePlaylistInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare id", "37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
		{"open.spotify.com link", "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
		{"link with query", "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc", "37i9dQZF1DXcBWIGoYBM5M"},
		{"spotify uri", "spotify:playlist:37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
	}

	for _, tt := range tests {
		if got := ParsePlaylistInput(tt.input); got != tt.want {
			t.Errorf("%s: ParsePlaylistInput(%q) = %q, want %q", tt.name, tt.input, got, tt.want)
		}
	}
}

func TestSeedTracks(t *testing.T) {
	seeds := SeedTracks()
	if len(seeds) < 2 {
		t.Fatalf("seed count = %d, want at least 2", len(seeds))
	}
	for _, track := range seeds {
		if track.ID == "" || track.Artist == "" || track.Title == "" || track.Year == 0 {
			t.Errorf("incomplete seed track: %+v", track)
		}
	}
}
