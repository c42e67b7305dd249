package models

// Track is one entry in the session catalog. Immutable once fetched;
// the catalog is replaced wholesale when the player switches playlists.
type Track struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Artist     string   `json:"artist"`
	Year       int      `json:"year"`
	Popularity int      `json:"popularity"`
	Genres     []string `json:"genres,omitempty"`
	PreviewURL string   `json:"preview_url,omitempty"`
}

// Decade returns the decade bucket for the track's release year, e.g. 1994 → 1990.
func (t Track) Decade() int {
	return (t.Year / 10) * 10
}

// HasGenre reports whether the track carries the given genre tag.
func (t Track) HasGenre(genre string) bool {
	for _, g := range t.Genres {
		if g == genre {
			return true
		}
	}
	return false
}
