package catalog

import (
	"sync"

	"github.com/trackquiz/backend/internal/models"
)

// Catalog is the working track list for one player's session. It is
// replaced wholesale on playlist switch, never diffed incrementally.
// Readers always see either the full old list or the full new one; a
// clear followed by a read yields empty, never a partial list.
type Catalog struct {
	mu     sync.RWMutex
	tracks []models.Track
}

func New() *Catalog {
	return &Catalog{}
}

// Tracks returns a snapshot copy of the current catalog.
func (c *Catalog) Tracks() []models.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Track, len(c.tracks))
	copy(out, c.tracks)
	return out
}

// Len returns the current track count.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tracks)
}

// Replace swaps in a new track list atomically.
func (c *Catalog) Replace(tracks []models.Track) {
	copied := make([]models.Track, len(tracks))
	copy(copied, tracks)
	c.mu.Lock()
	c.tracks = copied
	c.mu.Unlock()
}

// Clear empties the catalog.
func (c *Catalog) Clear() {
	c.mu.Lock()
	c.tracks = nil
	c.mu.Unlock()
}

// Get looks a track up by id.
func (c *Catalog) Get(trackID string) (models.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.tracks {
		if t.ID == trackID {
			return t, true
		}
	}
	return models.Track{}, false
}
