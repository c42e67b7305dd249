package quiz

import "github.com/trackquiz/backend/internal/models"

// MissSet is the set of tracks a player currently answers incorrectly.
// It is kept as an ordered slice so missed tracks can be re-presented,
// but membership is what matters: Add is idempotent and Remove is a
// no-op for absent ids. The historical record of misses lives in the
// append-only attempt log, not here — the set drives what to re-ask,
// the log drives how strongly to weight.
type MissSet []string

func (m MissSet) Contains(trackID string) bool {
	for _, id := range m {
		if id == trackID {
			return true
		}
	}
	return false
}

// Add returns the set with trackID included. A second miss on the same
// track leaves the set unchanged.
func (m MissSet) Add(trackID string) MissSet {
	if m.Contains(trackID) {
		return m
	}
	return append(m, trackID)
}

// Remove returns the set without trackID. Removing an absent id is a no-op.
func (m MissSet) Remove(trackID string) MissSet {
	for i, id := range m {
		if id == trackID {
			return append(m[:i], m[i+1:]...)
		}
	}
	return m
}

// Intersect returns the catalog tracks whose ids are in the set, in
// catalog order.
func (m MissSet) Intersect(catalog []models.Track) []models.Track {
	var out []models.Track
	for _, t := range catalog {
		if m.Contains(t.ID) {
			out = append(out, t)
		}
	}
	return out
}

// Prune drops ids that are no longer present in the catalog. Called
// after a wholesale catalog reset so the set never references tracks
// outside the current catalog.
func (m MissSet) Prune(catalog []models.Track) MissSet {
	present := make(map[string]bool, len(catalog))
	for _, t := range catalog {
		present[t.ID] = true
	}
	var out MissSet
	for _, id := range m {
		if present[id] {
			out = append(out, id)
		}
	}
	return out
}

// MissCounts tallies incorrect attempts per track from the attempt log.
// Feeds the spaced-repetition factor and the "seen this before" hint.
func MissCounts(attempts []models.Attempt) map[string]int {
	counts := make(map[string]int)
	for _, a := range attempts {
		if !a.Correct {
			counts[a.TrackID]++
		}
	}
	return counts
}
