package quiz

import (
	"math"
	"time"

	"github.com/trackquiz/backend/internal/models"
)

// ScorerConfig holds the personalization weights. The constants were
// chosen empirically, so they are configuration rather than literals.
type ScorerConfig struct {
	// HalfLifeDays controls recency decay: a miss loses half its weight
	// every HalfLifeDays days. Old misses fade but never reach zero.
	HalfLifeDays float64
	// RepetitionStep adds this fraction of extra weight per prior miss
	// on the same track. Linear growth, no runaway.
	RepetitionStep float64
	// PreferenceBoost multiplies genre contributions for genres the
	// player marked as favorites.
	PreferenceBoost float64
	// MinTrackWeight is the floor applied to every candidate track so
	// no track's selection probability collapses to zero.
	MinTrackWeight float64
}

func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		HalfLifeDays:    7,
		RepetitionStep:  0.1,
		PreferenceBoost: 2.0,
		MinTrackWeight:  0.1,
	}
}

// AxisScores are accumulated miss weights along the three selection
// axes. Empty maps mean the player has no incorrect history and callers
// must fall back to uniform selection.
type AxisScores struct {
	Artist map[string]float64
	Decade map[int]float64
	Genre  map[string]float64
}

func (a AxisScores) Empty() bool {
	return len(a.Artist) == 0 && len(a.Decade) == 0 && len(a.Genre) == 0
}

// Scorer converts a player's incorrect-attempt history into selection
// weights over artists, decade buckets and genre tags.
type Scorer struct {
	cfg ScorerConfig
}

func NewScorer(cfg ScorerConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score walks the incorrect entries of the attempt log and accumulates
// per-axis weights. Each miss contributes
//
//	0.5^(daysSince/halfLife) × (1 + step×(priorMissesOnTrack−1))
//
// and genre contributions matching a player preference are additionally
// multiplied by PreferenceBoost.
func (s *Scorer) Score(attempts []models.Attempt, catalog []models.Track, profile *models.PlayerProfile, now time.Time) AxisScores {
	axes := AxisScores{
		Artist: make(map[string]float64),
		Decade: make(map[int]float64),
		Genre:  make(map[string]float64),
	}

	byID := make(map[string]models.Track, len(catalog))
	for _, t := range catalog {
		byID[t.ID] = t
	}
	missCounts := MissCounts(attempts)

	for _, a := range attempts {
		if a.Correct {
			continue
		}
		track, ok := byID[a.TrackID]
		if !ok {
			// Miss on a track from a previous catalog; no axis to credit.
			continue
		}

		days := now.Sub(a.AnsweredAt).Hours() / 24
		if days < 0 {
			days = 0
		}
		weight := math.Pow(0.5, days/s.cfg.HalfLifeDays)

		if n := missCounts[a.TrackID]; n > 1 {
			weight *= 1 + s.cfg.RepetitionStep*float64(n-1)
		}

		axes.Artist[track.Artist] += weight
		axes.Decade[track.Decade()] += weight
		for _, g := range track.Genres {
			gw := weight
			if profile != nil && profile.PrefersGenre(g) {
				gw *= s.cfg.PreferenceBoost
			}
			axes.Genre[g] += gw
		}
	}

	// Drop empty maps so Empty() reflects "no personalization signal".
	if len(axes.Artist) == 0 {
		axes.Artist = nil
	}
	if len(axes.Decade) == 0 {
		axes.Decade = nil
	}
	if len(axes.Genre) == 0 {
		axes.Genre = nil
	}
	return axes
}

// TrackWeight is the selection weight of a candidate track: its artist
// score plus its decade score plus the sum of its genre scores, floored
// at MinTrackWeight.
func (s *Scorer) TrackWeight(axes AxisScores, t models.Track) float64 {
	w := axes.Artist[t.Artist] + axes.Decade[t.Decade()]
	for _, g := range t.Genres {
		w += axes.Genre[g]
	}
	if w < s.cfg.MinTrackWeight {
		return s.cfg.MinTrackWeight
	}
	return w
}
