package quiz

import (
	"errors"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/trackquiz/backend/internal/models"
)

// ErrNoTracks is returned by any selection call over an empty catalog.
// Callers decide the fallback (e.g. seed tracks); the selector never
// fabricates a placeholder.
var ErrNoTracks = errors.New("no tracks available")

type SelectorConfig struct {
	// TopAxes is how many top-scoring artists/decades/genres form the
	// candidate pool.
	TopAxes int
	// MissBaseProb..MissMaxProb is the range of the probability of
	// drawing directly from the miss set; it scales toward the max the
	// weaker the player's rolling accuracy.
	MissBaseProb float64
	MissMaxProb  float64
	// QuickMissSeconds bounds a "quick miss": answered faster than this
	// it counts as a weaker signal (possible guessing).
	QuickMissSeconds float64
	QuickMissWeight  float64
	// YearFloorShare is the minimum probability share guaranteed to
	// year questions regardless of miss streaks on other types.
	YearFloorShare float64
}

func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		TopAxes:          3,
		MissBaseProb:     0.5,
		MissMaxProb:      0.8,
		QuickMissSeconds: 5,
		QuickMissWeight:  0.5,
		YearFloorShare:   0.20,
	}
}

// Selector draws the next track and question type. The random source is
// injected so tests can make selection deterministic.
type Selector struct {
	cfg    SelectorConfig
	scorer *Scorer
	rng    *rand.Rand
}

func NewSelector(cfg SelectorConfig, scorer *Scorer, rng *rand.Rand) *Selector {
	return &Selector{cfg: cfg, scorer: scorer, rng: rng}
}

// PickTrack selects the next track for a personalized question.
//
// Missed tracks take priority: with probability p (MissBaseProb..MissMaxProb,
// higher the weaker the player's accuracy) the draw comes straight from the
// intersection of the miss set and the catalog. Otherwise the scored
// candidate subset — tracks matching any top artist/decade/genre — is
// sampled by cumulative weight. With no personalization signal at all the
// draw is uniform over the full catalog.
func (s *Selector) PickTrack(catalog []models.Track, axes AxisScores, missed MissSet, accuracy float64) (models.Track, error) {
	if len(catalog) == 0 {
		return models.Track{}, ErrNoTracks
	}

	if len(missed) > 0 {
		p := s.cfg.MissBaseProb + (s.cfg.MissMaxProb-s.cfg.MissBaseProb)*(1-clamp01(accuracy))
		if s.rng.Float64() < p {
			if candidates := missed.Intersect(catalog); len(candidates) > 0 {
				return candidates[s.rng.Intn(len(candidates))], nil
			}
		}
	}

	if axes.Empty() {
		return catalog[s.rng.Intn(len(catalog))], nil
	}

	candidates := s.candidateSubset(catalog, axes)
	if len(candidates) == 0 {
		return catalog[s.rng.Intn(len(catalog))], nil
	}

	return s.weightedPick(candidates, axes), nil
}

// candidateSubset keeps the catalog tracks matching at least one of the
// top-N artists, decades or genres by score.
func (s *Selector) candidateSubset(catalog []models.Track, axes AxisScores) []models.Track {
	topArtists := topStringKeys(axes.Artist, s.cfg.TopAxes)
	topDecades := topIntKeys(axes.Decade, s.cfg.TopAxes)
	topGenres := topStringKeys(axes.Genre, s.cfg.TopAxes)

	var out []models.Track
	for _, t := range catalog {
		if topArtists[t.Artist] || topDecades[t.Decade()] {
			out = append(out, t)
			continue
		}
		for _, g := range t.Genres {
			if topGenres[g] {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// weightedPick samples one track by the cumulative-weight method: draw
// r uniform in [0, totalWeight) and walk the running sum.
func (s *Selector) weightedPick(tracks []models.Track, axes AxisScores) models.Track {
	total := 0.0
	weights := make([]float64, len(tracks))
	for i, t := range tracks {
		weights[i] = s.scorer.TrackWeight(axes, t)
		total += weights[i]
	}

	r := s.rng.Float64() * total
	cum := 0.0
	for i, w := range weights {
		cum += w
		if r < cum {
			return tracks[i]
		}
	}
	return tracks[len(tracks)-1] // float rounding on the last step
}

// topStringKeys returns the top-n keys by score as a membership set.
// Ties break deterministically by key.
func topStringKeys(scores map[string]float64, n int) map[string]bool {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if scores[keys[i]] != scores[keys[j]] {
			return scores[keys[i]] > scores[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if n < len(keys) {
		keys = keys[:n]
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

func topIntKeys(scores map[int]float64, n int) map[int]bool {
	keys := make([]int, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if scores[keys[i]] != scores[keys[j]] {
			return scores[keys[i]] > scores[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if n < len(keys) {
		keys = keys[:n]
	}
	set := make(map[int]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// ── Question-Type Selection ─────────────────────────────

// TypeMissCount tracks session-scoped misses for one question type.
// Quick misses (answered under QuickMissSeconds) are tallied separately
// because they indicate guessing more than a knowledge gap.
type TypeMissCount struct {
	Misses int
	Quick  int
}

// TypeWeights computes the draw weight per question type:
// 1 + misses + QuickMissWeight×quickMisses, then enforces the fairness
// floor: if year's share would fall under YearFloorShare, its weight is
// raised so its share equals the floor exactly.
func (s *Selector) TypeWeights(counts map[models.QuestionType]TypeMissCount) map[models.QuestionType]float64 {
	weights := make(map[models.QuestionType]float64, len(models.AllQuestionTypes))
	total := 0.0
	for _, qt := range models.AllQuestionTypes {
		c := counts[qt]
		w := 1 + float64(c.Misses) + s.cfg.QuickMissWeight*float64(c.Quick)
		weights[qt] = w
		total += w
	}

	floor := s.cfg.YearFloorShare
	if weights[models.QuestionYear]/total < floor {
		rest := total - weights[models.QuestionYear]
		weights[models.QuestionYear] = floor * rest / (1 - floor)
	}
	return weights
}

// PickQuestionType draws one of the three types by weight.
func (s *Selector) PickQuestionType(counts map[models.QuestionType]TypeMissCount) models.QuestionType {
	weights := s.TypeWeights(counts)
	total := 0.0
	for _, qt := range models.AllQuestionTypes {
		total += weights[qt]
	}

	r := s.rng.Float64() * total
	cum := 0.0
	for _, qt := range models.AllQuestionTypes {
		cum += weights[qt]
		if r < cum {
			return qt
		}
	}
	return models.AllQuestionTypes[len(models.AllQuestionTypes)-1]
}

// ── Guess Evaluation ────────────────────────────────────

// YearMargin is the acceptable year error for a player at the given
// guess rating: looser for weaker players, exact above 1400.
func YearMargin(rating int) int {
	if rating < 1100 {
		return 3
	}
	if rating < 1400 {
		return 2
	}
	return 0
}

// EvaluateGuess checks a submitted answer against the track. Artist and
// title match case-insensitively; year guesses are accepted within the
// rating-derived margin.
func EvaluateGuess(track models.Track, questionType models.QuestionType, guess string, rating int) bool {
	guess = strings.ToLower(strings.TrimSpace(guess))
	switch questionType {
	case models.QuestionArtist:
		return guess == strings.ToLower(track.Artist)
	case models.QuestionTitle:
		return guess == strings.ToLower(track.Title)
	case models.QuestionYear:
		year, err := strconv.Atoi(guess)
		if err != nil {
			return false
		}
		margin := YearMargin(rating)
		diff := year - track.Year
		if diff < 0 {
			diff = -diff
		}
		return diff <= margin
	}
	return false
}
