package quiz

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/trackquiz/backend/internal/models"
)

// ErrNotEnoughTracks signals a ranking task asked to form (or score)
// with fewer than 2 tracks. Evaluating a degenerate subset would yield
// a meaningless correctness value, so it is rejected outright.
var ErrNotEnoughTracks = errors.New("need at least 2 tracks for a ranking task")

// RankingConfig holds the outcome blend weights. Correctness alone
// rewards lucky guesses on ambiguous subsets; folding in the player's
// self-assessed difficulty dampens rating volatility.
type RankingConfig struct {
	CorrectnessWeight float64
	DifficultyWeight  float64
}

func DefaultRankingConfig() RankingConfig {
	return RankingConfig{CorrectnessWeight: 0.7, DifficultyWeight: 0.3}
}

// RankingResult is the scored outcome of one submitted ordering.
type RankingResult struct {
	FinalOrder   []string
	CorrectOrder []string
	Correctness  float64
	Difficulty   int
	Outcome      float64
}

// GroundTruth sorts the offered subset by the ranking dimension:
// timeline is ascending year, popularity is descending popularity
// (rank 1 = most popular). The sort is stable so ties keep catalog order.
func GroundTruth(offered []models.Track, mode models.RankingMode) []models.Track {
	ordered := make([]models.Track, len(offered))
	copy(ordered, offered)
	if mode == models.RankTimeline {
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Year < ordered[j].Year
		})
	} else {
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Popularity > ordered[j].Popularity
		})
	}
	return ordered
}

// PairwiseCorrectness is the fraction of unordered pairs in the
// submission whose relative order matches the ground truth — one minus
// the normalized Kendall-tau distance. A single transposed adjacent pair
// costs far less than a fully inverted list. With fewer than 2 items it
// is vacuously 1.0; validating the subset size is the caller's job.
func PairwiseCorrectness(submitted, truth []string) float64 {
	position := make(map[string]int, len(truth))
	for i, id := range truth {
		position[id] = i
	}

	correct := 0
	total := 0
	for i := 0; i < len(submitted); i++ {
		for j := i + 1; j < len(submitted); j++ {
			total++
			if position[submitted[i]] < position[submitted[j]] {
				correct++
			}
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(correct) / float64(total)
}

// BlendOutcome combines objective correctness with the player's
// subjective difficulty rating in [1,5]. An out-of-range difficulty is
// clamped at the boundary, never propagated.
func (c RankingConfig) BlendOutcome(correctness float64, difficulty int) (float64, int) {
	if difficulty < 1 {
		difficulty = 1
	}
	if difficulty > 5 {
		difficulty = 5
	}
	ratingFraction := float64(difficulty-1) / 4
	return c.CorrectnessWeight*correctness + c.DifficultyWeight*ratingFraction, difficulty
}

// Evaluate scores a submitted ordering against the offered subset.
// Submitted ids not in the subset are discarded; an empty submission
// falls back to the offered order (scored as-is).
func (c RankingConfig) Evaluate(offered []models.Track, submitted []string, mode models.RankingMode, difficulty int) (*RankingResult, error) {
	if len(offered) < 2 {
		return nil, ErrNotEnoughTracks
	}

	offeredIDs := make(map[string]bool, len(offered))
	for _, t := range offered {
		offeredIDs[t.ID] = true
	}
	var finalOrder []string
	for _, id := range submitted {
		if offeredIDs[id] {
			finalOrder = append(finalOrder, id)
		}
	}
	if len(finalOrder) == 0 {
		for _, t := range offered {
			finalOrder = append(finalOrder, t.ID)
		}
	}

	truth := GroundTruth(offered, mode)
	correctOrder := make([]string, len(truth))
	for i, t := range truth {
		correctOrder[i] = t.ID
	}

	correctness := PairwiseCorrectness(finalOrder, correctOrder)
	outcome, difficulty := c.BlendOutcome(correctness, difficulty)

	return &RankingResult{
		FinalOrder:   finalOrder,
		CorrectOrder: correctOrder,
		Correctness:  correctness,
		Difficulty:   difficulty,
		Outcome:      outcome,
	}, nil
}

// ── Task Construction ───────────────────────────────────

// BaseCount scales the ranking subset size with the player's rank
// rating: 3 below 1100, 5 above 1400, else 4.
func BaseCount(rankRating int) int {
	if rankRating < 1100 {
		return 3
	}
	if rankRating > 1400 {
		return 5
	}
	return 4
}

// TaskBuilder assembles ranking subsets biased by the session difficulty
// setting. The random source is injected for deterministic tests.
type TaskBuilder struct {
	rng *rand.Rand
}

func NewTaskBuilder(rng *rand.Rand) *TaskBuilder {
	return &TaskBuilder{rng: rng}
}

// BuildRandom picks a plain uniform subset of up to 4 tracks.
func (b *TaskBuilder) BuildRandom(catalog []models.Track) ([]models.Track, error) {
	if len(catalog) < 2 {
		return nil, ErrNotEnoughTracks
	}
	n := 4
	if n > len(catalog) {
		n = len(catalog)
	}
	return b.sample(catalog, n), nil
}

// BuildPersonalized assembles a subset for a personalized ranking task:
// up to half from the player's missed tracks (coin flip), the remainder
// by the difficulty strategy — hard clusters tracks near a random
// anchor, easy spreads them evenly across the sorted dimension, normal
// samples uniformly.
func (b *TaskBuilder) BuildPersonalized(catalog []models.Track, missed MissSet, rankRating int, difficulty models.DifficultySetting, mode models.RankingMode) ([]models.Track, error) {
	if len(catalog) < 2 {
		return nil, ErrNotEnoughTracks
	}

	n := BaseCount(rankRating)
	if n > len(catalog) {
		n = len(catalog)
	}

	var chosen []models.Track
	missedCandidates := missed.Intersect(catalog)
	if len(missedCandidates) > 0 && b.rng.Float64() < 0.5 {
		half := n / 2
		if half < 1 {
			half = 1
		}
		b.rng.Shuffle(len(missedCandidates), func(i, j int) {
			missedCandidates[i], missedCandidates[j] = missedCandidates[j], missedCandidates[i]
		})
		if half > len(missedCandidates) {
			half = len(missedCandidates)
		}
		chosen = append(chosen, missedCandidates[:half]...)
	}

	needed := n - len(chosen)
	if needed > 0 {
		leftover := excludeTracks(catalog, chosen)
		switch difficulty {
		case models.DifficultyHard:
			chosen = append(chosen, b.pickClose(leftover, needed, mode)...)
		case models.DifficultyEasy:
			chosen = append(chosen, b.pickSpread(leftover, needed, mode)...)
		default:
			chosen = append(chosen, b.sample(leftover, needed)...)
		}
	}

	if len(chosen) < 2 {
		return nil, ErrNotEnoughTracks
	}
	return chosen, nil
}

// BuildFromMissSet builds a task over exactly the player's missed
// tracks ("rank mistakes only").
func (b *TaskBuilder) BuildFromMissSet(catalog []models.Track, missed MissSet) ([]models.Track, error) {
	candidates := missed.Intersect(catalog)
	if len(candidates) < 2 {
		return nil, ErrNotEnoughTracks
	}
	return candidates, nil
}

// pickClose anchors on one random track and keeps the n nearest in the
// sort dimension — a tight cluster is harder to order.
func (b *TaskBuilder) pickClose(tracks []models.Track, n int, mode models.RankingMode) []models.Track {
	if len(tracks) <= n {
		return append([]models.Track(nil), tracks...)
	}

	anchor := tracks[b.rng.Intn(len(tracks))]
	sorted := make([]models.Track, len(tracks))
	copy(sorted, tracks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return dimDistance(sorted[i], anchor, mode) < dimDistance(sorted[j], anchor, mode)
	})
	return sorted[:n]
}

// pickSpread sorts by the dimension and takes evenly strided items —
// maximal spread is easier to order. Any shortfall is filled randomly
// from the leftovers.
func (b *TaskBuilder) pickSpread(tracks []models.Track, n int, mode models.RankingMode) []models.Track {
	if len(tracks) <= n {
		return append([]models.Track(nil), tracks...)
	}

	sorted := make([]models.Track, len(tracks))
	copy(sorted, tracks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return dimValue(sorted[i], mode) < dimValue(sorted[j], mode)
	})

	step := len(sorted) / (n + 1)
	if step < 1 {
		step = 1
	}
	var chosen []models.Track
	for idx := step; idx < len(sorted) && len(chosen) < n; idx += step {
		chosen = append(chosen, sorted[idx])
	}
	if len(chosen) < n {
		leftover := excludeTracks(sorted, chosen)
		chosen = append(chosen, b.sample(leftover, n-len(chosen))...)
	}
	return chosen
}

// sample draws n tracks uniformly without replacement.
func (b *TaskBuilder) sample(tracks []models.Track, n int) []models.Track {
	if len(tracks) <= n {
		return append([]models.Track(nil), tracks...)
	}
	shuffled := make([]models.Track, len(tracks))
	copy(shuffled, tracks)
	b.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

func dimValue(t models.Track, mode models.RankingMode) int {
	if mode == models.RankTimeline {
		return t.Year
	}
	return t.Popularity
}

func dimDistance(t, anchor models.Track, mode models.RankingMode) int {
	d := dimValue(t, mode) - dimValue(anchor, mode)
	if d < 0 {
		return -d
	}
	return d
}

func excludeTracks(tracks, exclude []models.Track) []models.Track {
	seen := make(map[string]bool, len(exclude))
	for _, t := range exclude {
		seen[t.ID] = true
	}
	var out []models.Track
	for _, t := range tracks {
		if !seen[t.ID] {
			out = append(out, t)
		}
	}
	return out
}
