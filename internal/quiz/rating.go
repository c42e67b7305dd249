package quiz

import (
	"math"

	"github.com/trackquiz/backend/internal/models"
)

// RatingKind names one of the four independent skill ratings
// (approach × mode). Each is stored and updated on its own.
type RatingKind string

const (
	RatingRandomGuess       RatingKind = "random_guess"
	RatingPersonalizedGuess RatingKind = "personalized_guess"
	RatingRandomRank        RatingKind = "random_rank"
	RatingPersonalizedRank  RatingKind = "personalized_rank"
)

// KindFor maps an approach/mode pair to its rating kind.
func KindFor(approach models.Approach, mode models.Mode) RatingKind {
	if approach == models.ApproachPersonalized {
		if mode == models.ModeRank {
			return RatingPersonalizedRank
		}
		return RatingPersonalizedGuess
	}
	if mode == models.ModeRank {
		return RatingRandomRank
	}
	return RatingRandomGuess
}

// RatingConfig holds the update-rule parameters. The defaults are the
// finalized constants; K is exposed for tuning rather than hard-coded.
type RatingConfig struct {
	K   float64
	Min int
	Max int
}

func DefaultRatingConfig() RatingConfig {
	return RatingConfig{K: 32, Min: 800, Max: 2400}
}

// Update applies the fixed-K linear rule: new = old + K*(outcome - 0.5),
// rounded to the nearest integer and clamped to [Min, Max]. An outcome
// outside [0,1] is clamped at the boundary rather than rejected, so the
// rating invariant holds no matter what the caller supplies.
func (c RatingConfig) Update(old int, outcome float64) int {
	outcome = clamp01(outcome)
	updated := int(math.Round(float64(old) + c.K*(outcome-0.5)))
	if updated < c.Min {
		return c.Min
	}
	if updated > c.Max {
		return c.Max
	}
	return updated
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// GuessRating returns the profile's rating for the given guess approach.
func GuessRating(p *models.PlayerProfile, approach models.Approach) int {
	if approach == models.ApproachPersonalized {
		return p.PersonalGuessRating
	}
	return p.RandomGuessRating
}

// RankRating returns the profile's rating for the given rank approach.
func RankRating(p *models.PlayerProfile, approach models.Approach) int {
	if approach == models.ApproachPersonalized {
		return p.PersonalRankRating
	}
	return p.RandomRankRating
}

// SetRating writes the rating for the given kind back onto the profile.
func SetRating(p *models.PlayerProfile, kind RatingKind, rating int) {
	switch kind {
	case RatingRandomGuess:
		p.RandomGuessRating = rating
	case RatingPersonalizedGuess:
		p.PersonalGuessRating = rating
	case RatingRandomRank:
		p.RandomRankRating = rating
	case RatingPersonalizedRank:
		p.PersonalRankRating = rating
	}
}

// SnippetSeconds maps a guess rating to the playback snippet tier:
// stronger players get shorter snippets.
func SnippetSeconds(rating int) int {
	if rating > 1400 {
		return 15
	}
	if rating < 1100 {
		return 45
	}
	return 30
}
