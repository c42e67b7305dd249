package models

import "time"

type Approach string

const (
	ApproachRandom       Approach = "random"
	ApproachPersonalized Approach = "personalized"
)

type Mode string

const (
	ModeGuess Mode = "guess"
	ModeRank  Mode = "rank"
)

type QuestionType string

const (
	QuestionArtist QuestionType = "artist"
	QuestionTitle  QuestionType = "title"
	QuestionYear   QuestionType = "year"
)

// AllQuestionTypes is the fixed draw order for question-type selection.
var AllQuestionTypes = []QuestionType{QuestionArtist, QuestionTitle, QuestionYear}

type RankingMode string

const (
	RankTimeline   RankingMode = "timeline"
	RankPopularity RankingMode = "popularity"
)

type DifficultySetting string

const (
	DifficultyEasy   DifficultySetting = "easy"
	DifficultyNormal DifficultySetting = "normal"
	DifficultyHard   DifficultySetting = "hard"
)

// PlayerProfile is the durable per-player quiz record: four independent
// ratings, cumulative counters, the current miss set and preferences.
type PlayerProfile struct {
	UserID              int64     `json:"user_id"`
	RandomGuessRating   int       `json:"random_guess_rating"`
	PersonalGuessRating int       `json:"personalized_guess_rating"`
	RandomRankRating    int       `json:"random_rank_rating"`
	PersonalRankRating  int       `json:"personalized_rank_rating"`
	TotalAttempts       int       `json:"total_attempts"`
	TotalCorrect        int       `json:"total_correct"`
	MissedTracks        []string  `json:"missed_tracks"`
	FavoriteGenres      []string  `json:"favorite_genres,omitempty"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Accuracy is the player's lifetime fraction of correct answers.
func (p *PlayerProfile) Accuracy() float64 {
	if p.TotalAttempts == 0 {
		return 0
	}
	return float64(p.TotalCorrect) / float64(p.TotalAttempts)
}

// Level buckets lifetime accuracy into coarse skill bands.
func (p *PlayerProfile) Level() string {
	acc := p.Accuracy()
	switch {
	case acc < 0.3:
		return "beginner"
	case acc < 0.8:
		return "intermediate"
	default:
		return "advanced"
	}
}

// PrefersGenre reports whether the genre is one of the player's favorites.
func (p *PlayerProfile) PrefersGenre(genre string) bool {
	for _, g := range p.FavoriteGenres {
		if g == genre {
			return true
		}
	}
	return false
}
