package models

import "time"

// Attempt is one append-only guess-log entry. Entries are never mutated
// or deleted; they only feed scoring derivation.
type Attempt struct {
	ID           int64        `json:"id"`
	UserID       int64        `json:"user_id"`
	TrackID      string       `json:"track_id"`
	QuestionType QuestionType `json:"question_type"`
	Correct      bool         `json:"correct"`
	TimeTaken    float64      `json:"time_taken_seconds"`
	Approach     Approach     `json:"approach"`
	HintShown    bool         `json:"hint_shown"`
	AnsweredAt   time.Time    `json:"answered_at"`
}
