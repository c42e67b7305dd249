package quiz

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/trackquiz/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Player Profiles ─────────────────────────────────────

// GetProfile loads the durable quiz record for a player. Every user row
// carries the quiz columns with defaults, so a missing row means the
// user does not exist at all.
func (s *Store) GetProfile(userID int64) (*models.PlayerProfile, error) {
	var p models.PlayerProfile
	var missed, genres pq.StringArray
	err := s.db.QueryRow(
		`SELECT id, random_guess_rating, personalized_guess_rating,
		        random_rank_rating, personalized_rank_rating,
		        total_attempts, total_correct, missed_tracks, favorite_genres, updated_at
		 FROM users WHERE id = $1`,
		userID,
	).Scan(&p.UserID, &p.RandomGuessRating, &p.PersonalGuessRating,
		&p.RandomRankRating, &p.PersonalRankRating,
		&p.TotalAttempts, &p.TotalCorrect, &missed, &genres, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.MissedTracks = missed
	p.FavoriteGenres = genres
	return &p, nil
}

// SaveProfile commits the player record after a state change. Ratings,
// counters and the miss set are written together so a guess submission
// persists atomically.
func (s *Store) SaveProfile(p *models.PlayerProfile) error {
	_, err := s.db.Exec(
		`UPDATE users
		 SET random_guess_rating = $1, personalized_guess_rating = $2,
		     random_rank_rating = $3, personalized_rank_rating = $4,
		     total_attempts = $5, total_correct = $6,
		     missed_tracks = $7, favorite_genres = $8, updated_at = NOW()
		 WHERE id = $9`,
		p.RandomGuessRating, p.PersonalGuessRating,
		p.RandomRankRating, p.PersonalRankRating,
		p.TotalAttempts, p.TotalCorrect,
		pq.StringArray(p.MissedTracks), pq.StringArray(p.FavoriteGenres),
		p.UserID,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// ── Attempt Log ─────────────────────────────────────────

// RecordAttempt appends one entry to the guess log. Entries are never
// updated or deleted.
func (s *Store) RecordAttempt(a models.Attempt) error {
	_, err := s.db.Exec(
		`INSERT INTO attempts (user_id, track_id, question_type, correct, time_taken, approach, hint_shown)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.UserID, a.TrackID, a.QuestionType, a.Correct, a.TimeTaken, a.Approach, a.HintShown,
	)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// ListIncorrectAttempts returns a player's misses, most recent first,
// capped at limit. This is the scorer's input.
func (s *Store) ListIncorrectAttempts(userID int64, limit int) ([]models.Attempt, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, track_id, question_type, correct, time_taken, approach, hint_shown, answered_at
		 FROM attempts
		 WHERE user_id = $1 AND correct = FALSE
		 ORDER BY answered_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list incorrect attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		var a models.Attempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.TrackID, &a.QuestionType,
			&a.Correct, &a.TimeTaken, &a.Approach, &a.HintShown, &a.AnsweredAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// CountTrackMisses counts the incorrect log entries for one track —
// the spaced-repetition signal and the "seen this before" hint input.
func (s *Store) CountTrackMisses(userID int64, trackID string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM attempts WHERE user_id = $1 AND track_id = $2 AND correct = FALSE`,
		userID, trackID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count track misses: %w", err)
	}
	return count, nil
}

// ── Scoreboard ──────────────────────────────────────────

// Scoreboard lists players by accuracy, then total correct, descending.
func (s *Store) Scoreboard(limit int) ([]models.ScoreboardEntry, error) {
	rows, err := s.db.Query(
		`SELECT username, name, total_attempts, total_correct
		 FROM users
		 ORDER BY CASE WHEN total_attempts = 0 THEN 0
		               ELSE total_correct::float / total_attempts END DESC,
		          total_correct DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("scoreboard: %w", err)
	}
	defer rows.Close()

	var entries []models.ScoreboardEntry
	for rows.Next() {
		var username, name string
		var attempts, correct int
		if err := rows.Scan(&username, &name, &attempts, &correct); err != nil {
			return nil, fmt.Errorf("scan scoreboard row: %w", err)
		}
		entry := models.ScoreboardEntry{
			Username:     username,
			DisplayName:  models.User{Name: name}.DisplayName(),
			TotalCorrect: correct,
		}
		if attempts > 0 {
			entry.Accuracy = float64(correct) / float64(attempts)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
