package quiz

import (
	"sync"
	"time"

	"github.com/trackquiz/backend/internal/catalog"
	"github.com/trackquiz/backend/internal/models"
)

// PendingQuestion is the question currently on screen for a player.
type PendingQuestion struct {
	TrackID      string
	QuestionType models.QuestionType
	Approach     models.Approach
	StartedAt    time.Time
	HintShown    bool
}

// PendingRanking is the in-flight ranking task: the offered track ids,
// the sort dimension and the approach whose rating it will update. It
// lives only for one rank-and-score cycle.
type PendingRanking struct {
	TrackIDs []string
	Mode     models.RankingMode
	Approach models.Approach
}

// Session holds one player's ephemeral state: the session catalog, the
// per-type miss counters, the question or ranking task in flight, and
// the chosen settings. None of it outlives the session; the durable
// record (ratings, miss set, preferences) lives on the player profile.
type Session struct {
	Catalog     *catalog.Catalog
	PlaylistID  string
	TypeMisses  map[models.QuestionType]TypeMissCount
	Question    *PendingQuestion
	Ranking     *PendingRanking
	RankingMode models.RankingMode
	Difficulty  models.DifficultySetting
}

func newSession() *Session {
	return &Session{
		Catalog:     catalog.New(),
		TypeMisses:  make(map[models.QuestionType]TypeMissCount),
		RankingMode: models.RankPopularity,
		Difficulty:  models.DifficultyNormal,
	}
}

// RecordTypeMiss bumps the session miss counter for a question type.
// Misses answered in under quickSeconds count as quick misses too.
func (s *Session) RecordTypeMiss(questionType models.QuestionType, elapsed float64, quickSeconds float64) {
	c := s.TypeMisses[questionType]
	c.Misses++
	if elapsed > 0 && elapsed < quickSeconds {
		c.Quick++
	}
	s.TypeMisses[questionType] = c
}

// Sessions manages per-player session state. All access goes through
// With, which serializes updates for one player: the rating
// read-modify-write path is not atomic on its own, so concurrent
// requests from the same player (e.g. a double submit) must not
// interleave.
type Sessions struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[int64]*Session)}
}

// With runs fn with the player's session, creating it on first use.
// The manager lock is held for the duration of fn.
func (m *Sessions) With(userID int64, fn func(*Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = newSession()
		m.sessions[userID] = s
	}
	return fn(s)
}

// Reset discards a player's session state entirely.
func (m *Sessions) Reset(userID int64) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}
