package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/trackquiz/backend/internal/catalog"
	"github.com/trackquiz/backend/internal/models"
)

var (
	ErrNoActiveQuestion = errors.New("no active question")
	ErrNoActiveRanking  = errors.New("no active ranking task")
	ErrTrackGone        = errors.New("track no longer in catalog")
	ErrNoMissedTracks   = errors.New("no missed tracks to review")
)

// attemptLogLimit caps how much miss history feeds the scorer. Decay
// makes anything older nearly weightless anyway.
const attemptLogLimit = 500

// CatalogProvider supplies playlist tracks from an external music
// source. The core treats the result as read-only and already
// deduplicated.
type CatalogProvider interface {
	FetchPlaylist(ctx context.Context, playlistID string) ([]models.Track, error)
}

// Config bundles the tunable parameters of the adaptive core.
type Config struct {
	Rating   RatingConfig
	Scorer   ScorerConfig
	Selector SelectorConfig
	Ranking  RankingConfig
}

func DefaultConfig() Config {
	return Config{
		Rating:   DefaultRatingConfig(),
		Scorer:   DefaultScorerConfig(),
		Selector: DefaultSelectorConfig(),
		Ranking:  DefaultRankingConfig(),
	}
}

// Service wires the adaptive core together: selection consults the
// scorer (derived from miss history), outcomes feed the rating update,
// and misses land in both the miss set and the append-only log.
type Service struct {
	store    *Store
	provider CatalogProvider
	sessions *Sessions
	cfg      Config
	scorer   *Scorer
	selector *Selector
	builder  *TaskBuilder
	rng      *rand.Rand
}

// NewService builds a service with the given random source. Pass a
// seeded *rand.Rand; tests pass a fixed seed for deterministic draws.
func NewService(store *Store, provider CatalogProvider, cfg Config, rng *rand.Rand) *Service {
	scorer := NewScorer(cfg.Scorer)
	return &Service{
		store:    store,
		provider: provider,
		sessions: NewSessions(),
		cfg:      cfg,
		scorer:   scorer,
		selector: NewSelector(cfg.Selector, scorer, rng),
		builder:  NewTaskBuilder(rng),
		rng:      rng,
	}
}

// ── Playlist / Catalog ──────────────────────────────────

// LoadPlaylist replaces the player's session catalog wholesale from a
// playlist reference (id, link or URI). When the source yields nothing
// usable, seed tracks keep the quiz playable. The miss set is pruned to
// the new catalog so it never references tracks outside it.
func (s *Service) LoadPlaylist(ctx context.Context, userID int64, input string) (*models.LoadPlaylistResponse, error) {
	playlistID := catalog.ParsePlaylistInput(strings.TrimSpace(input))
	if playlistID == "" {
		return nil, fmt.Errorf("empty playlist reference")
	}

	tracks, err := s.provider.FetchPlaylist(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist: %w", err)
	}

	usedSeed := false
	if len(tracks) == 0 {
		log.Printf("WARN: playlist %s yielded no usable tracks, falling back to seed tracks", playlistID)
		tracks = catalog.SeedTracks()
		usedSeed = true
	}

	profile, err := s.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	err = s.sessions.With(userID, func(sess *Session) error {
		sess.Catalog.Replace(tracks)
		sess.PlaylistID = playlistID
		sess.Question = nil
		sess.Ranking = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	pruned := MissSet(profile.MissedTracks).Prune(tracks)
	if len(pruned) != len(profile.MissedTracks) {
		profile.MissedTracks = pruned
		if err := s.store.SaveProfile(profile); err != nil {
			log.Printf("WARN: failed to prune miss set for user %d: %v", userID, err)
		}
	}

	return &models.LoadPlaylistResponse{
		PlaylistID:  playlistID,
		TracksAdded: len(tracks),
		UsedSeed:    usedSeed,
	}, nil
}

// ── Guess Questions ─────────────────────────────────────

// NextQuestion draws the next track and question type. The random
// approach is a uniform draw; the personalized approach biases the draw
// toward the player's weak artists, decades and genres and re-surfaces
// missed tracks outright for struggling players.
func (s *Service) NextQuestion(userID int64, approach models.Approach) (*models.QuestionResponse, error) {
	profile, err := s.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	var resp *models.QuestionResponse
	err = s.sessions.With(userID, func(sess *Session) error {
		tracks := sess.Catalog.Tracks()
		if len(tracks) == 0 {
			return ErrNoTracks
		}

		var track models.Track
		var questionType models.QuestionType

		if approach == models.ApproachPersonalized {
			attempts, err := s.store.ListIncorrectAttempts(userID, attemptLogLimit)
			if err != nil {
				log.Printf("WARN: failed to load miss history for user %d: %v", userID, err)
			}
			axes := s.scorer.Score(attempts, tracks, profile, time.Now())
			track, err = s.selector.PickTrack(tracks, axes, MissSet(profile.MissedTracks), profile.Accuracy())
			if err != nil {
				return err
			}
			questionType = s.selector.PickQuestionType(sess.TypeMisses)
		} else {
			track = tracks[s.rng.Intn(len(tracks))]
			questionType = models.AllQuestionTypes[s.rng.Intn(len(models.AllQuestionTypes))]
		}

		rating := GuessRating(profile, approach)
		hints := s.hintsFor(userID, track, questionType, approach, rating)

		sess.Question = &PendingQuestion{
			TrackID:      track.ID,
			QuestionType: questionType,
			Approach:     approach,
			StartedAt:    time.Now(),
			HintShown:    len(hints) > 0,
		}

		resp = &models.QuestionResponse{
			TrackID:        track.ID,
			QuestionType:   questionType,
			Approach:       approach,
			PreviewURL:     track.PreviewURL,
			SnippetSeconds: SnippetSeconds(rating),
			Hints:          hints,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// hintsFor decides whether help is surfaced at all, then delegates the
// content and the cap to the hint policy. Personalized questions always
// come with hints for players who are struggling; random questions get
// a hint only occasionally.
func (s *Service) hintsFor(userID int64, track models.Track, questionType models.QuestionType, approach models.Approach, rating int) []string {
	if approach == models.ApproachRandom && s.rng.Float64() >= 0.4 {
		return nil
	}

	timesMissed, err := s.store.CountTrackMisses(userID, track.ID)
	if err != nil {
		log.Printf("WARN: failed to count misses for track %s: %v", track.ID, err)
	}
	return GenerateHints(track, questionType, rating, timesMissed)
}

// SubmitGuess scores the pending question, updates the relevant guess
// rating, maintains the miss set and appends to the attempt log.
func (s *Service) SubmitGuess(userID int64, guess string) (*models.GuessResult, error) {
	profile, err := s.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	var result *models.GuessResult
	err = s.sessions.With(userID, func(sess *Session) error {
		if sess.Question == nil {
			return ErrNoActiveQuestion
		}
		question := sess.Question
		sess.Question = nil

		track, ok := sess.Catalog.Get(question.TrackID)
		if !ok {
			return ErrTrackGone
		}

		elapsed := time.Since(question.StartedAt).Seconds()
		rating := GuessRating(profile, question.Approach)
		correct := EvaluateGuess(track, question.QuestionType, guess, rating)

		outcome := 0.0
		if correct {
			outcome = 1.0
		}
		kind := KindFor(question.Approach, models.ModeGuess)
		newRating := s.cfg.Rating.Update(rating, outcome)
		SetRating(profile, kind, newRating)

		profile.TotalAttempts++
		missed := MissSet(profile.MissedTracks)
		if correct {
			profile.TotalCorrect++
			missed = missed.Remove(track.ID)
		} else {
			missed = missed.Add(track.ID)
			sess.RecordTypeMiss(question.QuestionType, elapsed, s.cfg.Selector.QuickMissSeconds)
		}
		profile.MissedTracks = missed

		if err := s.store.SaveProfile(profile); err != nil {
			return err
		}

		if err := s.store.RecordAttempt(models.Attempt{
			UserID:       userID,
			TrackID:      track.ID,
			QuestionType: question.QuestionType,
			Correct:      correct,
			TimeTaken:    elapsed,
			Approach:     question.Approach,
			HintShown:    question.HintShown,
		}); err != nil {
			log.Printf("WARN: failed to record attempt for user %d: %v", userID, err)
		}

		feedback := fmt.Sprintf("Wrong! Correct: %s – %s (%d).", track.Artist, track.Title, track.Year)
		if correct {
			feedback = fmt.Sprintf("Correct! %s – %s (%d).", track.Artist, track.Title, track.Year)
		}

		result = &models.GuessResult{
			Correct:       correct,
			Feedback:      feedback,
			TimeTaken:     elapsed,
			NewRating:     newRating,
			CorrectArtist: track.Artist,
			CorrectTitle:  track.Title,
			CorrectYear:   track.Year,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ── Ranking Tasks ───────────────────────────────────────

// NextRankingTask assembles a new drag-and-drop ordering task. The
// random approach picks a uniform subset; the personalized approach
// sizes the subset by rank rating and biases composition by the session
// difficulty setting and the player's missed tracks.
func (s *Service) NextRankingTask(userID int64, approach models.Approach) (*models.RankingTaskResponse, error) {
	profile, err := s.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	var resp *models.RankingTaskResponse
	err = s.sessions.With(userID, func(sess *Session) error {
		tracks := sess.Catalog.Tracks()
		if len(tracks) == 0 {
			return ErrNoTracks
		}

		var offered []models.Track
		if approach == models.ApproachPersonalized {
			offered, err = s.builder.BuildPersonalized(tracks, MissSet(profile.MissedTracks),
				RankRating(profile, approach), sess.Difficulty, sess.RankingMode)
		} else {
			offered, err = s.builder.BuildRandom(tracks)
		}
		if err != nil {
			return err
		}

		ids := make([]string, len(offered))
		for i, t := range offered {
			ids[i] = t.ID
		}
		sess.Ranking = &PendingRanking{TrackIDs: ids, Mode: sess.RankingMode, Approach: approach}

		resp = &models.RankingTaskResponse{
			Tracks:   offered,
			Mode:     sess.RankingMode,
			Approach: approach,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// RankMistakesOnly starts a personalized ranking task over exactly the
// player's missed tracks.
func (s *Service) RankMistakesOnly(userID int64) (*models.RankingTaskResponse, error) {
	profile, err := s.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	var resp *models.RankingTaskResponse
	err = s.sessions.With(userID, func(sess *Session) error {
		tracks := sess.Catalog.Tracks()
		if len(tracks) == 0 {
			return ErrNoTracks
		}

		offered, err := s.builder.BuildFromMissSet(tracks, MissSet(profile.MissedTracks))
		if err != nil {
			return err
		}

		ids := make([]string, len(offered))
		for i, t := range offered {
			ids[i] = t.ID
		}
		sess.Ranking = &PendingRanking{TrackIDs: ids, Mode: sess.RankingMode, Approach: models.ApproachPersonalized}

		resp = &models.RankingTaskResponse{
			Tracks:   offered,
			Mode:     sess.RankingMode,
			Approach: models.ApproachPersonalized,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// SubmitRanking scores the pending task's submitted order, blends in
// the self-reported difficulty and feeds the outcome into the relevant
// rank rating.
func (s *Service) SubmitRanking(userID int64, req models.SubmitRankingRequest) (*models.RankingResultResponse, error) {
	profile, err := s.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	var resp *models.RankingResultResponse
	err = s.sessions.With(userID, func(sess *Session) error {
		if sess.Ranking == nil {
			return ErrNoActiveRanking
		}
		pending := sess.Ranking
		sess.Ranking = nil

		var offered []models.Track
		for _, id := range pending.TrackIDs {
			if t, ok := sess.Catalog.Get(id); ok {
				offered = append(offered, t)
			}
		}

		result, err := s.cfg.Ranking.Evaluate(offered, req.Order, pending.Mode, req.Difficulty)
		if err != nil {
			return err
		}

		kind := KindFor(pending.Approach, models.ModeRank)
		newRating := s.cfg.Rating.Update(RankRating(profile, pending.Approach), result.Outcome)
		SetRating(profile, kind, newRating)
		if err := s.store.SaveProfile(profile); err != nil {
			return err
		}

		resp = &models.RankingResultResponse{
			Approach:     pending.Approach,
			FinalOrder:   result.FinalOrder,
			CorrectOrder: result.CorrectOrder,
			Correctness:  result.Correctness,
			Difficulty:   result.Difficulty,
			Outcome:      result.Outcome,
			NewRating:    newRating,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ── Review, Stats & Settings ────────────────────────────

// MissedTracks lists the player's current missed tracks, sorted by
// release year for review.
func (s *Service) MissedTracks(userID int64) ([]models.Track, error) {
	profile, err := s.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	var out []models.Track
	err = s.sessions.With(userID, func(sess *Session) error {
		out = MissSet(profile.MissedTracks).Intersect(sess.Catalog.Tracks())
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoMissedTracks
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

func (s *Service) Stats(userID int64) (*models.StatsResponse, error) {
	profile, err := s.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	return &models.StatsResponse{
		Profile:  *profile,
		Accuracy: profile.Accuracy(),
		Level:    profile.Level(),
		Missed:   len(profile.MissedTracks),
	}, nil
}

func (s *Service) Scoreboard() ([]models.ScoreboardEntry, error) {
	return s.store.Scoreboard(50)
}

// SetPreferences stores the player's favorite genre tags, which double
// the matching genre contributions in personalization scoring.
func (s *Service) SetPreferences(userID int64, genres []string) error {
	profile, err := s.store.GetProfile(userID)
	if err != nil {
		return err
	}
	profile.FavoriteGenres = genres
	return s.store.SaveProfile(profile)
}

// UpdateSettings applies session settings (ranking mode, difficulty).
// Unknown values are ignored rather than rejected.
func (s *Service) UpdateSettings(userID int64, req models.SettingsRequest) error {
	return s.sessions.With(userID, func(sess *Session) error {
		switch models.RankingMode(req.RankingMode) {
		case models.RankTimeline, models.RankPopularity:
			sess.RankingMode = models.RankingMode(req.RankingMode)
		}
		switch models.DifficultySetting(req.Difficulty) {
		case models.DifficultyEasy, models.DifficultyNormal, models.DifficultyHard:
			sess.Difficulty = models.DifficultySetting(req.Difficulty)
		}
		return nil
	})
}

// EndSession discards all session-scoped state for the player.
func (s *Service) EndSession(userID int64) {
	s.sessions.Reset(userID)
}

// ── Autocomplete ────────────────────────────────────────

// Autocomplete suggests up to 10 catalog artists or titles matching the
// prefix, case-insensitively.
func (s *Service) Autocomplete(userID int64, field, prefix string) ([]string, error) {
	prefix = strings.ToLower(prefix)
	if prefix == "" {
		return nil, nil
	}

	var matches []string
	err := s.sessions.With(userID, func(sess *Session) error {
		seen := make(map[string]bool)
		for _, t := range sess.Catalog.Tracks() {
			value := t.Artist
			if field == "title" {
				value = t.Title
			}
			if !seen[value] && strings.HasPrefix(strings.ToLower(value), prefix) {
				seen[value] = true
				matches = append(matches, value)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		return strings.ToLower(matches[i]) < strings.ToLower(matches[j])
	})
	if len(matches) > 10 {
		matches = matches[:10]
	}
	return matches, nil
}
