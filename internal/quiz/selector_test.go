package quiz

import (
	"math/rand"
	"testing"
	"time"

	"github.com/trackquiz/backend/internal/models"
)

func newTestSelector(seed int64) *Selector {
	cfg := DefaultSelectorConfig()
	return NewSelector(cfg, NewScorer(DefaultScorerConfig()), rand.New(rand.NewSource(seed)))
}

func TestPickTrackEmptyCatalog(t *testing.T) {
	s := newTestSelector(1)
	_, err := s.PickTrack(nil, AxisScores{}, nil, 0.5)
	if err != ErrNoTracks {
		t.Errorf("err = %v, want ErrNoTracks", err)
	}
}

func TestPickTrackUniformFallback(t *testing.T) {
	s := newTestSelector(42)
	catalog := []models.Track{
		{ID: "t1", Artist: "A", Year: 1990},
		{ID: "t2", Artist: "B", Year: 2000},
		{ID: "t3", Artist: "C", Year: 2010},
	}

	// No miss history, no axes: every track must eventually be drawn.
	seen := make(map[string]int)
	for i := 0; i < 300; i++ {
		track, err := s.PickTrack(catalog, AxisScores{}, nil, 0.5)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		seen[track.ID]++
	}
	for _, c := range catalog {
		if seen[c.ID] == 0 {
			t.Errorf("track %s never drawn under uniform fallback", c.ID)
		}
	}
}

func TestPickTrackPrefersMissedForWeakPlayer(t *testing.T) {
	s := newTestSelector(7)
	catalog := []models.Track{
		{ID: "t1", Artist: "A", Year: 1990},
		{ID: "t2", Artist: "B", Year: 2000},
		{ID: "t3", Artist: "C", Year: 2010},
	}
	missed := MissSet{"t2"}

	// Accuracy 0 pushes the miss re-surfacing probability to its 0.8
	// ceiling, so over many draws t2 clearly dominates.
	hits := 0
	const trials = 1000
	for i := 0; i < trials; i++ {
		track, err := s.PickTrack(catalog, AxisScores{}, missed, 0.0)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if track.ID == "t2" {
			hits++
		}
	}
	// Expected share: 0.8 (direct) + 0.2×(1/3) (uniform fallback) ≈ 0.87.
	if share := float64(hits) / trials; share < 0.75 {
		t.Errorf("missed track drawn %f of the time, want clearly above 0.75", share)
	}
}

func TestPickTrackBiasedTowardWeakAxes(t *testing.T) {
	s := newTestSelector(99)
	catalog := []models.Track{
		{ID: "t1", Artist: "Weak Artist", Year: 1990},
		{ID: "t2", Artist: "Other", Year: 2005},
	}
	axes := AxisScores{
		Artist: map[string]float64{"Weak Artist": 5.0},
	}

	hits := 0
	const trials = 1000
	for i := 0; i < trials; i++ {
		track, err := s.PickTrack(catalog, axes, nil, 0.9)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if track.ID == "t1" {
			hits++
		}
	}
	// t1 is the whole candidate subset (t2 matches no top axis).
	if hits != trials {
		t.Errorf("weak-axis track drawn %d/%d times, want all", hits, trials)
	}
}

func TestTypeWeightsBaseline(t *testing.T) {
	s := newTestSelector(1)
	weights := s.TypeWeights(map[models.QuestionType]TypeMissCount{})

	for _, qt := range models.AllQuestionTypes {
		if weights[qt] != 1.0 {
			t.Errorf("baseline weight for %s = %f, want 1.0", qt, weights[qt])
		}
	}
}

func TestTypeWeightsMissesAndQuickMisses(t *testing.T) {
	s := newTestSelector(1)
	counts := map[models.QuestionType]TypeMissCount{
		models.QuestionArtist: {Misses: 2, Quick: 1},
	}
	weights := s.TypeWeights(counts)

	// 1 + 2 + 0.5×1
	if weights[models.QuestionArtist] != 3.5 {
		t.Errorf("artist weight = %f, want 3.5", weights[models.QuestionArtist])
	}
	if weights[models.QuestionTitle] != 1.0 {
		t.Errorf("title weight = %f, want 1.0", weights[models.QuestionTitle])
	}
}

func TestTypeWeightsYearFairnessFloor(t *testing.T) {
	s := newTestSelector(1)

	// Pile misses onto artist so year's natural share collapses.
	counts := map[models.QuestionType]TypeMissCount{
		models.QuestionArtist: {Misses: 10},
	}
	weights := s.TypeWeights(counts)

	total := 0.0
	for _, qt := range models.AllQuestionTypes {
		total += weights[qt]
	}
	share := weights[models.QuestionYear] / total
	if share < 0.20-1e-9 {
		t.Errorf("year share = %f, want at least 0.20", share)
	}
}

func TestPickQuestionTypeCoversAllTypes(t *testing.T) {
	s := newTestSelector(5)
	seen := make(map[models.QuestionType]int)
	for i := 0; i < 300; i++ {
		seen[s.PickQuestionType(nil)]++
	}
	for _, qt := range models.AllQuestionTypes {
		if seen[qt] == 0 {
			t.Errorf("type %s never drawn", qt)
		}
	}
}

func TestYearMargin(t *testing.T) {
	tests := []struct {
		rating int
		want   int
	}{
		{900, 3},
		{1099, 3},
		{1100, 2},
		{1399, 2},
		{1400, 0},
		{1800, 0},
	}
	for _, tt := range tests {
		if got := YearMargin(tt.rating); got != tt.want {
			t.Errorf("YearMargin(%d) = %d, want %d", tt.rating, got, tt.want)
		}
	}
}

func TestEvaluateGuess(t *testing.T) {
	track := models.Track{ID: "t1", Artist: "Daft Punk", Title: "One More Time", Year: 2000}

	tests := []struct {
		name   string
		qt     models.QuestionType
		guess  string
		rating int
		want   bool
	}{
		{"artist exact", models.QuestionArtist, "Daft Punk", 1200, true},
		{"artist case-insensitive", models.QuestionArtist, "daft punk", 1200, true},
		{"artist padded", models.QuestionArtist, "  Daft Punk  ", 1200, true},
		{"artist wrong", models.QuestionArtist, "Justice", 1200, false},
		{"title case-insensitive", models.QuestionTitle, "ONE MORE TIME", 1200, true},
		{"title wrong", models.QuestionTitle, "Around the World", 1200, false},
		{"year exact", models.QuestionYear, "2000", 1450, true},
		{"year off by one, strong player", models.QuestionYear, "1999", 1450, false},
		{"year off by two, mid player", models.QuestionYear, "1998", 1200, true},
		{"year off by three, mid player", models.QuestionYear, "1997", 1200, false},
		{"year off by three, weak player", models.QuestionYear, "1997", 1000, true},
		{"year not a number", models.QuestionYear, "around 2000", 1000, false},
	}

	for _, tt := range tests {
		got := EvaluateGuess(track, tt.qt, tt.guess, tt.rating)
		if got != tt.want {
			t.Errorf("%s: EvaluateGuess(%q) = %v, want %v", tt.name, tt.guess, got, tt.want)
		}
	}
}

// The scorer+selector pair drive the personalized loop end to end: a
// player who keeps missing one artist sees that artist more often.
func TestPersonalizedLoopBiasesTowardMisses(t *testing.T) {
	scorer := NewScorer(DefaultScorerConfig())
	s := NewSelector(DefaultSelectorConfig(), scorer, rand.New(rand.NewSource(11)))

	catalog := []models.Track{
		{ID: "t1", Artist: "Queen", Year: 1975, Genres: []string{"rock"}},
		{ID: "t2", Artist: "Queen", Year: 1980, Genres: []string{"rock"}},
		{ID: "t3", Artist: "ABBA", Year: 1976, Genres: []string{"pop"}},
		{ID: "t4", Artist: "Prince", Year: 1984, Genres: []string{"funk"}},
	}
	now := time.Now()
	attempts := []models.Attempt{
		{TrackID: "t1", Correct: false, AnsweredAt: now},
		{TrackID: "t2", Correct: false, AnsweredAt: now},
	}

	axes := scorer.Score(attempts, catalog, &models.PlayerProfile{}, now)
	queen := 0
	const trials = 500
	for i := 0; i < trials; i++ {
		track, err := s.PickTrack(catalog, axes, nil, 0.8)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if track.Artist == "Queen" {
			queen++
		}
	}
	if share := float64(queen) / trials; share < 0.6 {
		t.Errorf("weak artist drawn %f of the time, want the clear majority", share)
	}
}
