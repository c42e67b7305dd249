package quiz

import (
	"math"
	"math/rand"
	"testing"

	"github.com/trackquiz/backend/internal/models"
)

var rankCatalog = []models.Track{
	{ID: "t1", Artist: "A", Year: 1990, Popularity: 80},
	{ID: "t2", Artist: "B", Year: 1995, Popularity: 60},
	{ID: "t3", Artist: "C", Year: 2000, Popularity: 90},
	{ID: "t4", Artist: "D", Year: 2005, Popularity: 40},
	{ID: "t5", Artist: "E", Year: 2010, Popularity: 70},
	{ID: "t6", Artist: "F", Year: 2015, Popularity: 50},
}

func TestGroundTruth(t *testing.T) {
	offered := []models.Track{rankCatalog[2], rankCatalog[0], rankCatalog[1]}

	timeline := GroundTruth(offered, models.RankTimeline)
	if timeline[0].ID != "t1" || timeline[1].ID != "t2" || timeline[2].ID != "t3" {
		t.Errorf("timeline order = %s %s %s, want t1 t2 t3",
			timeline[0].ID, timeline[1].ID, timeline[2].ID)
	}

	popularity := GroundTruth(offered, models.RankPopularity)
	if popularity[0].ID != "t3" || popularity[1].ID != "t1" || popularity[2].ID != "t2" {
		t.Errorf("popularity order = %s %s %s, want t3 t1 t2",
			popularity[0].ID, popularity[1].ID, popularity[2].ID)
	}
}

func TestPairwiseCorrectness(t *testing.T) {
	truth := []string{"t1", "t2", "t3"}

	tests := []struct {
		name      string
		submitted []string
		want      float64
	}{
		{"perfect order", []string{"t1", "t2", "t3"}, 1.0},
		{"fully reversed", []string{"t3", "t2", "t1"}, 0.0},
		{"one track misplaced", []string{"t3", "t1", "t2"}, 1.0 / 3.0},
		{"adjacent swap", []string{"t1", "t3", "t2"}, 2.0 / 3.0},
		{"single item is vacuously right", []string{"t1"}, 1.0},
		{"empty is vacuously right", nil, 1.0},
	}

	for _, tt := range tests {
		got := PairwiseCorrectness(tt.submitted, truth)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: correctness = %f, want %f", tt.name, got, tt.want)
		}
	}
}

func TestBlendOutcome(t *testing.T) {
	cfg := DefaultRankingConfig()

	tests := []struct {
		name        string
		correctness float64
		difficulty  int
		want        float64
	}{
		{"perfect and hardest", 1.0, 5, 1.0},
		{"perfect and easiest", 1.0, 1, 0.7},
		{"all wrong but hardest", 0.0, 5, 0.3},
		{"all wrong and easiest", 0.0, 1, 0.0},
		{"mid difficulty", 1.0, 3, 0.85},
		{"difficulty clamped low", 1.0, 0, 0.7},
		{"difficulty clamped high", 1.0, 9, 1.0},
	}

	for _, tt := range tests {
		got, _ := cfg.BlendOutcome(tt.correctness, tt.difficulty)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: outcome = %f, want %f", tt.name, got, tt.want)
		}
	}
}

func TestEvaluate(t *testing.T) {
	cfg := DefaultRankingConfig()
	offered := []models.Track{rankCatalog[0], rankCatalog[1], rankCatalog[2]}

	result, err := cfg.Evaluate(offered, []string{"t3", "t2", "t1"}, models.RankTimeline, 3)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if result.Correctness != 0.0 {
		t.Errorf("reversed correctness = %f, want 0", result.Correctness)
	}
	if result.CorrectOrder[0] != "t1" || result.CorrectOrder[2] != "t3" {
		t.Errorf("correct order = %v, want t1..t3", result.CorrectOrder)
	}

	// Ids outside the offered subset are discarded before scoring.
	result, err = cfg.Evaluate(offered, []string{"t1", "bogus", "t2", "t3"}, models.RankTimeline, 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(result.FinalOrder) != 3 {
		t.Errorf("final order len = %d, want 3", len(result.FinalOrder))
	}
	if result.Correctness != 1.0 {
		t.Errorf("correctness = %f, want 1.0", result.Correctness)
	}

	// An empty submission falls back to the offered order.
	result, err = cfg.Evaluate(offered, nil, models.RankTimeline, 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(result.FinalOrder) != 3 {
		t.Errorf("fallback final order len = %d, want 3", len(result.FinalOrder))
	}

	// Degenerate subsets are rejected.
	if _, err := cfg.Evaluate(offered[:1], nil, models.RankTimeline, 3); err != ErrNotEnoughTracks {
		t.Errorf("err = %v, want ErrNotEnoughTracks", err)
	}
}

func TestBaseCount(t *testing.T) {
	tests := []struct {
		rating int
		want   int
	}{
		{900, 3},
		{1099, 3},
		{1100, 4},
		{1400, 4},
		{1401, 5},
		{2000, 5},
	}
	for _, tt := range tests {
		if got := BaseCount(tt.rating); got != tt.want {
			t.Errorf("BaseCount(%d) = %d, want %d", tt.rating, got, tt.want)
		}
	}
}

func TestBuildRandom(t *testing.T) {
	b := NewTaskBuilder(rand.New(rand.NewSource(3)))

	offered, err := b.BuildRandom(rankCatalog)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(offered) != 4 {
		t.Errorf("len = %d, want 4", len(offered))
	}

	// Small catalogs shrink the subset rather than failing.
	offered, err = b.BuildRandom(rankCatalog[:3])
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(offered) != 3 {
		t.Errorf("len = %d, want 3", len(offered))
	}

	if _, err := b.BuildRandom(rankCatalog[:1]); err != ErrNotEnoughTracks {
		t.Errorf("err = %v, want ErrNotEnoughTracks", err)
	}
}

func TestBuildPersonalizedSizes(t *testing.T) {
	b := NewTaskBuilder(rand.New(rand.NewSource(9)))

	tests := []struct {
		rating int
		want   int
	}{
		{1000, 3},
		{1200, 4},
		{1500, 5},
	}
	for _, tt := range tests {
		offered, err := b.BuildPersonalized(rankCatalog, nil, tt.rating, models.DifficultyNormal, models.RankTimeline)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if len(offered) != tt.want {
			t.Errorf("rating %d: len = %d, want %d", tt.rating, len(offered), tt.want)
		}
	}

	if _, err := b.BuildPersonalized(rankCatalog[:1], nil, 1200, models.DifficultyNormal, models.RankTimeline); err != ErrNotEnoughTracks {
		t.Errorf("err = %v, want ErrNotEnoughTracks", err)
	}
}

func TestBuildPersonalizedNoDuplicates(t *testing.T) {
	b := NewTaskBuilder(rand.New(rand.NewSource(21)))
	missed := MissSet{"t2", "t4"}

	for i := 0; i < 50; i++ {
		offered, err := b.BuildPersonalized(rankCatalog, missed, 1200, models.DifficultyHard, models.RankTimeline)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		seen := make(map[string]bool)
		for _, track := range offered {
			if seen[track.ID] {
				t.Fatalf("duplicate track %s in subset %v", track.ID, offered)
			}
			seen[track.ID] = true
		}
	}
}

func TestBuildFromMissSet(t *testing.T) {
	b := NewTaskBuilder(rand.New(rand.NewSource(13)))

	offered, err := b.BuildFromMissSet(rankCatalog, MissSet{"t1", "t5", "t3"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(offered) != 3 {
		t.Errorf("len = %d, want 3", len(offered))
	}

	if _, err := b.BuildFromMissSet(rankCatalog, MissSet{"t1"}); err != ErrNotEnoughTracks {
		t.Errorf("one missed track: err = %v, want ErrNotEnoughTracks", err)
	}
	if _, err := b.BuildFromMissSet(rankCatalog, nil); err != ErrNotEnoughTracks {
		t.Errorf("empty miss set: err = %v, want ErrNotEnoughTracks", err)
	}
}

func TestPickCloseClusters(t *testing.T) {
	b := NewTaskBuilder(rand.New(rand.NewSource(17)))

	got := b.pickClose(rankCatalog, 3, models.RankTimeline)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	// The cluster's year span must be tighter than the full catalog's.
	minYear, maxYear := got[0].Year, got[0].Year
	for _, track := range got {
		if track.Year < minYear {
			minYear = track.Year
		}
		if track.Year > maxYear {
			maxYear = track.Year
		}
	}
	if maxYear-minYear >= 2015-1990 {
		t.Errorf("cluster span %d not tighter than catalog span", maxYear-minYear)
	}
}

func TestPickSpreadCount(t *testing.T) {
	b := NewTaskBuilder(rand.New(rand.NewSource(19)))

	got := b.pickSpread(rankCatalog, 3, models.RankTimeline)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	seen := make(map[string]bool)
	for _, track := range got {
		if seen[track.ID] {
			t.Fatalf("duplicate track %s", track.ID)
		}
		seen[track.ID] = true
	}
}
