package quiz

import (
	"strings"
	"testing"

	"github.com/trackquiz/backend/internal/models"
)

var hintTrack = models.Track{
	ID:     "t1",
	Artist: "Queen",
	Title:  "Bohemian Rhapsody",
	Year:   1975,
}

func TestMaxHints(t *testing.T) {
	tests := []struct {
		rating int
		want   int
	}{
		{1000, 3},
		{1400, 3},
		{1401, 1},
		{1800, 1},
	}
	for _, tt := range tests {
		if got := MaxHints(tt.rating); got != tt.want {
			t.Errorf("MaxHints(%d) = %d, want %d", tt.rating, got, tt.want)
		}
	}
}

func TestGenerateHintsArtist(t *testing.T) {
	hints := GenerateHints(hintTrack, models.QuestionArtist, 1200, 0)

	if len(hints) != 2 {
		t.Fatalf("len = %d, want 2", len(hints))
	}
	if !strings.Contains(hints[0], `"Q"`) {
		t.Errorf("first hint %q does not reveal the first letter", hints[0])
	}
	if !strings.Contains(hints[1], "5") {
		t.Errorf("second hint %q does not state the name length", hints[1])
	}
}

func TestGenerateHintsYear(t *testing.T) {
	hints := GenerateHints(hintTrack, models.QuestionYear, 1200, 0)

	if len(hints) != 2 {
		t.Fatalf("len = %d, want 2", len(hints))
	}
	if !strings.Contains(hints[0], "1970s") {
		t.Errorf("first hint %q does not name the decade", hints[0])
	}
	if !strings.Contains(hints[1], "20th century") {
		t.Errorf("second hint %q does not name the century", hints[1])
	}

	modern := models.Track{ID: "t2", Title: "X", Artist: "Y", Year: 2003}
	hints = GenerateHints(modern, models.QuestionYear, 1200, 0)
	if !strings.Contains(hints[1], "21st century") {
		t.Errorf("hint %q, want 21st century", hints[1])
	}
}

func TestGenerateHintsRepeatedMissReminder(t *testing.T) {
	hints := GenerateHints(hintTrack, models.QuestionTitle, 1200, 3)

	if len(hints) != 3 {
		t.Fatalf("len = %d, want 3", len(hints))
	}
	if !strings.Contains(hints[2], "missed 3 times") {
		t.Errorf("last hint %q missing the repeat-miss reminder", hints[2])
	}

	// A single prior miss does not trigger the reminder.
	hints = GenerateHints(hintTrack, models.QuestionTitle, 1200, 1)
	if len(hints) != 2 {
		t.Errorf("len = %d, want 2 without the reminder", len(hints))
	}
}

func TestGenerateHintsCappedForStrongPlayers(t *testing.T) {
	hints := GenerateHints(hintTrack, models.QuestionTitle, 1500, 5)

	if len(hints) != 1 {
		t.Fatalf("len = %d, want 1 above the 1400 tier", len(hints))
	}
	// The cap keeps the first, least specific hint.
	if !strings.Contains(hints[0], `"B"`) {
		t.Errorf("remaining hint %q is not the first-letter hint", hints[0])
	}
}
