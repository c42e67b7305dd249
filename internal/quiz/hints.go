package quiz

import (
	"fmt"

	"github.com/trackquiz/backend/internal/models"
)

// MaxHints caps the hint count by guess-rating tier: strong players get
// a single hint, everyone else up to three.
func MaxHints(rating int) int {
	if rating > 1400 {
		return 1
	}
	return 3
}

// GenerateHints builds the progressively more specific hint list for a
// track and question type: a first-letter (or decade) reveal, then a
// structural fact, then — if the player has missed this exact track
// twice or more — an explicit reminder. The list is truncated to the
// rating cap; nothing beyond the generated facts is ever added.
func GenerateHints(track models.Track, questionType models.QuestionType, rating int, timesMissed int) []string {
	var hints []string

	switch questionType {
	case models.QuestionArtist:
		if track.Artist != "" {
			hints = append(hints, fmt.Sprintf("The artist starts with %q.", string([]rune(track.Artist)[0])))
			hints = append(hints, fmt.Sprintf("The artist's name has %d letters.", len([]rune(track.Artist))))
		}
	case models.QuestionTitle:
		if track.Title != "" {
			hints = append(hints, fmt.Sprintf("The title starts with %q.", string([]rune(track.Title)[0])))
			hints = append(hints, fmt.Sprintf("The title has %d characters.", len([]rune(track.Title))))
		}
	case models.QuestionYear:
		hints = append(hints, fmt.Sprintf("The release year is in the %ds.", track.Decade()))
		if track.Year >= 2000 {
			hints = append(hints, "It's in the 21st century.")
		} else {
			hints = append(hints, "It's in the 20th century or earlier.")
		}
	}

	if timesMissed >= 2 {
		hints = append(hints, fmt.Sprintf("We've seen this one before — missed %d times already.", timesMissed))
	}

	if max := MaxHints(rating); len(hints) > max {
		hints = hints[:max]
	}
	return hints
}
