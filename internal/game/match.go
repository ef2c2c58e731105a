package game

import (
	"strings"

	"github.com/pverge/blindtest/internal/core"
)

// MatchGuess reports whether guess names the track. The guess matches when
// it equals the title or any artist name after trimming whitespace and
// case-folding. Matching is exact: no fuzzy or partial matches, so a
// one-character typo never scores. Blank guesses never match; callers
// disable submission on blank input.
func MatchGuess(guess string, track *core.Track) bool {
	normalized := normalizeAnswer(guess)
	if normalized == "" || track == nil {
		return false
	}

	if normalized == normalizeAnswer(track.Title) {
		return true
	}
	for _, artist := range track.Artists {
		if normalized == normalizeAnswer(artist) {
			return true
		}
	}
	return false
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
