package game

import (
	"testing"

	"github.com/pverge/blindtest/internal/core"
)

func TestMatchGuess(t *testing.T) {
	track := &core.Track{
		ID:      "t1",
		Title:   "Yesterday",
		Artists: []string{"The Beatles", "Paul McCartney"},
	}

	tests := []struct {
		name  string
		guess string
		want  bool
	}{
		{"exact title", "Yesterday", true},
		{"case insensitive title", "yesterday", true},
		{"trailing whitespace", "Yesterday ", true},
		{"leading whitespace", "  yesterday", true},
		{"first artist", "the beatles", true},
		{"second artist", "PAUL MCCARTNEY", true},
		{"typo does not match", "Yesterdy", false},
		{"substring does not match", "Yester", false},
		{"empty guess", "", false},
		{"whitespace only", "   ", false},
		{"wrong answer", "Hey Jude", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchGuess(tt.guess, track); got != tt.want {
				t.Errorf("MatchGuess(%q) = %v, want %v", tt.guess, got, tt.want)
			}
		})
	}
}

func TestMatchGuessNilTrack(t *testing.T) {
	if MatchGuess("anything", nil) {
		t.Error("MatchGuess() against nil track should be false")
	}
}
