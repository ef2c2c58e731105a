package core

import "strings"

// Source indicates where a round's candidate tracks came from.
type Source string

const (
	SourcePlaylist Source = "playlist"
	SourceGenre    Source = "genre"
)

// Track represents one playable catalog entry. Tracks are immutable once
// fetched; the session holds them for its lifetime.
type Track struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Artists     []string `json:"artists"`
	PlayableRef string   `json:"playable_ref"`
}

// ArtistLine returns the artist names joined for display.
func (t *Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// Playable returns true if the track carries a reference the playback
// device can consume.
func (t *Track) Playable() bool {
	return t != nil && t.PlayableRef != ""
}
