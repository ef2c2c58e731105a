package core

import "context"

// Playback defines the interface for the audio side effect of a round.
// Implementations control an external playback device; the engine only
// needs start/pause/resume/stop by playable reference.
type Playback interface {
	// Play starts playback of the given reference from the beginning.
	Play(ctx context.Context, playableRef string) error

	// Pause pauses the current playback, if any.
	Pause(ctx context.Context) error

	// Resume resumes a paused playback.
	Resume(ctx context.Context) error

	// Stop halts playback and releases the reference.
	Stop(ctx context.Context) error
}
