package playback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/pverge/blindtest/internal/errors"
)

// Remote implements core.Playback against a playback device's control
// endpoint. The device SDK itself lives behind that endpoint; this
// adapter only issues start/pause/resume/stop commands.
type Remote struct {
	httpClient *http.Client
	baseURL    string
	currentRef string
}

// NewRemote creates a playback adapter for the given device URL.
func NewRemote(baseURL string) *Remote {
	return &Remote{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}
}

// Play starts playback of the given reference from the beginning.
func (r *Remote) Play(ctx context.Context, playableRef string) error {
	r.currentRef = playableRef
	return r.command(ctx, "play", map[string]string{"ref": playableRef})
}

// Pause pauses the current playback.
func (r *Remote) Pause(ctx context.Context) error {
	return r.command(ctx, "pause", nil)
}

// Resume resumes a paused playback.
func (r *Remote) Resume(ctx context.Context) error {
	return r.command(ctx, "resume", nil)
}

// Stop halts playback and clears the current reference.
func (r *Remote) Stop(ctx context.Context) error {
	r.currentRef = ""
	return r.command(ctx, "stop", nil)
}

func (r *Remote) command(ctx context.Context, action string, body map[string]string) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s command: %w", action, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL+"/playback/"+action, reader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", action, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", apperrors.ErrPlayback, action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: %s returned status %d", apperrors.ErrPlayback, action, resp.StatusCode)
	}
	return nil
}

// Null is a no-op playback port, used when no device is configured or
// after a playback failure: the round then runs on the timer alone.
type Null struct{}

func (Null) Play(context.Context, string) error { return nil }
func (Null) Pause(context.Context) error        { return nil }
func (Null) Resume(context.Context) error       { return nil }
func (Null) Stop(context.Context) error         { return nil }
