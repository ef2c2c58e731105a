package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pverge/blindtest/internal/core"
	apperrors "github.com/pverge/blindtest/internal/errors"
)

const (
	// Retry configuration for transient errors
	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client fetches candidate tracks from the catalog service. The service
// owns the vendor handshake; this client only speaks the track endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	verbose    bool
	logFunc    func(format string, args ...interface{})
}

// New creates a catalog client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

// SetVerbose enables verbose logging.
func (c *Client) SetVerbose(verbose bool, logFunc func(format string, args ...interface{})) {
	c.verbose = verbose
	c.logFunc = logFunc
}

func (c *Client) log(format string, args ...interface{}) {
	if c.verbose && c.logFunc != nil {
		c.logFunc(format, args...)
	}
}

// trackPayload is the wire shape of one catalog track.
type trackPayload struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	PlayableRef string `json:"playableRef"`
}

// APIError is a non-2xx catalog response. Message carries the server's
// reason verbatim, because the host renders it as the session-start
// failure.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

// FetchTracks requests count candidate tracks for the given playlist or
// genre source. Tracks without a playable reference are dropped; if none
// remain, FetchTracks fails with ErrEmptyCatalog.
func (c *Client) FetchTracks(ctx context.Context, source string, count int) ([]core.Track, error) {
	u := fmt.Sprintf("%s/catalog/tracks?source=%s&count=%s",
		c.baseURL, url.QueryEscape(source), strconv.Itoa(count))

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var payload []trackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse catalog response: %w", err)
	}

	tracks := make([]core.Track, 0, len(payload))
	for _, p := range payload {
		if p.PlayableRef == "" {
			continue
		}
		t := core.Track{
			ID:          p.ID,
			Title:       p.Title,
			PlayableRef: p.PlayableRef,
		}
		for _, a := range p.Artists {
			t.Artists = append(t.Artists, a.Name)
		}
		tracks = append(tracks, t)
	}

	if len(tracks) == 0 {
		return nil, apperrors.ErrEmptyCatalog
	}

	return tracks, nil
}

// get performs a GET with retries on network and 5xx failures.
func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	c.log("[catalog] GET %s", fullURL)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		// Wait before retry (skip on first attempt)
		if attempt > 0 {
			wait := baseRetryWait * time.Duration(1<<(attempt-1)) // exponential backoff
			c.log("[catalog] retry %d/%d after %v (last error: %v)", attempt, maxRetries, wait, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			c.log("[catalog] network error: %v", err)
			continue // Retry on network error
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		c.log("[catalog] response: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))

		// Retry on 5xx server errors
		if resp.StatusCode >= 500 {
			lastErr = decodeAPIError(resp.StatusCode, respBody)
			c.log("[catalog] server error, will retry: %v", lastErr)
			continue
		}

		// Don't retry 4xx errors
		if resp.StatusCode >= 400 {
			return nil, decodeAPIError(resp.StatusCode, respBody)
		}

		return respBody, nil
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, apiErr); err == nil && apiErr.Message != "" {
		return apiErr
	}
	return fmt.Errorf("catalog error: status %d, body: %s", status, string(body))
}
