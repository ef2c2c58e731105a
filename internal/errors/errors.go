package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrEmptyCatalog           = errors.New("no playable tracks in catalog")
	ErrInsufficientCandidates = errors.New("not enough unique tracks available for selection")
	ErrPlayback               = errors.New("playback device error")
	ErrChannelUnavailable     = errors.New("multiplayer channel unavailable")
	ErrSessionNotIdle         = errors.New("session already started")
	ErrNetworkError           = errors.New("network error")
	ErrTimeout                = errors.New("request timeout")
	ErrConfigNotFound         = errors.New("config file not found")
	ErrInvalidConfig          = errors.New("invalid configuration")
)

// GameError wraps an error with a user-friendly suggestion.
type GameError struct {
	Err        error
	Suggestion string
}

func (e *GameError) Error() string {
	return e.Err.Error()
}

func (e *GameError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &GameError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	// Check if it's already a GameError with suggestion
	var gameErr *GameError
	if errors.As(err, &gameErr) && gameErr.Suggestion != "" {
		return gameErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	// Catalog errors: both are terminal for the session, the player
	// restarts with a different source.
	if errors.Is(err, ErrEmptyCatalog) || strings.Contains(errStr, "no playable tracks") {
		return "Try a different playlist or genre"
	}

	if errors.Is(err, ErrInsufficientCandidates) || strings.Contains(errStr, "not enough unique") {
		return "Pick a larger playlist or request fewer tracks with --count"
	}

	// Playback errors are non-fatal; the round runs on the timer alone.
	if errors.Is(err, ErrPlayback) || strings.Contains(errStr, "playback device") {
		return "Check that your playback device is reachable, or play without audio"
	}

	if errors.Is(err, ErrChannelUnavailable) || strings.Contains(errStr, "channel unavailable") {
		return "Check the multiplayer server address and try rejoining"
	}

	// Network errors
	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") {
		return "Check your internet connection and try again"
	}

	// Config errors
	if errors.Is(err, ErrConfigNotFound) || strings.Contains(errStr, "config") {
		return "Run 'blindtest config init' to create a configuration"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}
