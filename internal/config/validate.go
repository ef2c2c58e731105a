package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Catalog.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("catalog: %w", err))
	}
	if err := c.Playback.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("playback: %w", err))
	}
	if err := c.Game.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("game: %w", err))
	}
	if err := c.Multiplayer.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("multiplayer: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks CatalogConfig for errors.
func (c *CatalogConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url must be set")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	return nil
}

// Validate checks PlaybackConfig for errors.
func (c *PlaybackConfig) Validate() error {
	if c.DeviceURL != "" {
		if _, err := url.Parse(c.DeviceURL); err != nil {
			return fmt.Errorf("invalid device_url: %w", err)
		}
	}
	return nil
}

// Validate checks GameConfig for errors.
func (c *GameConfig) Validate() error {
	if c.RoundDuration < 5 {
		return errors.New("round_duration must be at least 5 seconds")
	}
	if c.RevealDwell < 1 {
		return errors.New("reveal_dwell must be at least 1 second")
	}
	if c.RequestedCount < 1 {
		return errors.New("requested_count must be at least 1")
	}
	if c.SkipBudget < 0 {
		return errors.New("skip_budget must be non-negative")
	}
	if c.SuggestionLimit < 1 {
		return errors.New("suggestion_limit must be at least 1")
	}
	return nil
}

// Validate checks MultiplayerConfig for errors.
func (c *MultiplayerConfig) Validate() error {
	if c.ServerURL != "" {
		u, err := url.Parse(c.ServerURL)
		if err != nil {
			return fmt.Errorf("invalid server_url: %w", err)
		}
		switch u.Scheme {
		case "ws", "wss":
			// valid
		default:
			return fmt.Errorf("server_url must use ws or wss, got %q", u.Scheme)
		}
	}
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, dark, or light)", c.Theme)
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}
