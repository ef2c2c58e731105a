package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.blindtestrc, $XDG_CONFIG_HOME/blindtest/config.toml,
// ~/.config/blindtest/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	// Try loading from file
	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".blindtestrc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "blindtest", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Catalog
	if v := os.Getenv("BLINDTEST_CATALOG_URL"); v != "" {
		cfg.Catalog.BaseURL = v
	}

	// Playback
	if v := os.Getenv("BLINDTEST_PLAYBACK_DEVICE_URL"); v != "" {
		cfg.Playback.DeviceURL = v
	}

	// Game
	if v := os.Getenv("BLINDTEST_ROUND_DURATION"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Game.RoundDuration = i
		}
	}
	if v := os.Getenv("BLINDTEST_REQUESTED_COUNT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Game.RequestedCount = i
		}
	}

	// Multiplayer
	if v := os.Getenv("BLINDTEST_MULTIPLAYER_URL"); v != "" {
		cfg.Multiplayer.ServerURL = v
	}

	// TUI
	if v := os.Getenv("BLINDTEST_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}

	// Log
	if v := os.Getenv("BLINDTEST_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("BLINDTEST_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
