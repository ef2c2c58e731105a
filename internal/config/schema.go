package config

// Config is the root configuration structure.
type Config struct {
	Catalog     CatalogConfig     `toml:"catalog"`
	Playback    PlaybackConfig    `toml:"playback"`
	Game        GameConfig        `toml:"game"`
	Multiplayer MultiplayerConfig `toml:"multiplayer"`
	TUI         TUIConfig         `toml:"tui"`
	Log         LogConfig         `toml:"log"`
}

// CatalogConfig holds catalog service settings.
type CatalogConfig struct {
	BaseURL string `toml:"base_url"`
}

// PlaybackConfig holds playback device settings.
type PlaybackConfig struct {
	DeviceURL string `toml:"device_url"`
}

// GameConfig holds the quiz knobs. TOML zero values are treated as
// unset and replaced by defaults, so skip_budget = 0 becomes the
// default budget rather than a no-skip game.
type GameConfig struct {
	RoundDuration   int `toml:"round_duration"`   // seconds per round
	RevealDwell     int `toml:"reveal_dwell"`     // seconds the answer is shown
	RequestedCount  int `toml:"requested_count"`  // tracks per session
	SkipBudget      int `toml:"skip_budget"`      // skips per session
	SuggestionLimit int `toml:"suggestion_limit"` // max autocomplete entries
}

// MultiplayerConfig holds multiplayer server settings.
type MultiplayerConfig struct {
	ServerURL string `toml:"server_url"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
