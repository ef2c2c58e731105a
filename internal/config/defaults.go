package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL: "http://localhost:8000",
		},
		Game: GameConfig{
			RoundDuration:   30,
			RevealDwell:     3,
			RequestedCount:  10,
			SkipBudget:      5,
			SuggestionLimit: 5,
		},
		TUI: TUIConfig{
			Theme: "auto",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults. A zero is
// indistinguishable from an unset key, so an explicit 0 in the file is
// also replaced.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Catalog
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = d.Catalog.BaseURL
	}

	// Game
	if c.Game.RoundDuration == 0 {
		c.Game.RoundDuration = d.Game.RoundDuration
	}
	if c.Game.RevealDwell == 0 {
		c.Game.RevealDwell = d.Game.RevealDwell
	}
	if c.Game.RequestedCount == 0 {
		c.Game.RequestedCount = d.Game.RequestedCount
	}
	if c.Game.SkipBudget == 0 {
		c.Game.SkipBudget = d.Game.SkipBudget
	}
	if c.Game.SuggestionLimit == 0 {
		c.Game.SuggestionLimit = d.Game.SuggestionLimit
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
