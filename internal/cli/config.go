package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/pverge/blindtest/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing blindtest configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration values.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a new configuration file with default values.`,
	RunE:  runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  catalog.base_url        Catalog service URL
  playback.device_url     Playback device control URL
  game.round_duration     Seconds per round
  game.reveal_dwell       Seconds the answer stays on screen
  game.requested_count    Tracks per game
  game.skip_budget        Skips per game
  multiplayer.server_url  Multiplayer websocket URL

Examples:
  blindtest config set game.round_duration 20
  blindtest config set multiplayer.server_url ws://localhost:8080/game`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(cfg)
	}

	// Pretty print as TOML
	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	// Write header comment
	_, _ = fmt.Fprintln(f, "# Blindtest Configuration")
	_, _ = fmt.Fprintln(f, "")

	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	if err := encoder.Encode(config.Default()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	} else {
		fmt.Printf("Created config file: %s\n", configPath)
		fmt.Println("\nNext steps:")
		fmt.Println("  1. Point catalog.base_url at your catalog service")
		fmt.Println("  2. Run 'blindtest play' to start a game")
	}

	return nil
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".blindtestrc"
	}

	return filepath.Join(home, ".blindtestrc")
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	configPath := getConfigPath()

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'blindtest config init' first", configPath)
	}

	// Read the current config file as raw TOML
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	var rawConfig map[string]interface{}
	if _, err := toml.Decode(string(data), &rawConfig); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	// Parse the key (e.g., "game.round_duration" -> ["game", "round_duration"])
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return fmt.Errorf("invalid key format. Use 'section.key' (e.g., game.round_duration)")
	}

	section, field := parts[0], parts[1]

	sectionMap, ok := rawConfig[section].(map[string]interface{})
	if !ok {
		sectionMap = make(map[string]interface{})
		rawConfig[section] = sectionMap
	}

	// Convert value to appropriate type based on field
	var typedValue interface{}
	switch key {
	case "game.round_duration", "game.reveal_dwell", "game.requested_count",
		"game.skip_budget", "game.suggestion_limit":
		var intVal int
		if n, err := fmt.Sscanf(value, "%d", &intVal); err != nil || n != 1 {
			return fmt.Errorf("value must be an integer for %s", key)
		}
		typedValue = intVal
	default:
		typedValue = value
	}

	sectionMap[field] = typedValue

	// Write back to file
	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer func() { _ = f.Close() }()

	_, _ = fmt.Fprintln(f, "# Blindtest Configuration")
	_, _ = fmt.Fprintln(f, "")

	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	if err := encoder.Encode(rawConfig); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}
