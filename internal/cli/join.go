package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pverge/blindtest/internal/multiplayer"
	"github.com/pverge/blindtest/internal/tui"
)

var (
	joinServer string
	joinName   string
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join a multiplayer game",
	Long: `Connect to a multiplayer game server. Rounds, prompts and scores are
driven by the server; press 'r' when you are ready and 's' to start
the game once everyone is in.

Examples:
  blindtest join                              # Use the configured server
  blindtest join --server ws://host:8080/game # Connect to a specific server
  blindtest join --name alice                 # Pick a display name`,
	RunE: runJoin,
}

func init() {
	joinCmd.Flags().StringVar(&joinServer, "server", "", "Multiplayer server URL (overrides config)")
	joinCmd.Flags().StringVar(&joinName, "name", "", "Display name (default: a generated id)")
	rootCmd.AddCommand(joinCmd)
}

func runJoin(cmd *cobra.Command, args []string) error {
	serverURL := cfg.Multiplayer.ServerURL
	if joinServer != "" {
		serverURL = joinServer
	}
	if serverURL == "" {
		return fmt.Errorf("no multiplayer server configured. Use --server or set multiplayer.server_url")
	}

	playerID := joinName
	if playerID == "" {
		playerID = "player-" + uuid.NewString()[:8]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := multiplayer.Dial(ctx, serverURL, playerID)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	client.SetLogFunc(logf)

	final, err := tea.NewProgram(tui.NewLobbyModel(client), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("game UI failed: %w", err)
	}

	// Print the terminal score table once the alt screen is gone.
	if m, ok := final.(tui.LobbyModel); ok {
		printFinalScores(m.FinalScores(), playerID)
	}
	return nil
}

func printFinalScores(scores map[string]int, playerID string) {
	if len(scores) == 0 {
		return
	}

	table := NewTable("PLAYER", "SCORE")
	for id, score := range scores {
		label := id
		if id == playerID {
			label = id + " (you)"
		}
		table.Row(label, fmt.Sprintf("%d", score))
	}
	table.Flush()
}
