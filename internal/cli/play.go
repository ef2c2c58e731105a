package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pverge/blindtest/internal/catalog"
	"github.com/pverge/blindtest/internal/core"
	"github.com/pverge/blindtest/internal/game"
	"github.com/pverge/blindtest/internal/playback"
	"github.com/pverge/blindtest/internal/tui"
	"github.com/pverge/blindtest/internal/wizard"
)

var (
	playGenre   string
	playCount   int
	playNoAudio bool
)

var playCmd = &cobra.Command{
	Use:   "play [playlist]",
	Short: "Start a solo game",
	Long: `Start a solo guessing game from a playlist or genre.
Without arguments, an interactive picker asks where the tracks
should come from.

Examples:
  blindtest play                                        # Interactive source picker
  blindtest play https://open.spotify.com/playlist/xxx  # Play from a playlist
  blindtest play --genre rock                           # Play from a genre
  blindtest play --count 15 --genre pop                 # Longer game`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playGenre, "genre", "", "Pick tracks from a genre instead of a playlist")
	playCmd.Flags().IntVar(&playCount, "count", 0, "Number of tracks per game (default from config)")
	playCmd.Flags().BoolVar(&playNoAudio, "no-audio", false, "Run on the timer alone, without playback")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	source, err := resolveSource(args)
	if err != nil {
		return err
	}
	if source == "" {
		return fmt.Errorf("no track source selected")
	}

	count := cfg.Game.RequestedCount
	if playCount > 0 {
		count = playCount
	}

	client := catalog.New(cfg.Catalog.BaseURL)
	client.SetVerbose(Verbose(), logf)

	tracks, err := client.FetchTracks(ctx, source, count)
	if err != nil {
		return err
	}

	session := game.NewSession(game.Config{
		RoundDuration:   cfg.Game.RoundDuration,
		RevealDwell:     time.Duration(cfg.Game.RevealDwell) * time.Second,
		RequestedCount:  count,
		SkipBudget:      cfg.Game.SkipBudget,
		SuggestionLimit: cfg.Game.SuggestionLimit,
	}, buildPlayback())
	defer session.Close()

	if Verbose() {
		session.SetLogFunc(logf)
	}

	if err := session.Start(ctx, tracks); err != nil {
		return err
	}

	model := tui.NewGameModel(session, cfg.Game.RoundDuration)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("game UI failed: %w", err)
	}

	snap := session.Snapshot()
	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"score":  snap.Score,
			"rounds": snap.Round,
			"phase":  snap.Phase.String(),
		})
	}
	fmt.Printf("Final score: %d\n", snap.Score)
	return nil
}

// resolveSource picks the catalog source from flags, the positional
// argument, or the interactive wizard.
func resolveSource(args []string) (string, error) {
	if playGenre != "" {
		return sourceRef(core.SourceGenre, playGenre), nil
	}
	if len(args) > 0 {
		return args[0], nil
	}
	if !wizard.IsTerminal() {
		return "", fmt.Errorf("no playlist given. Pass one as an argument or use --genre")
	}

	kind, ref, err := wizard.PromptSource()
	if err != nil {
		return "", err
	}
	if ref == "" {
		return "", nil
	}
	return sourceRef(kind, ref), nil
}

// sourceRef encodes a source for the catalog's source query parameter.
// Playlist references pass through unchanged; genres get a prefix.
func sourceRef(kind core.Source, ref string) string {
	if kind == core.SourceGenre {
		return "genre:" + ref
	}
	return ref
}

func buildPlayback() core.Playback {
	if playNoAudio || cfg.Playback.DeviceURL == "" {
		return playback.Null{}
	}
	return playback.NewRemote(cfg.Playback.DeviceURL)
}
