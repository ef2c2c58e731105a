package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pverge/blindtest/internal/config"
	apperrors "github.com/pverge/blindtest/internal/errors"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "blindtest",
	Short: "A timed music-guessing game for your terminal",
	Long: `Blindtest plays tracks from a playlist or genre and races you against
the clock: type the title or artist before time runs out, and earn a
speed bonus for quick answers.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.blindtestrc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, apperrors.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}

// logf writes a diagnostic line to stderr when --verbose is set.
func logf(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
