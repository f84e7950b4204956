package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"adnote/api/internal/config"
	"adnote/api/internal/logging"
)

var (
	verbose bool

	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "notes-api",
	Short: "Per-user rich text notes over HTTP",
	Long: `notes-api serves the notes editor backend: an owner scoped note
repository in Postgres behind identity provider sessions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if verbose {
			loaded.LogLevel = "debug"
		}
		cfg = loaded
		logger = logging.Setup(cfg.Env, cfg.LogLevel)
		return nil
	},
}

// Execute runs the command line. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
