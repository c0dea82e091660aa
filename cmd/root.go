package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/refhistory/internal/config"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// logger is built from the configured level in PersistentPreRunE.
var logger = slog.Default()

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "refhistory",
	Short: "Record, undo and redo changes to a tracked value",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load and merge config files.
		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)

		// The flag wins over the config file.
		name := cfg.LogLevel
		if logLevel != "" {
			name = logLevel
		}
		level, err := config.ParseLogLevel(name)
		if err != nil {
			return err
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}
