// Package main provides the phraser CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"harshagw/phraser/internal/config"
	"harshagw/phraser/internal/diag"
	"harshagw/phraser/internal/library"
)

var (
	// Global flags
	dir      string
	logLevel string

	settings config.Settings
	logger   = logr.Discard()
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "phraser",
		Short: "Detect configured phrases in short texts",
		Long: `phraser cleans text (HTML entities, case folding, destuttering),
tokenizes it and reports every occurrence of each configured phrase.

Phrases and the lexicon live in a workspace directory (--dir or PHRASER_DIR).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			settings, err = config.New()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dir") {
				settings.Dir = dir
			}
			if cmd.Flags().Changed("log-level") {
				settings.LogLevel = logLevel
			}
			logger, err = diag.NewLogger(settings.LogLevel)
			return err
		},
	}

	rootCmd.PersistentFlags().StringVarP(&dir, "dir", "d", "", "Workspace directory (default $PHRASER_DIR or ./phraser_data)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: error, warn, info, debug, trace")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(phraseCmd())
	rootCmd.AddCommand(lexiconCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(replCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openLibrary() (*library.Library, error) {
	cfg := library.DefaultConfig(settings.Dir)
	cfg.Logger = logger.WithName("library")
	cfg.HistoryLimit = settings.HistoryLimit
	return library.Open(cfg)
}
