package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/agentstrap/internal/adapters/logging"
	"github.com/felixgeelhaar/agentstrap/internal/domain/config"
	"github.com/felixgeelhaar/agentstrap/internal/ports"
	"github.com/felixgeelhaar/agentstrap/internal/tui"
)

// Global flags
var (
	cfgFile  string
	verbose  bool
	jsonLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "agentstrap",
	Short: "Bootstrap installer for the computer use agent",
	Long: `Agentstrap installs the computer use agent on a machine whose software
environment is unknown in advance.

It probes the host once, orders the known installation methods by cost,
runs the cheapest eligible one, and falls back deterministically until the
agent is installed or every method is exhausted.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
	RunE:          runInstall,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		return tui.ExitFailedAll
	}
	return lastExitCode
}

// lastExitCode carries the run's terminal exit status out of RunE, which
// can only return an error.
var lastExitCode int

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "agentstrap.yaml", "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "JSON log output")

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the logger the persistent flags ask for.
func newLogger() ports.Logger {
	opts := []logging.Option{}
	if verbose {
		opts = append(opts, logging.WithLevel(ports.LevelDebug))
	}
	if jsonLogs {
		opts = append(opts, logging.WithJSONFormat(true))
	}
	return logging.NewConsoleLogger(opts...)
}

// loadConfig reads the configured file, falling back to defaults when it
// does not exist.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// formatError returns a user-friendly error message. Verbose mode adds the
// underlying technical error.
func formatError(err error) string {
	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

func printError(err error) {
	printErrorTo(os.Stderr, err)
}

func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}
