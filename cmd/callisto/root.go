package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "callisto",
	Short: "Callisto - CPL pattern parsing front-end",
	Long: `Callisto is an open-source parsing front-end for the CPL pattern
language: literals, ".", alternation, grouping, and counted repetition.

It turns pattern text into structured parse trees, providing:
  - A recursive-descent parser with precise, stable error messages
  - Tree lints with configurable ceilings and strict mode
  - Hot-reloaded pattern catalogs from a directory or git repository
  - Lint-run reports with SQLite storage and retention pruning
  - An optional parse cache and a Prometheus metrics endpoint

For more information, visit: https://github.com/mercator-hq/callisto`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Disable default completion command (we'll add our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = false
}

// Shared helpers

// loadRuntimeConfig resolves the effective configuration for a command.
// A configuration set earlier in the process wins; otherwise the
// --config file is loaded when it exists, and the built-in defaults
// apply when it does not, so ad-hoc commands work without a
// config.yaml on disk.
func loadRuntimeConfig() (*config.Config, error) {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg, nil
	}

	if _, err := os.Stat(cfgFile); err != nil {
		if os.IsNotExist(err) {
			cfg := config.DefaultConfig()
			config.SetConfig(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %q: %w", cfgFile, err)
	}

	if err := config.Initialize(cfgFile); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return config.GetConfig(), nil
}

// setupLogging installs the process logger from configuration. The
// --verbose flag forces debug level regardless of the configured one.
func setupLogging(cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}

	return logging.Setup(logging.Config{
		Level:  level,
		Format: cfg.Logging.Format,
	})
}

// quietLogger builds a logger for one-shot commands where structured
// log lines would drown the command output. It logs warnings and
// errors only, unless --verbose asks for everything.
func quietLogger() *slog.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:  level,
		Format: "text",
	})
	if err != nil {
		return slog.Default()
	}
	return logger
}
