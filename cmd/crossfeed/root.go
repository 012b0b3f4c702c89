// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/crossfeed/internal/config"
	"github.com/tomtom215/crossfeed/internal/database"
	"github.com/tomtom215/crossfeed/internal/logging"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	dbPath     string
	driver     string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "crossfeed",
		Short:         "Cross-platform content preference engine",
		Long:          "Crossfeed learns what you like from YouTube and news interactions and ranks new items on both platforms.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: config.yaml, then /etc/crossfeed/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "database path (overrides CROSSFEED_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&flags.driver, "driver", "", "storage engine: sqlite or duckdb (overrides CROSSFEED_DB_DRIVER)")

	rootCmd.AddCommand(newServeCmd(flags))
	rootCmd.AddCommand(newPurgeCmd(flags))
	rootCmd.AddCommand(newStatsCmd(flags))
	rootCmd.AddCommand(newMigrateCmd(flags))

	return rootCmd
}

// loadConfig layers the command-line overrides on top of the loaded
// configuration and initialises logging.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFrom(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if flags.dbPath != "" {
		cfg.Database.Path = flags.dbPath
	}
	if flags.driver != "" {
		cfg.Database.Driver = flags.driver
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	return cfg, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	return database.Open(ctx, database.Config{
		Driver:      cfg.Database.Driver,
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.Database.BusyTimeout,
		MaxMemory:   cfg.Database.MaxMemory,
		Threads:     cfg.Database.Threads,
	})
}

func closeDatabase(db *database.DB) {
	if err := db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
