// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/crossfeed/internal/database"
	"github.com/tomtom215/crossfeed/internal/recommend"
)

func newPurgeCmd(flags *globalFlags) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete stale ledger rows once and print the counts",
		Long: "Deletes consumed interactions older than --days, orphaned content, " +
			"non-positive scores and stale weak correlations, then compacts the " +
			"store. Suited to cron when the built-in schedule is disabled.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.Retention.DaysToKeep
			}
			if days < 0 {
				return fmt.Errorf("--days must be non-negative, got %d", days)
			}

			db, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer closeDatabase(db)

			result, err := recommend.NewRetentionManager(db).Purge(cmd.Context(), days)
			var se *database.StorageError
			if err != nil && !(errors.As(err, &se) && se.Op == "compact") {
				return fmt.Errorf("purge: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().IntVar(&days, "days", 90, "age in days past which rows are deleted (default: retention.days_to_keep)")
	return cmd
}
