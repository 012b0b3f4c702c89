// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/crossfeed/internal/models"
)

func newStatsCmd(flags *globalFlags) *cobra.Command {
	var platform string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print ledger statistics as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := models.Platform(platform)
			if p != "" && !p.Valid() {
				return fmt.Errorf("--platform must be youtube or news, got %q", platform)
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer closeDatabase(db)

			c, err := buildComponents(db, cfg)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), c.engine.GetStats(cmd.Context(), p))
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "", "youtube or news (default: both)")
	return cmd
}
