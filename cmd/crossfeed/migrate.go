// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type migrationReport struct {
	SchemaVersion int                `json:"schema_version"`
	Applied       []appliedMigration `json:"applied"`
	LegacyTables  []string           `json:"legacy_tables"`
}

type appliedMigration struct {
	Version   int       `json:"version"`
	Name      string    `json:"name"`
	AppliedAt time.Time `json:"applied_at"`
}

// newMigrateCmd opens the database, which applies pending migrations, and
// reports the resulting schema state.
func newMigrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and report the schema state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer closeDatabase(db)

			ctx := cmd.Context()
			report := migrationReport{Applied: []appliedMigration{}, LegacyTables: []string{}}
			if report.SchemaVersion, err = db.SchemaVersion(ctx); err != nil {
				return fmt.Errorf("schema version: %w", err)
			}
			applied, err := db.AppliedMigrations(ctx)
			if err != nil {
				return fmt.Errorf("applied migrations: %w", err)
			}
			for _, m := range applied {
				report.Applied = append(report.Applied, appliedMigration{
					Version:   m.Version,
					Name:      m.Name,
					AppliedAt: m.AppliedAt,
				})
			}
			legacy, err := db.LegacyTables(ctx)
			if err != nil {
				return fmt.Errorf("legacy tables: %w", err)
			}
			report.LegacyTables = append(report.LegacyTables, legacy...)

			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
}
