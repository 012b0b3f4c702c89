// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/crossfeed/internal/logging"
)

// Migration is one versioned schema step. Apply runs inside a write
// transaction; returning applied=false leaves the version unrecorded so the
// step is retried on the next open.
type Migration struct {
	Version     int
	Name        string
	Description string
	Apply       func(ctx context.Context, tx *sql.Tx, d Dialect) (applied bool, err error)
}

// AppliedMigration is a row of schema_migrations.
type AppliedMigration struct {
	Version   int
	Name      string
	AppliedAt time.Time
}

const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	applied_at DOUBLE NOT NULL
)`

// Migrations must be append-only once released.
var migrations = []Migration{
	{
		Version:     1,
		Name:        "unified_schema",
		Description: "Create unified cross-platform tables and indexes",
		Apply:       createUnifiedSchema,
	},
	{
		Version:     2,
		Name:        "legacy_copy_forward",
		Description: "Copy rows from the single-platform schema into the unified tables",
		Apply:       copyLegacyRows,
	},
}

func createUnifiedSchema(ctx context.Context, tx *sql.Tx, d Dialect) (bool, error) {
	for _, stmt := range schemaTables {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return false, fmt.Errorf("create table: %w", err)
		}
	}
	if !d.secondaryIndexes {
		return true, nil
	}
	for _, stmt := range schemaIndexes {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return false, fmt.Errorf("create index: %w", err)
		}
	}
	return true, nil
}

// copyLegacyRows is a no-op (and stays unrecorded) when no legacy table is
// present. Legacy tables are left in place.
func copyLegacyRows(ctx context.Context, tx *sql.Tx, d Dialect) (bool, error) {
	present := make(map[string]bool, len(legacyTables))
	for _, name := range legacyTables {
		ok, err := tableExists(ctx, tx, d, name)
		if err != nil {
			return false, err
		}
		present[name] = ok
	}
	if !present["videos"] && !present["channel_scores"] {
		return false, nil
	}

	for _, c := range legacyCopies {
		if !present[c.source] {
			continue
		}
		res, err := tx.ExecContext(ctx, c.sql)
		if err != nil {
			return false, fmt.Errorf("copy %s: %w", c.source, err)
		}
		n, _ := res.RowsAffected()
		logging.Info().Str("table", c.source).Int64("rows", n).Msg("Copied legacy rows")
	}
	return true, nil
}

// Migrate creates schema_migrations and applies every pending migration,
// each in its own write transaction.
func (db *DB) Migrate(ctx context.Context) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, schemaMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.AppliedMigrations(ctx)
	if err != nil {
		return err
	}
	done := make(map[int]bool, len(applied))
	for _, m := range applied {
		done[m.Version] = true
	}

	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		err := db.WriteTx(ctx, "migrate", func(tx *sql.Tx) error {
			ok, err := m.Apply(ctx, tx, db.dialect)
			if err != nil || !ok {
				return err
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name, description, applied_at) VALUES (?, ?, ?, ?)`,
				m.Version, m.Name, m.Description, float64(time.Now().Unix()))
			if err == nil {
				logging.Info().Int("version", m.Version).Str("name", m.Name).Msg("Applied migration")
			}
			return err
		})
		if err != nil {
			return fmt.Errorf("migration v%d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// AppliedMigrations lists recorded migrations in version order.
func (db *DB) AppliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT version, name, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer closeWithLog(rows, "migration rows")

	var out []AppliedMigration
	for rows.Next() {
		var m AppliedMigration
		var at float64
		if err := rows.Scan(&m.Version, &m.Name, &at); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		m.AppliedAt = time.Unix(int64(at), 0).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

// SchemaVersion returns the highest applied migration version.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := db.conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// LegacyTables returns the legacy single-platform tables still present.
// They are kept after migration so operators can drop them once satisfied.
func (db *DB) LegacyTables(ctx context.Context) ([]string, error) {
	var found []string
	for _, name := range legacyTables {
		ok, err := db.TableExists(ctx, name)
		if err != nil {
			return nil, err
		}
		if ok {
			found = append(found, name)
		}
	}
	return found, nil
}
