// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package database

import (
	"fmt"
	"net/url"
	"runtime"
	"strconv"
	"time"
)

// Dialect holds the few statements that differ between engines. Everything
// else (DDL, upserts, INSERT OR IGNORE copies) is written in the SQL subset
// both SQLite and DuckDB accept.
type Dialect struct {
	Name       string
	DriverName string

	tableExistsSQL string
	compactSQL     string

	// secondaryIndexes is false for DuckDB, which refuses ON CONFLICT DO
	// UPDATE on indexed columns and prunes scans with zonemaps anyway.
	secondaryIndexes bool
}

var (
	// SQLite is the default engine. Several processes may share one file;
	// writers wait on the engine lock for up to the configured busy timeout.
	SQLite = Dialect{
		Name:             "sqlite",
		DriverName:       "sqlite",
		tableExistsSQL:   `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
		compactSQL:       `VACUUM`,
		secondaryIndexes: true,
	}

	// DuckDB allows a single read-write process per file.
	DuckDB = Dialect{
		Name:           "duckdb",
		DriverName:     "duckdb",
		tableExistsSQL: `SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?`,
		compactSQL:     `CHECKPOINT`,
	}
)

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case "", SQLite.Name:
		return SQLite, nil
	case DuckDB.Name:
		return DuckDB, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", name)
	}
}

// DSN builds the driver connection string for cfg.
func (d Dialect) DSN(cfg Config) string {
	switch d.Name {
	case DuckDB.Name:
		threads := cfg.Threads
		if threads <= 0 {
			threads = runtime.NumCPU()
		}
		maxMem := cfg.MaxMemory
		if maxMem == "" {
			maxMem = "512MB"
		}
		return fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s", cfg.Path, threads, maxMem)
	default:
		busy := cfg.BusyTimeout
		if busy <= 0 {
			busy = DefaultBusyTimeout
		}
		q := url.Values{}
		q.Add("_pragma", "busy_timeout("+strconv.FormatInt(busy.Milliseconds(), 10)+")")
		q.Add("_pragma", "journal_mode(WAL)")
		q.Add("_pragma", "synchronous(NORMAL)")
		q.Set("_txlock", "immediate")
		return "file:" + cfg.Path + "?" + q.Encode()
	}
}

// DefaultBusyTimeout is how long a SQLite writer waits for another
// process's write lock.
const DefaultBusyTimeout = 30 * time.Second
