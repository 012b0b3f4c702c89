// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

// Package database owns the preference ledger's storage: connection setup
// for SQLite (default) or DuckDB, the unified schema, versioned migrations
// including the copy-forward from the legacy single-platform schema, and
// the serialized write transaction used by every mutating operation.
//
// Writers go through WriteTx, which holds a process-local mutex for the
// whole transaction. Across processes the engine's own lock applies; SQLite
// connections begin transactions IMMEDIATE with a busy timeout, so a blocked
// writer fails with ErrLockTimeout instead of waiting forever. Readers use
// Conn directly and never take the mutex.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "modernc.org/sqlite"

	"github.com/tomtom215/crossfeed/internal/logging"
	"github.com/tomtom215/crossfeed/internal/metrics"
)

// Config describes how to open the database.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration
	MaxMemory   string
	Threads     int
}

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is a handle on the preference ledger.
type DB struct {
	conn    *sql.DB
	dialect Dialect
	path    string

	writeMu sync.Mutex
	closed  atomic.Bool
}

// Open connects to cfg.Path, creating parent directories, and brings the
// schema up to date.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		return nil, errors.New("database path is required")
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open(dialect.DriverName, dialect.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name, err)
	}

	db := &DB{conn: conn, dialect: dialect, path: cfg.Path}
	if err := db.Ping(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logging.Info().
		Str("driver", dialect.Name).
		Str("path", cfg.Path).
		Msg("Preference database ready")
	return db, nil
}

// New wraps an existing connection without touching the schema. Tests use
// it with go-sqlmock.
func New(conn *sql.DB, dialect Dialect) *DB {
	return &DB{conn: conn, dialect: dialect}
}

// Conn returns the underlying pool for read queries.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Dialect returns the engine dialect.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Path returns the database file path ("" for wrapped connections).
func (db *DB) Path() string {
	return db.path
}

// Ping checks connectivity.
func (db *DB) Ping(ctx context.Context) error {
	if db.closed.Load() {
		return ErrClosed
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	return db.conn.PingContext(ctx)
}

// Close waits for any in-flight write and closes the pool. Safe to call
// twice.
func (db *DB) Close() error {
	if db.closed.Swap(true) {
		return nil
	}
	db.writeMu.Lock()
	defer db.writeMu.Unlock()
	return db.conn.Close()
}

// WriteTx runs fn inside one write transaction while holding the
// process-local write lock. fn's error, a failed commit, or a panic rolls
// the transaction back; the lock is released on every path. Returned errors
// are *StorageError.
//
// fn must not call WriteTx again. Helpers that need to write take the
// *sql.Tx they are given.
func (db *DB) WriteTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) (err error) {
	start := time.Now()
	defer func() {
		kind := ""
		var se *StorageError
		if errors.As(err, &se) {
			kind = string(se.Kind)
		}
		metrics.RecordWriteTx(op, time.Since(start), kind)
	}()

	if db.closed.Load() {
		return &StorageError{Op: op, Kind: KindClosed, Err: ErrClosed}
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return Wrap(op, err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logging.Warn().Str("operation", op).Err(rbErr).Msg("Rollback failed")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return Wrap(op, err)
	}
	if err = tx.Commit(); err != nil {
		return Wrap(op, err)
	}
	committed = true
	return nil
}

// Compact reclaims space after large deletes (VACUUM or CHECKPOINT). It runs
// outside any transaction but still under the write lock.
func (db *DB) Compact(ctx context.Context) error {
	if db.closed.Load() {
		return &StorageError{Op: "compact", Kind: KindClosed, Err: ErrClosed}
	}
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	if _, err := db.conn.ExecContext(ctx, db.dialect.compactSQL); err != nil {
		return Wrap("compact", err)
	}
	return nil
}

// TableExists reports whether a table named name exists.
func (db *DB) TableExists(ctx context.Context, name string) (bool, error) {
	return tableExists(ctx, db.conn, db.dialect, name)
}

func tableExists(ctx context.Context, q Querier, d Dialect, name string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, d.tableExistsSQL, name).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return n > 0, nil
}

// ensureContext applies a 30s deadline when ctx has none.
func ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 30*time.Second)
}
