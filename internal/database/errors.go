// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tomtom215/crossfeed/internal/logging"
)

// Sentinel errors matched by StorageError.Is.
var (
	ErrLockTimeout = errors.New("timed out waiting for database write lock")
	ErrClosed      = errors.New("database is closed")
	ErrConstraint  = errors.New("constraint violation")
)

// ErrorKind classifies a StorageError.
type ErrorKind string

const (
	KindLockTimeout ErrorKind = "lock_timeout"
	KindClosed      ErrorKind = "closed"
	KindConstraint  ErrorKind = "constraint"
	KindIO          ErrorKind = "io"
)

// StorageError is returned by every failed write path operation.
//
//	if errors.Is(err, database.ErrLockTimeout) { retry later }
type StorageError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinel for the error's kind.
func (e *StorageError) Is(target error) bool {
	switch target {
	case ErrLockTimeout:
		return e.Kind == KindLockTimeout
	case ErrClosed:
		return e.Kind == KindClosed
	case ErrConstraint:
		return e.Kind == KindConstraint
	}
	return false
}

// Wrap converts err into a *StorageError for op. Nil stays nil and an
// existing StorageError is returned unchanged.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Kind: classify(err), Err: err}
}

func classify(err error) ErrorKind {
	if errors.Is(err, ErrClosed) || errors.Is(err, sql.ErrConnDone) {
		return KindClosed
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "database is closed"):
		return KindClosed
	case isLockContention(msg):
		return KindLockTimeout
	case strings.Contains(msg, "constraint"):
		return KindConstraint
	default:
		return KindIO
	}
}

// isLockContention recognises SQLite busy errors and DuckDB write conflicts.
func isLockContention(msg string) bool {
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "could not set lock on file") ||
		strings.Contains(msg, "transaction conflict") ||
		strings.Contains(msg, "conflict on update")
}

// closeQuietly closes c in cleanup paths where the error is not actionable.
func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

// closeWithLog closes c and logs a failure.
func closeWithLog(c io.Closer, what string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.Warn().Str("resource", what).Err(err).Msg("Failed to close resource")
	}
}
