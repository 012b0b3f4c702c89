// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

// Package config loads Crossfeed configuration from layered sources using
// Koanf v2: built-in defaults, an optional YAML file, then environment
// variables (highest priority).
//
// Example config.yaml:
//
//	database:
//	  driver: sqlite
//	  path: /data/crossfeed.db
//	scoring:
//	  aux_weight: 0.0
//	retention:
//	  enabled: true
//	  days_to_keep: 90
//	  interval: 24h
//	server:
//	  port: 9464
//	  cors_origins: [http://localhost:3000]
package config

import "time"

// Config is the root configuration.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Scoring   ScoringConfig   `koanf:"scoring"`
	Aux       AuxConfig       `koanf:"aux"`
	Retention RetentionConfig `koanf:"retention"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DatabaseConfig selects and tunes the storage engine.
type DatabaseConfig struct {
	// Driver is "sqlite" (default, multi-process safe) or "duckdb".
	Driver string `koanf:"driver"`
	Path   string `koanf:"path"`

	// BusyTimeout bounds how long a writer waits for another process's
	// write lock before failing.
	BusyTimeout time.Duration `koanf:"busy_timeout"`

	MaxMemory string `koanf:"max_memory"` // DuckDB only
	Threads   int    `koanf:"threads"`    // DuckDB only, 0 = NumCPU
}

// ScoringConfig tunes the read path.
type ScoringConfig struct {
	// AuxWeight multiplies the auxiliary scorer's output. 0 disables it.
	AuxWeight float64 `koanf:"aux_weight"`
}

// AuxConfig configures the HTTP auxiliary scorer.
type AuxConfig struct {
	Enabled          bool          `koanf:"enabled"`
	URL              string        `koanf:"url"`
	Timeout          time.Duration `koanf:"timeout"`
	RatePerSecond    float64       `koanf:"rate_per_second"`
	Burst            int           `koanf:"burst"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
	OpenTimeout      time.Duration `koanf:"open_timeout"`
}

// RetentionConfig configures the scheduled purge service.
type RetentionConfig struct {
	Enabled      bool          `koanf:"enabled"`
	DaysToKeep   int           `koanf:"days_to_keep"`
	Interval     time.Duration `koanf:"interval"`
	RunOnStartup bool          `koanf:"run_on_startup"`
}

// ServerConfig holds the HTTP server settings: the JSON API under /api/v1
// plus /metrics and /healthz.
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests per RateLimitWindow per client IP on /api/v1.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
