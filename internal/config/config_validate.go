// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/crossfeed/internal/logging"
)

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateAux(); err != nil {
		return err
	}
	if err := c.validateRetention(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "sqlite", "duckdb":
	default:
		return fmt.Errorf("CROSSFEED_DB_DRIVER must be sqlite or duckdb, got %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("CROSSFEED_DB_PATH is required")
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("CROSSFEED_DB_BUSY_TIMEOUT must not be negative")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

func (c *Config) validateScoring() error {
	if c.Scoring.AuxWeight < 0 {
		return fmt.Errorf("AUX_WEIGHT must not be negative, got %v", c.Scoring.AuxWeight)
	}
	return nil
}

// validateAux only checks the HTTP scorer settings when it is enabled.
func (c *Config) validateAux() error {
	if !c.Aux.Enabled {
		return nil
	}
	if c.Aux.URL == "" {
		return fmt.Errorf("AUX_SCORER_URL is required when AUX_SCORER_ENABLED=true")
	}
	u, err := url.Parse(c.Aux.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("AUX_SCORER_URL must be an http(s) URL, got %q", c.Aux.URL)
	}
	if c.Aux.Timeout <= 0 {
		return fmt.Errorf("AUX_SCORER_TIMEOUT must be positive")
	}
	if c.Aux.RatePerSecond <= 0 {
		return fmt.Errorf("AUX_SCORER_RATE_PER_SECOND must be positive")
	}
	if c.Aux.Burst < 1 {
		return fmt.Errorf("AUX_SCORER_BURST must be at least 1")
	}
	return nil
}

func (c *Config) validateRetention() error {
	if c.Retention.DaysToKeep < 0 {
		return fmt.Errorf("RETENTION_DAYS must not be negative, got %d", c.Retention.DaysToKeep)
	}
	if c.Retention.Enabled && c.Retention.Interval <= 0 {
		return fmt.Errorf("RETENTION_INTERVAL must be positive when retention is enabled")
	}
	return nil
}

func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if !c.Server.RateLimitDisabled && (c.Server.RateLimitRequests < 1 || c.Server.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive unless DISABLE_RATE_LIMIT=true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a recognised level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
