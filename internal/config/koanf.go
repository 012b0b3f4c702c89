// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/crossfeed/config.yaml",
	"/etc/crossfeed/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:      "sqlite",
			Path:        "crossfeed.db",
			BusyTimeout: 30 * time.Second,
			MaxMemory:   "512MB",
			Threads:     0,
		},
		Scoring: ScoringConfig{
			AuxWeight: 0,
		},
		Aux: AuxConfig{
			Enabled:          false,
			URL:              "",
			Timeout:          2 * time.Second,
			RatePerSecond:    20,
			Burst:            5,
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
		},
		Retention: RetentionConfig{
			Enabled:      true,
			DaysToKeep:   90,
			Interval:     24 * time.Hour,
			RunOnStartup: false,
		},
		Server: ServerConfig{
			Enabled:         true,
			Host:            "127.0.0.1",
			Port:            9464,
			ShutdownTimeout: 10 * time.Second,

			CORSOrigins:       []string{},
			RateLimitRequests: 600,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from defaults, the config file found by
// findConfigFile, and the environment, then validates it.
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when they arrive as
// a single string from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated string values of the paths in
// sliceConfigPaths. Values already loaded as lists (YAML) are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"crossfeed_db_driver":       "database.driver",
	"crossfeed_db_path":         "database.path",
	"crossfeed_db_busy_timeout": "database.busy_timeout",
	"duckdb_max_memory":         "database.max_memory",
	"duckdb_threads":            "database.threads",

	"aux_weight": "scoring.aux_weight",

	"aux_scorer_enabled":           "aux.enabled",
	"aux_scorer_url":               "aux.url",
	"aux_scorer_timeout":           "aux.timeout",
	"aux_scorer_rate_per_second":   "aux.rate_per_second",
	"aux_scorer_burst":             "aux.burst",
	"aux_scorer_failure_threshold": "aux.failure_threshold",
	"aux_scorer_open_timeout":      "aux.open_timeout",

	"retention_enabled":        "retention.enabled",
	"retention_days":           "retention.days_to_keep",
	"retention_interval":       "retention.interval",
	"retention_run_on_startup": "retention.run_on_startup",

	"server_enabled":          "server.enabled",
	"server_host":             "server.host",
	"server_port":             "server.port",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":            "server.cors_origins",
	"rate_limit_requests":     "server.rate_limit_requests",
	"rate_limit_window":       "server.rate_limit_window",
	"disable_rate_limit":      "server.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path, or
// "" to skip it.
//
// Examples:
//   - CROSSFEED_DB_PATH -> database.path
//   - RETENTION_DAYS -> retention.days_to_keep
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
