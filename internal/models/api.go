// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package models

import "time"

// APIResponse is the envelope of every JSON API response.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp     time.Time `json:"timestamp"`
	QueryTimeMS   int64     `json:"query_time_ms,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// APIError is a machine-readable code plus a message. Validation failures
// list the offending fields in Details.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RankRequest is the body of POST /api/v1/rank.
type RankRequest struct {
	Platform Platform `json:"platform" validate:"required,platform"`
	Limit    int      `json:"limit" validate:"gte=0"`
	Items    []Item   `json:"items" validate:"max=1000"`
}

// RetractRequest is the body of DELETE /api/v1/interactions.
type RetractRequest struct {
	ContentID string          `json:"content_id" validate:"required"`
	Platform  Platform        `json:"platform" validate:"required,platform"`
	Type      InteractionType `json:"interaction_type" validate:"required,interaction_type"`
}

// HealthStatus is the body of GET /healthz.
type HealthStatus struct {
	Status            string  `json:"status"`
	DatabaseConnected bool    `json:"database_connected"`
	Driver            string  `json:"driver"`
	SchemaVersion     int     `json:"schema_version"`
	LegacyTables      int     `json:"legacy_tables"`
	Uptime            float64 `json:"uptime_seconds"`
}
