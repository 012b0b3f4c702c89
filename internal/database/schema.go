// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package database

// Unified schema. Column types are chosen so the same statements run on
// SQLite and DuckDB: DOUBLE (not REAL, which is 4 bytes in DuckDB) for
// scores and Unix-second timestamps. No foreign keys are declared; DuckDB
// rejects updates to rows that are referenced, and retention removes
// orphans explicitly.
var schemaTables = []string{
	`CREATE TABLE IF NOT EXISTS content (
		content_id TEXT PRIMARY KEY,
		platform TEXT NOT NULL,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		content_type TEXT NOT NULL,
		first_seen_timestamp DOUBLE NOT NULL,
		last_updated DOUBLE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS unified_interactions (
		content_id TEXT NOT NULL,
		platform TEXT NOT NULL,
		interaction_type TEXT NOT NULL,
		interaction_subtype TEXT,
		timestamp DOUBLE NOT NULL,
		PRIMARY KEY (content_id, interaction_type)
	)`,
	`CREATE TABLE IF NOT EXISTS source_scores (
		source_name TEXT NOT NULL,
		platform TEXT NOT NULL,
		score DOUBLE NOT NULL DEFAULT 0.0,
		cross_platform_boost DOUBLE NOT NULL DEFAULT 0.0,
		last_updated DOUBLE NOT NULL,
		PRIMARY KEY (source_name, platform)
	)`,
	`CREATE TABLE IF NOT EXISTS unified_keyword_scores (
		keyword TEXT PRIMARY KEY,
		score DOUBLE NOT NULL DEFAULT 0.0,
		last_updated DOUBLE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cross_correlations (
		keyword1 TEXT NOT NULL,
		keyword2 TEXT NOT NULL,
		platform1 TEXT NOT NULL,
		platform2 TEXT NOT NULL,
		correlation_strength DOUBLE NOT NULL DEFAULT 0.0,
		last_updated DOUBLE NOT NULL,
		PRIMARY KEY (keyword1, keyword2, platform1, platform2)
	)`,
	`CREATE TABLE IF NOT EXISTS unified_time_patterns (
		platform TEXT NOT NULL,
		hour INTEGER NOT NULL CHECK (hour >= 0 AND hour <= 23),
		count INTEGER NOT NULL DEFAULT 0,
		last_updated DOUBLE NOT NULL,
		PRIMARY KEY (platform, hour)
	)`,
}

var schemaIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_content_platform ON content(platform)`,
	`CREATE INDEX IF NOT EXISTS idx_content_author ON content(author)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_type ON unified_interactions(interaction_type)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_platform ON unified_interactions(platform)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_timestamp ON unified_interactions(timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_source_scores_score ON source_scores(score DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_keyword_scores_score ON unified_keyword_scores(score DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_correlations_strength ON cross_correlations(correlation_strength DESC)`,
}

// legacyTables are the tables of the single-platform schema. Any of them
// being present triggers the copy-forward migration.
var legacyTables = []string{"videos", "user_interactions", "channel_scores", "keyword_scores", "time_patterns"}

// legacyCopies moves legacy rows into the unified tables. INSERT OR IGNORE
// keeps rows that already exist, so rerunning is harmless. Each copy only
// runs when its source table exists.
var legacyCopies = []struct {
	source string
	sql    string
}{
	{"videos", `INSERT OR IGNORE INTO content
		(content_id, platform, title, author, content_type, first_seen_timestamp, last_updated)
		SELECT video_id, 'youtube', title, author, 'video', first_seen_timestamp, last_updated
		FROM videos`},
	{"user_interactions", `INSERT OR IGNORE INTO unified_interactions
		(content_id, platform, interaction_type, interaction_subtype, timestamp)
		SELECT video_id, 'youtube',
			CASE WHEN interaction_type = 'watched' THEN 'consumed' ELSE interaction_type END,
			interaction_subtype, timestamp
		FROM user_interactions`},
	{"channel_scores", `INSERT OR IGNORE INTO source_scores
		(source_name, platform, score, cross_platform_boost, last_updated)
		SELECT channel_name, 'youtube', score, 0.0, last_updated
		FROM channel_scores`},
	{"keyword_scores", `INSERT OR IGNORE INTO unified_keyword_scores
		(keyword, score, last_updated)
		SELECT keyword, score, last_updated
		FROM keyword_scores`},
	{"time_patterns", `INSERT OR IGNORE INTO unified_time_patterns
		(platform, hour, count, last_updated)
		SELECT 'youtube', hour, count, last_updated
		FROM time_patterns`},
}
