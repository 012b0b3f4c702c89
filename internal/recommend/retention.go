// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package recommend

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/crossfeed/internal/database"
	"github.com/tomtom215/crossfeed/internal/logging"
	"github.com/tomtom215/crossfeed/internal/metrics"
	"github.com/tomtom215/crossfeed/internal/models"
)

// DefaultRetentionDays is how much consumption history Purge keeps when the
// caller has no preference.
const DefaultRetentionDays = 90

// weakCorrelation is the strength below which a stale correlation is
// dropped.
const weakCorrelation = 0.1

// RetentionManager removes stale history and worthless scores.
type RetentionManager struct {
	db     *database.DB
	clock  Clock
	logger zerolog.Logger
}

// NewRetentionManager returns a RetentionManager for db.
func NewRetentionManager(db *database.DB, opts ...Option) *RetentionManager {
	o := buildOptions(opts)
	return &RetentionManager{
		db:     db,
		clock:  o.clock,
		logger: logging.WithComponent("retention"),
	}
}

// purgeStep is one DELETE of a purge run. Steps run in order; content
// orphans are only visible after the interaction delete.
type purgeStep struct {
	table string
	sql   string
	args  func(cutoff float64) []any
	count func(r *models.PurgeResult) *int64
}

var purgeSteps = []purgeStep{
	{
		table: "unified_interactions",
		sql:   `DELETE FROM unified_interactions WHERE interaction_type = 'consumed' AND timestamp < ?`,
		args:  func(c float64) []any { return []any{c} },
		count: func(r *models.PurgeResult) *int64 { return &r.Interactions },
	},
	{
		table: "content",
		sql:   `DELETE FROM content WHERE content_id NOT IN (SELECT DISTINCT content_id FROM unified_interactions)`,
		count: func(r *models.PurgeResult) *int64 { return &r.Content },
	},
	{
		table: "source_scores",
		sql:   `DELETE FROM source_scores WHERE score <= 0 AND cross_platform_boost <= 0`,
		count: func(r *models.PurgeResult) *int64 { return &r.Sources },
	},
	{
		table: "unified_keyword_scores",
		sql:   `DELETE FROM unified_keyword_scores WHERE score <= 0`,
		count: func(r *models.PurgeResult) *int64 { return &r.Keywords },
	},
	{
		table: "cross_correlations",
		sql:   `DELETE FROM cross_correlations WHERE last_updated < ? AND correlation_strength < ?`,
		args:  func(c float64) []any { return []any{c, weakCorrelation} },
		count: func(r *models.PurgeResult) *int64 { return &r.Correlations },
	},
}

// Purge deletes consumed interactions older than daysToKeep days, content
// no longer referenced by any interaction, source and keyword scores that
// are not positive, and weak correlations not updated since the cutoff.
// Starred and disliked interactions are never purged. A negative
// daysToKeep selects DefaultRetentionDays; zero purges everything older
// than now.
//
// The deletes share one write transaction. Compaction runs after commit;
// if it fails the error is returned alongside the committed result.
func (m *RetentionManager) Purge(ctx context.Context, daysToKeep int) (models.PurgeResult, error) {
	if daysToKeep < 0 {
		daysToKeep = DefaultRetentionDays
	}

	start := time.Now()
	ctx = logging.EnsureCorrelationID(context.WithoutCancel(ctx))
	cutoff := unixSeconds(m.clock.Now()) - float64(daysToKeep)*secondsPerDay

	var result models.PurgeResult
	err := m.db.WriteTx(ctx, "purge", func(tx *sql.Tx) error {
		result = models.PurgeResult{}
		for _, step := range purgeSteps {
			var args []any
			if step.args != nil {
				args = step.args(cutoff)
			}
			res, err := tx.ExecContext(ctx, step.sql, args...)
			if err != nil {
				return fmt.Errorf("purge %s: %w", step.table, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("purge %s: rows affected: %w", step.table, err)
			}
			*step.count(&result) = n
		}
		return nil
	})
	if err != nil {
		metrics.RecordPurge(nil, err)
		logging.Ctx(ctx).Error().Err(err).Int("days_to_keep", daysToKeep).Msg("Purge failed")
		return models.PurgeResult{}, err
	}
	metrics.RecordPurge(deletedByTable(result), nil)

	if err := m.db.Compact(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Purge committed but compaction failed")
		return result, err
	}
	result.Compacted = true

	m.logger.Info().
		Str("correlation_id", logging.CorrelationIDFromContext(ctx)).
		Int("days_to_keep", daysToKeep).
		Int64("interactions", result.Interactions).
		Int64("content", result.Content).
		Int64("sources", result.Sources).
		Int64("keywords", result.Keywords).
		Int64("correlations", result.Correlations).
		Dur("duration", time.Since(start)).
		Msg("Purge complete")
	return result, nil
}

func deletedByTable(r models.PurgeResult) map[string]int64 {
	out := make(map[string]int64, len(purgeSteps))
	for _, step := range purgeSteps {
		out[step.table] = *step.count(&r)
	}
	return out
}
