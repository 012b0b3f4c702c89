// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package recommend

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/crossfeed/internal/models"
)

// Stats list sizes.
const (
	topSourcesLimit      = 10
	topKeywordsLimit     = 10
	topCorrelationsLimit = 5
	activeHoursLimit     = 5

	// strongCorrelation is the strength a correlation must exceed to be
	// listed.
	strongCorrelation = 0.5

	unifiedLabel = "unified"
)

// GetStats summarises the ledger for platform, or for both platforms when
// platform is empty. It never fails; on any storage error it logs and
// returns zero counts and empty lists with the label and timestamp set.
func (e *Engine) GetStats(ctx context.Context, platform models.Platform) models.Stats {
	label := unifiedLabel
	if platform != "" {
		label = string(platform)
	}
	empty := models.Stats{
		Platform:        label,
		TopSources:      []models.RankedName{},
		TopKeywords:     []models.RankedName{},
		TopCorrelations: []models.RankedName{},
		ActiveHours:     []models.ActiveHour{},
		LastUpdated:     e.clock.Now(),
	}

	if platform != "" && !platform.Valid() {
		e.logger.Warn().Str("platform", label).Msg("Stats requested for unknown platform")
		return empty
	}

	stats := empty
	if err := e.collectStats(ctx, platform, &stats); err != nil {
		e.logger.Warn().Err(err).Str("platform", label).Msg("Failed to collect stats")
		return empty
	}
	return stats
}

func (e *Engine) collectStats(ctx context.Context, platform models.Platform, s *models.Stats) error {
	q := e.db.Conn()
	filter, args := platformFilter(platform, "WHERE")

	rows, err := q.QueryContext(ctx,
		`SELECT interaction_type, COUNT(*) FROM unified_interactions `+filter+` GROUP BY interaction_type`, args...)
	if err != nil {
		return fmt.Errorf("count interactions: %w", err)
	}
	err = scanRows(rows, func(r *sql.Rows) error {
		var t string
		var n int64
		if err := r.Scan(&t, &n); err != nil {
			return err
		}
		switch models.InteractionType(t) {
		case models.InteractionConsumed:
			s.TotalConsumed = n
		case models.InteractionStarred:
			s.TotalStarred = n
		case models.InteractionDisliked:
			s.TotalDisliked = n
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("count interactions: %w", err)
	}

	andFilter, andArgs := platformFilter(platform, "AND")
	err = q.QueryRowContext(ctx, `
SELECT
	CAST(COALESCE(SUM(CASE WHEN interaction_subtype = 'clicked' THEN 1 ELSE 0 END), 0) AS BIGINT),
	CAST(COALESCE(SUM(CASE WHEN interaction_subtype = 'marked' THEN 1 ELSE 0 END), 0) AS BIGINT)
FROM unified_interactions
WHERE interaction_type = 'consumed' `+andFilter, andArgs...).Scan(&s.ClickedConsumed, &s.MarkedConsumed)
	if err != nil {
		return fmt.Errorf("count consumed subtypes: %w", err)
	}

	// Sums are cast because DuckDB widens integer SUM to HUGEINT. The
	// source ranking expression is repeated rather than aliased in WHERE.
	srcArgs := append([]any{}, andArgs...)
	srcArgs = append(srcArgs, topSourcesLimit)
	s.TopSources, err = e.rankedNames(ctx, `
SELECT source_name, score + 0.5 * cross_platform_boost
FROM source_scores
WHERE score + 0.5 * cross_platform_boost > 0 `+andFilter+`
ORDER BY 2 DESC, source_name
LIMIT ?`, srcArgs...)
	if err != nil {
		return fmt.Errorf("top sources: %w", err)
	}

	s.TopKeywords, err = e.rankedNames(ctx, `
SELECT keyword, score
FROM unified_keyword_scores
WHERE score > 0
ORDER BY score DESC, keyword
LIMIT ?`, topKeywordsLimit)
	if err != nil {
		return fmt.Errorf("top keywords: %w", err)
	}

	s.TopCorrelations, err = e.rankedNames(ctx, `
SELECT keyword1 || ' ↔ ' || keyword2, correlation_strength
FROM cross_correlations
WHERE correlation_strength > ?
ORDER BY correlation_strength DESC, keyword1, keyword2
LIMIT ?`, strongCorrelation, topCorrelationsLimit)
	if err != nil {
		return fmt.Errorf("top correlations: %w", err)
	}

	hourArgs := append([]any{}, args...)
	hourArgs = append(hourArgs, activeHoursLimit)
	rows, err = q.QueryContext(ctx, `
SELECT hour, CAST(SUM(count) AS BIGINT)
FROM unified_time_patterns `+filter+`
GROUP BY hour
ORDER BY 2 DESC, hour
LIMIT ?`, hourArgs...)
	if err != nil {
		return fmt.Errorf("active hours: %w", err)
	}
	err = scanRows(rows, func(r *sql.Rows) error {
		var h models.ActiveHour
		if err := r.Scan(&h.Hour, &h.Count); err != nil {
			return err
		}
		s.ActiveHours = append(s.ActiveHours, h)
		return nil
	})
	if err != nil {
		return fmt.Errorf("active hours: %w", err)
	}
	return nil
}

func (e *Engine) rankedNames(ctx context.Context, query string, args ...any) ([]models.RankedName, error) {
	rows, err := e.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	out := []models.RankedName{}
	err = scanRows(rows, func(r *sql.Rows) error {
		var n models.RankedName
		if err := r.Scan(&n.Name, &n.Score); err != nil {
			return err
		}
		out = append(out, n)
		return nil
	})
	return out, err
}

// platformFilter returns "<keyword> platform = ?" and its argument, or
// nothing for the unified view.
func platformFilter(platform models.Platform, keyword string) (string, []any) {
	if platform == "" {
		return "", nil
	}
	return keyword + " platform = ?", []any{string(platform)}
}

// scanRows calls fn for each row and always closes rows.
func scanRows(rows *sql.Rows, fn func(*sql.Rows) error) error {
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
