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

	"github.com/tomtom215/crossfeed/internal/models"
)

// Ledger applies score updates. Every method takes the caller's open write
// transaction and never begins or commits one itself, so a single
// interaction's updates commit or roll back together.
type Ledger struct{}

const upsertSourceScoreSQL = `
INSERT INTO source_scores (source_name, platform, score, cross_platform_boost, last_updated)
VALUES (?, ?, ?, 0.0, ?)
ON CONFLICT (source_name, platform) DO UPDATE SET
	score = score + excluded.score,
	last_updated = excluded.last_updated`

const upsertCrossBoostSQL = `
INSERT INTO source_scores (source_name, platform, score, cross_platform_boost, last_updated)
VALUES (?, ?, 0.0, ?, ?)
ON CONFLICT (source_name, platform) DO UPDATE SET
	cross_platform_boost = cross_platform_boost + excluded.cross_platform_boost,
	last_updated = excluded.last_updated`

const upsertKeywordSQL = `
INSERT INTO unified_keyword_scores (keyword, score, last_updated)
VALUES (?, ?, ?)
ON CONFLICT (keyword) DO UPDATE SET
	score = score + excluded.score,
	last_updated = excluded.last_updated`

const recentOppositeTitlesSQL = `
SELECT c.title
FROM unified_interactions ui
JOIN content c ON ui.content_id = c.content_id
WHERE ui.platform = ?
  AND ui.timestamp > ?
  AND ui.interaction_type IN ('consumed', 'starred')
ORDER BY ui.timestamp DESC
LIMIT ?`

const upsertCorrelationSQL = `
INSERT INTO cross_correlations (keyword1, keyword2, platform1, platform2, correlation_strength, last_updated)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (keyword1, keyword2, platform1, platform2) DO UPDATE SET
	correlation_strength = correlation_strength + excluded.correlation_strength,
	last_updated = excluded.last_updated`

const upsertTimePatternSQL = `
INSERT INTO unified_time_patterns (platform, hour, count, last_updated)
VALUES (?, ?, ?, ?)
ON CONFLICT (platform, hour) DO UPDATE SET
	count = count + excluded.count,
	last_updated = excluded.last_updated`

// UpdateSourceScore adds delta to (source, platform) and delta*0.2 to the
// cross_platform_boost of the same source on the opposite platform. Both
// rows are created when absent.
func (Ledger) UpdateSourceScore(ctx context.Context, tx *sql.Tx, source string, platform models.Platform, delta float64, now time.Time) error {
	if delta == 0 {
		return nil
	}
	ts := unixSeconds(now)
	if _, err := tx.ExecContext(ctx, upsertSourceScoreSQL, source, string(platform), delta, ts); err != nil {
		return fmt.Errorf("update source score: %w", err)
	}
	boost := delta * CrossBoostFactor
	if _, err := tx.ExecContext(ctx, upsertCrossBoostSQL, source, string(platform.Opposite()), boost, ts); err != nil {
		return fmt.Errorf("update cross-platform boost: %w", err)
	}
	return nil
}

// UpdateKeywordScores adds delta to every keyword extracted from title. A
// keyword that appears twice receives the delta twice.
func (Ledger) UpdateKeywordScores(ctx context.Context, tx *sql.Tx, title string, delta float64, now time.Time) error {
	if delta == 0 {
		return nil
	}
	ts := unixSeconds(now)
	for _, kw := range ExtractKeywords(title) {
		if _, err := tx.ExecContext(ctx, upsertKeywordSQL, kw, delta, ts); err != nil {
			return fmt.Errorf("update keyword %q: %w", kw, err)
		}
	}
	return nil
}

// UpdateCrossCorrelations pairs title's keywords with the keywords of
// recent positive activity on the opposite platform. Titles with fewer
// than two keywords are ignored.
func (Ledger) UpdateCrossCorrelations(ctx context.Context, tx *sql.Tx, title string, platform models.Platform, now time.Time) error {
	keywords := ExtractKeywords(title)
	if len(keywords) < 2 {
		return nil
	}

	other := platform.Opposite()
	ts := unixSeconds(now)
	cutoff := ts - CorrelationWindowDays*secondsPerDay

	// Read all titles before writing; some drivers do not allow statements
	// on a transaction while a result set is still open.
	rows, err := tx.QueryContext(ctx, recentOppositeTitlesSQL, string(other), cutoff, CorrelationSampleLimit)
	if err != nil {
		return fmt.Errorf("query recent %s activity: %w", other, err)
	}
	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan recent title: %w", err)
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("iterate recent titles: %w", err)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("close recent titles: %w", err)
	}

	for _, t := range titles {
		for _, otherKw := range ExtractKeywords(t) {
			for _, kw := range keywords {
				if kw == otherKw {
					continue
				}
				if _, err := tx.ExecContext(ctx, upsertCorrelationSQL,
					kw, otherKw, string(platform), string(other), CorrelationIncrement, ts); err != nil {
					return fmt.Errorf("update correlation %s/%s: %w", kw, otherKw, err)
				}
			}
		}
	}
	return nil
}

// BumpTimePattern counts one interaction in its UTC hour-of-day bucket.
func (Ledger) BumpTimePattern(ctx context.Context, tx *sql.Tx, platform models.Platform, at, now time.Time) error {
	hour := at.UTC().Hour()
	if _, err := tx.ExecContext(ctx, upsertTimePatternSQL, string(platform), hour, 1, unixSeconds(now)); err != nil {
		return fmt.Errorf("update time pattern: %w", err)
	}
	return nil
}
