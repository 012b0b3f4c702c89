// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package recommend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/crossfeed/internal/database"
	"github.com/tomtom215/crossfeed/internal/logging"
	"github.com/tomtom215/crossfeed/internal/metrics"
	"github.com/tomtom215/crossfeed/internal/models"
	"github.com/tomtom215/crossfeed/internal/validation"
)

// Score term names, used in logs and the degraded-term metric.
const (
	termSource      = "source"
	termKeyword     = "keyword"
	termCorrelation = "correlation"
	termAux         = "aux"
	termMultiplier  = "multiplier"
)

// Engine scores candidate items against the ledger. It only reads, and is
// safe for concurrent use.
type Engine struct {
	db     *database.DB
	cfg    Config
	clock  Clock
	aux    AuxScorer
	logger zerolog.Logger
}

// NewEngine creates a scoring engine over db.
func NewEngine(db *database.DB, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	o := buildOptions(opts)
	return &Engine{
		db:     db,
		cfg:    cfg,
		clock:  o.clock,
		aux:    o.aux,
		logger: logging.WithComponent("scoring_engine"),
	}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Score returns the preference score of item on platform. It never fails:
// an invalid item scores 0, and a storage error in any term makes that
// term contribute 0.
func (e *Engine) Score(ctx context.Context, item models.Item, platform models.Platform) float64 {
	return e.Breakdown(ctx, item, platform).Final
}

// Breakdown scores item and returns every intermediate term.
func (e *Engine) Breakdown(ctx context.Context, item models.Item, platform models.Platform) models.ScoreBreakdown {
	start := time.Now()
	defer func() { metrics.RecordScore(time.Since(start)) }()

	if verr := validation.ValidateStruct(&item); verr != nil || !platform.Valid() {
		e.logger.Debug().Str("content_id", item.ContentID).Str("platform", string(platform)).Msg("Skipping invalid item")
		return models.ScoreBreakdown{}
	}

	keywords := distinct(ExtractKeywords(item.Title))
	var b models.ScoreBreakdown

	v, err := e.sourceTerm(ctx, item.Author, platform)
	b.Source = e.soft(ctx, termSource, item, v, err)

	v, err = e.keywordTerm(ctx, keywords)
	b.Keyword = e.soft(ctx, termKeyword, item, v, err)

	v, err = e.correlationTerm(ctx, keywords, platform)
	b.Correlation = e.soft(ctx, termCorrelation, item, v, err)

	b.Recency = e.recencyTerm(item.Timestamp)

	w := e.cfg.Weights
	b.Weighted = w.Source*b.Source + w.Keyword*b.Keyword + w.Correlation*b.Correlation + w.Recency*b.Recency

	if e.aux != nil && e.cfg.AuxWeight > 0 {
		v, err = e.auxTerm(ctx, item.Title)
		b.Aux = e.soft(ctx, termAux, item, v, err)
		b.Weighted += e.cfg.AuxWeight * b.Aux
	}

	b.Multiplier, err = e.multiplier(ctx, item.ContentID, platform)
	if err != nil {
		e.degrade(ctx, termMultiplier, item, err)
		b.Multiplier = 1
	}

	b.Final = math.Max(0, b.Weighted*b.Multiplier)
	return b
}

// RankScored scores every item and returns them highest first. Items with
// equal scores keep their input order. A positive limit truncates the
// result.
func (e *Engine) RankScored(ctx context.Context, items []models.Item, platform models.Platform, limit int) []models.ScoredItem {
	scored := make([]models.ScoredItem, 0, len(items))
	for _, item := range items {
		scored = append(scored, models.ScoredItem{Item: item, Score: e.Score(ctx, item, platform)})
	}
	metrics.RecordRank(len(items))

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// Rank is RankScored without the scores.
func (e *Engine) Rank(ctx context.Context, items []models.Item, platform models.Platform, limit int) []models.Item {
	scored := e.RankScored(ctx, items, platform, limit)
	out := make([]models.Item, len(scored))
	for i, s := range scored {
		out[i] = s.Item
	}
	return out
}

const selectSourceSQL = `
SELECT score, cross_platform_boost
FROM source_scores
WHERE source_name = ? AND platform = ?`

func (e *Engine) sourceTerm(ctx context.Context, author string, platform models.Platform) (float64, error) {
	var score, boost float64
	err := e.db.Conn().QueryRowContext(ctx, selectSourceSQL, author, string(platform)).Scan(&score, &boost)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	s := score + boostShare*boost
	return s / (1 + sourceDamping*math.Abs(s)), nil
}

func (e *Engine) keywordTerm(ctx context.Context, keywords []string) (float64, error) {
	if len(keywords) == 0 {
		return 0, nil
	}
	query := `SELECT COALESCE(SUM(score), 0) FROM unified_keyword_scores WHERE keyword IN (` +
		placeholders(len(keywords)) + `)`
	var sum float64
	if err := e.db.Conn().QueryRowContext(ctx, query, stringArgs(keywords)...).Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

func (e *Engine) correlationTerm(ctx context.Context, keywords []string, platform models.Platform) (float64, error) {
	if len(keywords) == 0 {
		return 0, nil
	}
	query := `SELECT AVG(correlation_strength) FROM cross_correlations
WHERE keyword1 IN (` + placeholders(len(keywords)) + `) AND platform1 = ? AND platform2 = ?`
	args := append(stringArgs(keywords), string(platform), string(platform.Opposite()))

	var avg sql.NullFloat64
	if err := e.db.Conn().QueryRowContext(ctx, query, args...).Scan(&avg); err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

// recencyTerm decays linearly from 1 at publish time to 0 after the
// recency window. A timestamp in the future scores above 1.
func (e *Engine) recencyTerm(timestamp string) float64 {
	ts, err := strconv.ParseInt(strings.TrimSpace(timestamp), 10, 64)
	if err != nil {
		return 0
	}
	ageDays := (unixSeconds(e.clock.Now()) - float64(ts)) / secondsPerDay
	return math.Max(0, 1-ageDays/e.cfg.RecencyWindowDays)
}

func (e *Engine) auxTerm(ctx context.Context, title string) (float64, error) {
	v, err := e.aux.ScoreAux(ctx, title)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("auxiliary scorer returned %v", v)
	}
	return v, nil
}

const selectInteractionTypesSQL = `
SELECT DISTINCT interaction_type
FROM unified_interactions
WHERE content_id = ? AND platform = ?`

func (e *Engine) multiplier(ctx context.Context, contentID string, platform models.Platform) (float64, error) {
	rows, err := e.db.Conn().QueryContext(ctx, selectInteractionTypesSQL, contentID, string(platform))
	if err != nil {
		return 1, err
	}
	defer func() { _ = rows.Close() }()

	seen := make(map[models.InteractionType]bool, 3)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return 1, err
		}
		seen[models.InteractionType(t)] = true
	}
	if err := rows.Err(); err != nil {
		return 1, err
	}

	switch {
	case seen[models.InteractionDisliked]:
		return DislikedMultiplier, nil
	case seen[models.InteractionStarred]:
		return StarredMultiplier, nil
	case seen[models.InteractionConsumed]:
		return ConsumedMultiplier, nil
	default:
		return 1, nil
	}
}

func (e *Engine) soft(ctx context.Context, term string, item models.Item, v float64, err error) float64 {
	if err != nil {
		e.degrade(ctx, term, item, err)
		return 0
	}
	return v
}

func (e *Engine) degrade(ctx context.Context, term string, item models.Item, err error) {
	metrics.RecordScoreDegraded(term)
	e.logger.Warn().
		Err(err).
		Str("correlation_id", logging.CorrelationIDFromContext(ctx)).
		Str("term", term).
		Str("content_id", item.ContentID).
		Msg("Score term unavailable, using neutral value")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
