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
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/crossfeed/internal/database"
	"github.com/tomtom215/crossfeed/internal/logging"
	"github.com/tomtom215/crossfeed/internal/metrics"
	"github.com/tomtom215/crossfeed/internal/models"
)

// Store records interactions and feeds the ledger.
type Store struct {
	db     *database.DB
	ledger Ledger
	clock  Clock
	logger zerolog.Logger
}

// NewStore returns a Store writing to db.
func NewStore(db *database.DB, opts ...Option) *Store {
	o := buildOptions(opts)
	return &Store{
		db:     db,
		clock:  o.clock,
		logger: logging.WithComponent("interaction_store"),
	}
}

const insertContentSQL = `
INSERT OR IGNORE INTO content
	(content_id, platform, title, author, content_type, first_seen_timestamp, last_updated)
VALUES (?, ?, ?, ?, ?, ?, ?)`

const refreshContentSQL = `
UPDATE content
SET title = ?, author = ?, last_updated = ?
WHERE content_id = ? AND (title != ? OR author != ?)`

const upsertInteractionSQL = `
INSERT INTO unified_interactions (content_id, platform, interaction_type, interaction_subtype, timestamp)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (content_id, interaction_type) DO UPDATE SET
	platform = excluded.platform,
	interaction_subtype = excluded.interaction_subtype,
	timestamp = excluded.timestamp`

// RecordInteraction stores one interaction and applies its score deltas,
// correlation updates and time pattern in a single transaction. A second
// call for the same (ContentID, Type) replaces the stored subtype and
// timestamp; score deltas accumulate.
//
// Invalid input returns *ValidationError without touching storage. Storage
// failures return *database.StorageError after rolling back.
func (s *Store) RecordInteraction(ctx context.Context, in models.Interaction) error {
	if err := validate("record_interaction", &in); err != nil {
		return err
	}

	now := s.clock.Now()
	if in.Timestamp == 0 {
		in.Timestamp = unixSeconds(now)
	}
	at := fromUnixSeconds(in.Timestamp)
	delta := DeltaFor(in.Type, in.Subtype)

	// Writes are not abandoned half way when the caller goes away; the
	// engine's busy timeout bounds how long this can block.
	ctx = logging.EnsureCorrelationID(context.WithoutCancel(ctx))

	err := s.db.WriteTx(ctx, "record_interaction", func(tx *sql.Tx) error {
		if err := upsertContent(ctx, tx, in); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, upsertInteractionSQL,
			in.ContentID, string(in.Platform), string(in.Type), nullableSubtype(in.Subtype), in.Timestamp); err != nil {
			return fmt.Errorf("upsert interaction: %w", err)
		}
		if err := s.ledger.UpdateSourceScore(ctx, tx, in.Author, in.Platform, delta.Source, now); err != nil {
			return err
		}
		if err := s.ledger.UpdateKeywordScores(ctx, tx, in.Title, delta.Keyword, now); err != nil {
			return err
		}
		if err := s.ledger.UpdateCrossCorrelations(ctx, tx, in.Title, in.Platform, now); err != nil {
			return err
		}
		return s.ledger.BumpTimePattern(ctx, tx, in.Platform, at, now)
	})
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).
			Str("content_id", in.ContentID).
			Str("platform", string(in.Platform)).
			Str("type", string(in.Type)).
			Msg("Failed to record interaction")
		return err
	}

	metrics.RecordInteraction(string(in.Platform), string(in.Type))
	s.logger.Debug().
		Str("correlation_id", logging.CorrelationIDFromContext(ctx)).
		Str("content_id", in.ContentID).
		Str("platform", string(in.Platform)).
		Str("type", string(in.Type)).
		Str("subtype", string(in.Subtype)).
		Msg("Interaction recorded")
	return nil
}

type retraction struct {
	ContentID string                 `validate:"required"`
	Platform  models.Platform        `validate:"required,platform"`
	Type      models.InteractionType `validate:"required,interaction_type"`
}

const selectRetractableSQL = `
SELECT ui.interaction_subtype, c.title, c.author
FROM unified_interactions ui
LEFT JOIN content c ON c.content_id = ui.content_id
WHERE ui.content_id = ? AND ui.platform = ? AND ui.interaction_type = ?`

const deleteInteractionSQL = `
DELETE FROM unified_interactions
WHERE content_id = ? AND platform = ? AND interaction_type = ?`

// RetractInteraction removes a stored interaction (unstar, undislike) and
// applies the exact negation of the source and keyword deltas it added.
// Correlations and time patterns are left as they are. It reports whether
// a row was removed; an absent row is not an error.
func (s *Store) RetractInteraction(ctx context.Context, contentID string, platform models.Platform, t models.InteractionType) (bool, error) {
	if err := validate("retract_interaction", &retraction{ContentID: contentID, Platform: platform, Type: t}); err != nil {
		return false, err
	}

	now := s.clock.Now()
	ctx = logging.EnsureCorrelationID(context.WithoutCancel(ctx))
	removed := false

	err := s.db.WriteTx(ctx, "retract_interaction", func(tx *sql.Tx) error {
		var (
			subtype       sql.NullString
			title, author sql.NullString
		)
		err := tx.QueryRowContext(ctx, selectRetractableSQL, contentID, string(platform), string(t)).
			Scan(&subtype, &title, &author)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load interaction: %w", err)
		}

		if _, err := tx.ExecContext(ctx, deleteInteractionSQL, contentID, string(platform), string(t)); err != nil {
			return fmt.Errorf("delete interaction: %w", err)
		}
		removed = true

		inverse := DeltaFor(t, models.InteractionSubtype(subtype.String)).Negate()
		if author.Valid {
			if err := s.ledger.UpdateSourceScore(ctx, tx, author.String, platform, inverse.Source, now); err != nil {
				return err
			}
		}
		if title.Valid {
			return s.ledger.UpdateKeywordScores(ctx, tx, title.String, inverse.Keyword, now)
		}
		return nil
	})
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("content_id", contentID).Msg("Failed to retract interaction")
		return false, err
	}

	if removed {
		s.logger.Debug().
			Str("content_id", contentID).
			Str("platform", string(platform)).
			Str("type", string(t)).
			Msg("Interaction retracted")
	}
	return removed, nil
}

// RecordSkip applies a weak negative to the source and title keywords of
// an item that was shown and passed over. No interaction row is written.
func (s *Store) RecordSkip(ctx context.Context, skip models.Skip) error {
	if err := validate("record_skip", &skip); err != nil {
		return err
	}

	now := s.clock.Now()
	d := SkipDelta()
	ctx = context.WithoutCancel(ctx)

	return s.db.WriteTx(ctx, "record_skip", func(tx *sql.Tx) error {
		if err := s.ledger.UpdateSourceScore(ctx, tx, skip.Author, skip.Platform, d.Source, now); err != nil {
			return err
		}
		return s.ledger.UpdateKeywordScores(ctx, tx, skip.Title, d.Keyword, now)
	})
}

func upsertContent(ctx context.Context, tx *sql.Tx, in models.Interaction) error {
	if _, err := tx.ExecContext(ctx, insertContentSQL,
		in.ContentID, string(in.Platform), in.Title, in.Author, in.ContentType, in.Timestamp, in.Timestamp); err != nil {
		return fmt.Errorf("insert content: %w", err)
	}
	if _, err := tx.ExecContext(ctx, refreshContentSQL,
		in.Title, in.Author, in.Timestamp, in.ContentID, in.Title, in.Author); err != nil {
		return fmt.Errorf("refresh content: %w", err)
	}
	return nil
}

func nullableSubtype(s models.InteractionSubtype) sql.NullString {
	return sql.NullString{String: string(s), Valid: s != models.SubtypeNone}
}

func fromUnixSeconds(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9))
}
