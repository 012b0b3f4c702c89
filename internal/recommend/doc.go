// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

// Package recommend learns content preferences from interaction signals on
// two platforms (youtube and news) and ranks candidate items with them.
//
// # Components
//
//   - Store records interactions. Each call runs in one write transaction
//     that upserts the content row and the interaction row, then updates
//     the ledger.
//   - Ledger holds the update rules for source scores, keyword scores,
//     cross-platform keyword correlations and hour-of-day patterns. It only
//     ever writes through a transaction handed to it.
//   - Engine scores and ranks items. Reads are fail-soft: a storage error in
//     one term is logged and the term contributes zero.
//   - RetentionManager purges stale consumption history and non-positive
//     scores, then compacts the database.
//
// # Score
//
// For an item on platform p with opposite platform q:
//
//	source      = s / (1 + 0.1|s|), s = score + 0.5*boost      weight 0.30
//	keyword     = sum of keyword scores for the title          weight 0.40
//	correlation = avg strength of (kw, *, p, q) rows            weight 0.10
//	recency     = max(0, 1 - ageDays/30)                        weight 0.20
//
// The weighted sum is multiplied by 0.01 if the item was disliked, else 1.5
// if starred, else 0.1 if consumed, and clamped at zero. An optional
// AuxScorer adds AuxWeight times its output before the multiplier.
//
// # Usage
//
//	db, err := database.Open(ctx, database.Config{Driver: "sqlite", Path: "crossfeed.db"})
//	if err != nil {
//		return err
//	}
//	store := recommend.NewStore(db)
//	engine, err := recommend.NewEngine(db, recommend.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	_ = store.RecordInteraction(ctx, models.Interaction{...})
//	ranked := engine.Rank(ctx, items, models.PlatformNews, 20)
//
// # Thread Safety
//
// Store and RetentionManager serialize writes through database.DB.WriteTx.
// Engine holds no mutable state and is safe for concurrent use.
package recommend
