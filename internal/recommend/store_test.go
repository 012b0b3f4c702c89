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
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/tomtom215/crossfeed/internal/database"
	"github.com/tomtom215/crossfeed/internal/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testClock() Clock { return FixedClock{T: testNow} }

func daysAgo(d float64) float64 {
	return unixSeconds(testNow) - d*secondsPerDay
}

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(context.Background(), database.Config{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "crossfeed.db"),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countRows(t *testing.T, db *database.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.Conn().QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return n
}

func sourceRow(t *testing.T, db *database.DB, source string, platform models.Platform) (score, boost float64, ok bool) {
	t.Helper()
	err := db.Conn().QueryRow(
		`SELECT score, cross_platform_boost FROM source_scores WHERE source_name = ? AND platform = ?`,
		source, string(platform)).Scan(&score, &boost)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, false
	}
	if err != nil {
		t.Fatalf("source row: %v", err)
	}
	return score, boost, true
}

func keywordScore(t *testing.T, db *database.DB, kw string) float64 {
	t.Helper()
	var s float64
	err := db.Conn().QueryRow(`SELECT score FROM unified_keyword_scores WHERE keyword = ?`, kw).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return math.NaN()
	}
	if err != nil {
		t.Fatalf("keyword score: %v", err)
	}
	return s
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func mustRecord(t *testing.T, s *Store, in models.Interaction) {
	t.Helper()
	if err := s.RecordInteraction(context.Background(), in); err != nil {
		t.Fatalf("RecordInteraction(%s/%s): %v", in.ContentID, in.Type, err)
	}
}

func interaction(id string, p models.Platform, title, author string, typ models.InteractionType, sub models.InteractionSubtype) models.Interaction {
	return models.Interaction{
		ContentID:   id,
		Platform:    p,
		Title:       title,
		Author:      author,
		ContentType: "article",
		Type:        typ,
		Subtype:     sub,
	}
}

func TestRecordInteractionWritesLedger(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	store := NewStore(db, WithClock(testClock()))

	mustRecord(t, store, interaction("yt1", models.PlatformYouTube,
		"Rust Concurrency Patterns", "Chan", models.InteractionConsumed, models.SubtypeClicked))

	score, boost, ok := sourceRow(t, db, "Chan", models.PlatformYouTube)
	if !ok || score != 1.0 || boost != 0 {
		t.Errorf("youtube source = (%v, %v, %v), want (1.0, 0, true)", score, boost, ok)
	}
	score, boost, ok = sourceRow(t, db, "Chan", models.PlatformNews)
	if !ok || score != 0 || !approxEqual(boost, 0.2) {
		t.Errorf("news source = (%v, %v, %v), want (0, 0.2, true)", score, boost, ok)
	}

	for _, kw := range []string{"rust", "concurrency", "patterns"} {
		if got := keywordScore(t, db, kw); got != 0.5 {
			t.Errorf("keyword %s = %v, want 0.5", kw, got)
		}
	}

	if n := countRows(t, db, `SELECT COUNT(*) FROM content WHERE content_id = 'yt1' AND platform = 'youtube'`); n != 1 {
		t.Errorf("content rows = %d, want 1", n)
	}
	var subtype string
	var ts float64
	if err := db.Conn().QueryRow(
		`SELECT interaction_subtype, timestamp FROM unified_interactions WHERE content_id = 'yt1'`).Scan(&subtype, &ts); err != nil {
		t.Fatalf("interaction row: %v", err)
	}
	if subtype != "clicked" || ts != unixSeconds(testNow) {
		t.Errorf("interaction = (%s, %v), want (clicked, %v)", subtype, ts, unixSeconds(testNow))
	}
	if n := countRows(t, db, `SELECT count FROM unified_time_patterns WHERE platform = 'youtube' AND hour = 12`); n != 1 {
		t.Errorf("time pattern count = %d, want 1", n)
	}
}

func TestRecordInteractionDeltas(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		typ         models.InteractionType
		sub         models.InteractionSubtype
		wantSource  float64
		wantKeyword float64
	}{
		{"consumed clicked", models.InteractionConsumed, models.SubtypeClicked, 1.0, 0.5},
		{"consumed marked", models.InteractionConsumed, models.SubtypeMarked, 0.3, 0.15},
		{"consumed without subtype", models.InteractionConsumed, models.SubtypeNone, 0.3, 0.15},
		{"starred", models.InteractionStarred, models.SubtypeNone, 2.0, 1.5},
		{"disliked", models.InteractionDisliked, models.SubtypeNone, -2.0, -1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db := setupTestDB(t)
			store := NewStore(db, WithClock(testClock()))

			mustRecord(t, store, interaction("n1", models.PlatformNews, "Election Coverage", "Wire", tt.typ, tt.sub))

			score, boost, _ := sourceRow(t, db, "Wire", models.PlatformNews)
			if !approxEqual(score, tt.wantSource) {
				t.Errorf("source score = %v, want %v", score, tt.wantSource)
			}
			if boost != 0 {
				t.Errorf("own-platform boost = %v, want 0", boost)
			}
			_, crossBoost, _ := sourceRow(t, db, "Wire", models.PlatformYouTube)
			if !approxEqual(crossBoost, tt.wantSource*CrossBoostFactor) {
				t.Errorf("cross boost = %v, want %v", crossBoost, tt.wantSource*CrossBoostFactor)
			}
			if got := keywordScore(t, db, "election"); !approxEqual(got, tt.wantKeyword) {
				t.Errorf("keyword score = %v, want %v", got, tt.wantKeyword)
			}
		})
	}
}

func TestRecordInteractionReplacesRow(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	store := NewStore(db, WithClock(testClock()))

	first := interaction("yt1", models.PlatformYouTube, "Kernel Debugging", "Ops", models.InteractionConsumed, models.SubtypeMarked)
	first.Timestamp = daysAgo(2)
	mustRecord(t, store, first)

	second := first
	second.Subtype = models.SubtypeClicked
	second.Timestamp = daysAgo(1)
	mustRecord(t, store, second)

	if n := countRows(t, db, `SELECT COUNT(*) FROM unified_interactions WHERE content_id = 'yt1' AND interaction_type = 'consumed'`); n != 1 {
		t.Fatalf("interaction rows = %d, want 1", n)
	}
	var subtype string
	var ts float64
	if err := db.Conn().QueryRow(`SELECT interaction_subtype, timestamp FROM unified_interactions WHERE content_id = 'yt1'`).
		Scan(&subtype, &ts); err != nil {
		t.Fatalf("interaction row: %v", err)
	}
	if subtype != "clicked" || ts != daysAgo(1) {
		t.Errorf("interaction = (%s, %v), want the second record", subtype, ts)
	}

	// Deltas accumulate across records.
	score, _, _ := sourceRow(t, db, "Ops", models.PlatformYouTube)
	if !approxEqual(score, 1.3) {
		t.Errorf("source score = %v, want 1.3", score)
	}
}

func TestRecordInteractionRepeatedKeyword(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	store := NewStore(db, WithClock(testClock()))

	mustRecord(t, store, interaction("yt1", models.PlatformYouTube,
		"Go go gophers gophers", "Gopher TV", models.InteractionConsumed, models.SubtypeClicked))

	if got := keywordScore(t, db, "gophers"); got != 1.0 {
		t.Errorf("gophers = %v, want 1.0 (delta applied per occurrence)", got)
	}
	if got := keywordScore(t, db, "go"); !math.IsNaN(got) {
		t.Errorf("short keyword stored with score %v", got)
	}
}

func TestRecordInteractionValidation(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	store := NewStore(db, WithClock(testClock()))

	valid := interaction("x", models.PlatformNews, "Title Words", "Author", models.InteractionStarred, models.SubtypeNone)

	tests := []struct {
		name   string
		mutate func(*models.Interaction)
		field  string
	}{
		{"missing content id", func(i *models.Interaction) { i.ContentID = "" }, "ContentID"},
		{"missing title", func(i *models.Interaction) { i.Title = "" }, "Title"},
		{"missing author", func(i *models.Interaction) { i.Author = "" }, "Author"},
		{"unknown platform", func(i *models.Interaction) { i.Platform = "podcast" }, "Platform"},
		{"unknown type", func(i *models.Interaction) { i.Type = "watched" }, "Type"},
		{"unknown subtype", func(i *models.Interaction) { i.Subtype = "hovered" }, "Subtype"},
		{"negative timestamp", func(i *models.Interaction) { i.Timestamp = -1 }, "Timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := store.RecordInteraction(context.Background(), in)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if !verr.Err.HasField(tt.field) {
				t.Errorf("validation error %v does not name field %s", verr, tt.field)
			}
		})
	}

	for _, table := range []string{"content", "unified_interactions", "source_scores", "unified_keyword_scores"} {
		if n := countRows(t, db, "SELECT COUNT(*) FROM "+table); n != 0 {
			t.Errorf("%s has %d rows after rejected writes", table, n)
		}
	}
}

func TestRecordInteractionCorrelations(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	store := NewStore(db, WithClock(testClock()))

	recent := interaction("n1", models.PlatformNews, "Quantum Computing Breakthrough", "Science Daily",
		models.InteractionConsumed, models.SubtypeClicked)
	recent.Timestamp = daysAgo(1)
	mustRecord(t, store, recent)

	stale := interaction("n2", models.PlatformNews, "Ancient Rome History", "Archive", models.InteractionStarred, "")
	stale.Timestamp = daysAgo(10)
	mustRecord(t, store, stale)

	disliked := interaction("n3", models.PlatformNews, "Celebrity Gossip Weekly", "Tabloid", models.InteractionDisliked, "")
	disliked.Timestamp = daysAgo(1)
	mustRecord(t, store, disliked)

	mustRecord(t, store, interaction("yt1", models.PlatformYouTube, "Quantum Physics Lecture", "Uni",
		models.InteractionStarred, ""))

	strength := func(k1, k2 string) float64 {
		var s float64
		err := db.Conn().QueryRow(`SELECT correlation_strength FROM cross_correlations
			WHERE keyword1 = ? AND keyword2 = ? AND platform1 = 'youtube' AND platform2 = 'news'`, k1, k2).Scan(&s)
		if errors.Is(err, sql.ErrNoRows) {
			return 0
		}
		if err != nil {
			t.Fatalf("correlation: %v", err)
		}
		return s
	}

	if got := strength("physics", "quantum"); !approxEqual(got, 0.1) {
		t.Errorf("physics/quantum = %v, want 0.1", got)
	}
	if got := strength("lecture", "breakthrough"); !approxEqual(got, 0.1) {
		t.Errorf("lecture/breakthrough = %v, want 0.1", got)
	}
	if got := strength("quantum", "quantum"); got != 0 {
		t.Errorf("self pair stored with %v", got)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM cross_correlations WHERE keyword2 IN ('ancient', 'celebrity')`); n != 0 {
		t.Errorf("%d correlations from stale or disliked activity", n)
	}
	// 3 new keywords x 3 recent keywords, minus the quantum/quantum pair.
	if n := countRows(t, db, `SELECT COUNT(*) FROM cross_correlations WHERE platform1 = 'youtube'`); n != 8 {
		t.Errorf("youtube->news correlations = %d, want 8", n)
	}
}

func TestRecordInteractionSingleKeywordSkipsCorrelations(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	store := NewStore(db, WithClock(testClock()))

	mustRecord(t, store, interaction("n1", models.PlatformNews, "Quantum Computing", "A", models.InteractionStarred, ""))
	mustRecord(t, store, interaction("yt1", models.PlatformYouTube, "Quantum!", "B", models.InteractionStarred, ""))

	if n := countRows(t, db, `SELECT COUNT(*) FROM cross_correlations`); n != 0 {
		t.Errorf("correlations = %d, want 0", n)
	}
}

func TestConcurrentWritersConverge(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	store := NewStore(db, WithClock(testClock()))

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.RecordInteraction(context.Background(),
				interaction("shared", models.PlatformNews, "Shared Story Today", "Desk", models.InteractionStarred, ""))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent RecordInteraction: %v", err)
		}
	}

	if n := countRows(t, db, `SELECT COUNT(*) FROM unified_interactions WHERE content_id = 'shared'`); n != 1 {
		t.Errorf("interaction rows = %d, want 1", n)
	}
	score, _, _ := sourceRow(t, db, "Desk", models.PlatformNews)
	if !approxEqual(score, writers*2.0) {
		t.Errorf("source score = %v, want %v", score, writers*2.0)
	}
}

func TestRetractInteractionInvertsExactly(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	store := NewStore(db, WithClock(testClock()))
	ctx := context.Background()

	mustRecord(t, store, interaction("yt1", models.PlatformYouTube, "Synth Modular Jam", "Patch", models.InteractionConsumed, models.SubtypeClicked))
	beforeScore, beforeBoost, _ := sourceRow(t, db, "Patch", models.PlatformYouTube)
	_, beforeCross, _ := sourceRow(t, db, "Patch", models.PlatformNews)
	beforeKw := keywordScore(t, db, "synth")

	mustRecord(t, store, interaction("yt1", models.PlatformYouTube, "Synth Modular Jam", "Patch", models.InteractionStarred, ""))

	removed, err := store.RetractInteraction(ctx, "yt1", models.PlatformYouTube, models.InteractionStarred)
	if err != nil {
		t.Fatalf("RetractInteraction: %v", err)
	}
	if !removed {
		t.Fatal("RetractInteraction reported nothing removed")
	}

	score, boost, _ := sourceRow(t, db, "Patch", models.PlatformYouTube)
	_, cross, _ := sourceRow(t, db, "Patch", models.PlatformNews)
	if !approxEqual(score, beforeScore) || !approxEqual(boost, beforeBoost) || !approxEqual(cross, beforeCross) {
		t.Errorf("source after retract = (%v, %v, %v), want (%v, %v, %v)", score, boost, cross, beforeScore, beforeBoost, beforeCross)
	}
	if got := keywordScore(t, db, "synth"); !approxEqual(got, beforeKw) {
		t.Errorf("keyword after retract = %v, want %v", got, beforeKw)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM unified_interactions WHERE content_id = 'yt1' AND interaction_type = 'starred'`); n != 0 {
		t.Errorf("starred row still present")
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM unified_interactions WHERE content_id = 'yt1' AND interaction_type = 'consumed'`); n != 1 {
		t.Errorf("consumed row removed by starred retract")
	}

	removed, err = store.RetractInteraction(ctx, "yt1", models.PlatformYouTube, models.InteractionStarred)
	if err != nil || removed {
		t.Errorf("second retract = (%v, %v), want (false, nil)", removed, err)
	}
}

func TestRetractInteractionValidation(t *testing.T) {
	t.Parallel()
	store := NewStore(setupTestDB(t))

	_, err := store.RetractInteraction(context.Background(), "", models.PlatformNews, models.InteractionStarred)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("err = %v, want *ValidationError", err)
	}
}

func TestRecordSkip(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	store := NewStore(db, WithClock(testClock()))

	if err := store.RecordSkip(context.Background(), models.Skip{
		Platform: models.PlatformNews, Title: "Crypto Hype Cycle", Author: "Coin Desk",
	}); err != nil {
		t.Fatalf("RecordSkip: %v", err)
	}

	score, _, _ := sourceRow(t, db, "Coin Desk", models.PlatformNews)
	if !approxEqual(score, -0.1) {
		t.Errorf("source = %v, want -0.1", score)
	}
	_, cross, _ := sourceRow(t, db, "Coin Desk", models.PlatformYouTube)
	if !approxEqual(cross, -0.02) {
		t.Errorf("cross boost = %v, want -0.02", cross)
	}
	if got := keywordScore(t, db, "crypto"); !approxEqual(got, -0.05) {
		t.Errorf("keyword = %v, want -0.05", got)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM unified_interactions`); n != 0 {
		t.Errorf("skip wrote %d interaction rows", n)
	}

	err := store.RecordSkip(context.Background(), models.Skip{Platform: models.PlatformNews})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("err = %v, want *ValidationError", err)
	}
}

func TestRecordInteractionRollsBackWithSQLMock(t *testing.T) {
	t.Parallel()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()
	store := NewStore(database.New(conn, database.SQLite), WithClock(testClock()))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT OR IGNORE INTO content").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE content").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO unified_interactions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO source_scores").WillReturnError(fmt.Errorf("disk I/O error"))
	mock.ExpectRollback()

	err = store.RecordInteraction(context.Background(),
		interaction("n1", models.PlatformNews, "Storage Failure Story", "Desk", models.InteractionStarred, ""))

	var se *database.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *database.StorageError", err)
	}
	if se.Op != "record_interaction" {
		t.Errorf("Op = %q, want record_interaction", se.Op)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
