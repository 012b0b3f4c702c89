// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/crossfeed/internal/database"
	"github.com/tomtom215/crossfeed/internal/logging"
	"github.com/tomtom215/crossfeed/internal/models"
	"github.com/tomtom215/crossfeed/internal/recommend"
	"github.com/tomtom215/crossfeed/internal/validation"
)

// Handler serves the preference API over one database.
type Handler struct {
	db        *database.DB
	store     *recommend.Store
	engine    *recommend.Engine
	retention *recommend.RetentionManager
	startTime time.Time
}

// NewHandler returns a Handler. All arguments must share db.
func NewHandler(db *database.DB, store *recommend.Store, engine *recommend.Engine, retention *recommend.RetentionManager) *Handler {
	return &Handler{
		db:        db,
		store:     store,
		engine:    engine,
		retention: retention,
		startTime: time.Now(),
	}
}

// Health reports database connectivity and schema state. It answers 503
// when the database cannot be reached.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := models.HealthStatus{
		Status: "healthy",
		Driver: h.db.Dialect().Name,
		Uptime: time.Since(h.startTime).Seconds(),
	}

	if err := h.db.Ping(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Health check ping failed")
		status.Status = "unhealthy"
		respondJSON(w, r, http.StatusServiceUnavailable, &models.APIResponse{
			Status:   "error",
			Data:     status,
			Metadata: models.Metadata{Timestamp: time.Now().UTC()},
			Error:    &models.APIError{Code: "DATABASE_UNAVAILABLE", Message: "Database is unreachable"},
		})
		return
	}
	status.DatabaseConnected = true

	if v, err := h.db.SchemaVersion(ctx); err == nil {
		status.SchemaVersion = v
	}
	if legacy, err := h.db.LegacyTables(ctx); err == nil {
		status.LegacyTables = len(legacy)
	}

	respondOK(w, r, status, start)
}

// RecordInteraction handles POST /api/v1/interactions.
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var in models.Interaction
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.store.RecordInteraction(r.Context(), in); err != nil {
		respondWriteError(w, r, err)
		return
	}
	respondOK(w, r, map[string]string{"content_id": in.ContentID}, start)
}

// RetractInteraction handles DELETE /api/v1/interactions. Retracting a
// missing interaction is not an error; "removed" reports what happened.
func (h *Handler) RetractInteraction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.RetractRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	removed, err := h.store.RetractInteraction(r.Context(), req.ContentID, req.Platform, req.Type)
	if err != nil {
		respondWriteError(w, r, err)
		return
	}
	respondOK(w, r, map[string]bool{"removed": removed}, start)
}

// RecordSkip handles POST /api/v1/skips.
func (h *Handler) RecordSkip(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var skip models.Skip
	if !decodeJSON(w, r, &skip) {
		return
	}
	if err := h.store.RecordSkip(r.Context(), skip); err != nil {
		respondWriteError(w, r, err)
		return
	}
	respondOK(w, r, map[string]string{"status": "recorded"}, start)
}

// Rank handles POST /api/v1/rank. Items are returned best first with their
// scores. Scoring never fails; ledger errors degrade individual terms.
func (h *Handler) Rank(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.RankRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, &recommend.ValidationError{Op: "rank", Err: verr})
		return
	}
	respondOK(w, r, h.engine.RankScored(r.Context(), req.Items, req.Platform, req.Limit), start)
}

// Score handles POST /api/v1/score?platform=. It returns every term of the
// item's score. Items missing a required field are rejected.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	platform, ok := requirePlatform(w, r)
	if !ok {
		return
	}
	var item models.Item
	if !decodeJSON(w, r, &item) {
		return
	}
	if verr := validation.ValidateStruct(&item); verr != nil {
		respondValidationError(w, r, &recommend.ValidationError{Op: "score", Err: verr})
		return
	}
	respondOK(w, r, h.engine.Breakdown(r.Context(), item, platform), start)
}

// Stats handles GET /api/v1/stats?platform=. Without a platform the stats
// cover both platforms.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	platform := models.Platform(r.URL.Query().Get("platform"))
	if platform != "" && !platform.Valid() {
		respondError(w, r, http.StatusBadRequest, "INVALID_PLATFORM", "platform must be youtube or news", nil)
		return
	}
	respondOK(w, r, h.engine.GetStats(r.Context(), platform), start)
}

// Purge handles POST /api/v1/purge?days=. Without days the default
// retention applies.
func (h *Handler) Purge(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	days := -1
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, r, http.StatusBadRequest, "INVALID_DAYS", "days must be a non-negative integer", nil)
			return
		}
		days = n
	}

	// A compaction failure leaves the deletes committed, so the counts are
	// still returned with compacted=false.
	result, err := h.retention.Purge(r.Context(), days)
	var se *database.StorageError
	if err != nil && !(errors.As(err, &se) && se.Op == "compact") {
		respondWriteError(w, r, err)
		return
	}
	respondOK(w, r, result, start)
}

func requirePlatform(w http.ResponseWriter, r *http.Request) (models.Platform, bool) {
	platform := models.Platform(r.URL.Query().Get("platform"))
	if !platform.Valid() {
		respondError(w, r, http.StatusBadRequest, "INVALID_PLATFORM", "platform must be youtube or news", nil)
		return "", false
	}
	return platform, true
}
