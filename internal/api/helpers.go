// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/crossfeed/internal/database"
	"github.com/tomtom215/crossfeed/internal/logging"
	"github.com/tomtom215/crossfeed/internal/models"
	"github.com/tomtom215/crossfeed/internal/recommend"
)

// maxBodyBytes bounds request bodies. A rank request of 1000 items fits.
const maxBodyBytes = 1 << 20

// sanitizeLogValue removes control characters from strings to prevent log
// injection.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// respondJSON writes response with status.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *models.APIResponse) {
	response.Metadata.CorrelationID = logging.CorrelationIDFromContext(r.Context())

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondOK wraps data in a success envelope.
func respondOK(w http.ResponseWriter, r *http.Request, data interface{}, start time.Time) {
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// respondError sends an error envelope. err is logged, never returned to
// the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}
	respondJSON(w, r, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: code, Message: message},
	})
}

// respondValidationError lists each failed field.
func respondValidationError(w http.ResponseWriter, r *http.Request, verr *recommend.ValidationError) {
	details := make(map[string]interface{}, len(verr.Err.Fields()))
	for _, f := range verr.Err.Fields() {
		details[f.Field] = f.Message
	}
	respondJSON(w, r, http.StatusBadRequest, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    "VALIDATION_ERROR",
			Message: verr.Err.Error(),
			Details: details,
		},
	})
}

// respondWriteError maps a write path error to a status code.
func respondWriteError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *recommend.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidationError(w, r, verr)
	case errors.Is(err, database.ErrLockTimeout):
		w.Header().Set("Retry-After", "1")
		respondError(w, r, http.StatusServiceUnavailable, "LOCK_TIMEOUT", "Database is busy, retry later", err)
	case errors.Is(err, database.ErrClosed):
		respondError(w, r, http.StatusServiceUnavailable, "DATABASE_CLOSED", "Database is unavailable", err)
	default:
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "Write failed", err)
	}
}

// decodeJSON reads a bounded JSON body into dst. The body is read in full
// before decoding so an oversized body surfaces as *http.MaxBytesError.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "Request body too large", nil)
			return false
		}
		respondError(w, r, http.StatusBadRequest, "INVALID_JSON", "Request body could not be read", nil)
		return false
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_JSON", "Request body is not valid JSON", nil)
		return false
	}
	return true
}
