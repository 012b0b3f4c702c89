// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/tomtom215/crossfeed/internal/logging"
)

type contextKey string

// RequestIDKey holds the request ID in a request context.
const RequestIDKey contextKey = "request_id"

// Header names read from upstream proxies and echoed back.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

// maxHeaderIDLen bounds IDs accepted from clients.
const maxHeaderIDLen = 64

// RequestID tags each request with a request ID (a UUID unless the client
// sent one) and a correlation ID. The correlation ID reaches every log
// line of the ledger writes the request triggers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := headerID(r, HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		if id := headerID(r, HeaderCorrelationID); id != "" {
			ctx = logging.ContextWithCorrelationID(ctx, id)
		} else {
			ctx = logging.ContextWithNewCorrelationID(ctx)
		}

		w.Header().Set(HeaderRequestID, requestID)
		w.Header().Set(HeaderCorrelationID, logging.CorrelationIDFromContext(ctx))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from ctx.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func headerID(r *http.Request, name string) string {
	id := r.Header.Get(name)
	if len(id) > maxHeaderIDLen {
		return ""
	}
	for _, c := range id {
		if c < 0x21 || c > 0x7E {
			return ""
		}
	}
	return id
}
