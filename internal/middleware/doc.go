// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

/*
Package middleware provides the HTTP middleware shared by the API router.

  - RequestID: request and correlation ID propagation
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern

Both take and return http.Handler so they plug into chi directly:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

RequestID must run first so that log lines written by later middleware and
handlers carry the correlation ID.
*/
package middleware
