// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

/*
Package api serves the preference ledger over HTTP with the Chi router.

Endpoints:

	GET    /healthz                  database ping, schema version
	GET    /metrics                  Prometheus exposition
	GET    /api/v1/stats?platform=   ledger summary (unified when empty)
	POST   /api/v1/interactions      record an interaction
	DELETE /api/v1/interactions      retract an interaction
	POST   /api/v1/skips             record a passed-over item
	POST   /api/v1/rank              rank candidate items for a platform
	POST   /api/v1/score?platform=   per-term score of one item
	POST   /api/v1/purge?days=       run retention now

Every response uses the models.APIResponse envelope:

	{"status":"success","data":{...},"metadata":{"timestamp":"...","correlation_id":"1f2e3d4c"}}

Write errors map to status codes: validation failures are 400 with the
failed fields in error.details, a lock timeout is 503 with Retry-After, and
any other storage error is 500. Read endpoints never fail on storage
errors; scores degrade term by term and stats come back empty.

Usage:

	handler := api.NewHandler(db, store, engine, retention)
	router := api.NewRouter(handler, api.RouterConfig{
	    RateLimitRequests: 600,
	    RateLimitWindow:   time.Minute,
	})
	srv := &http.Server{Addr: ":9464", Handler: router}
*/
package api
