// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

/*
Package services adapts Crossfeed components to suture.Service.

HTTPServerService turns http.Server's blocking ListenAndServe into a
context-aware Serve with graceful shutdown. RetentionService runs the
ledger purge on a ticker.

Both return ctx.Err() when asked to stop and an error when they fail, so
the supervisor restarts them with backoff. Both implement fmt.Stringer to
name themselves in supervisor logs.
*/
package services
