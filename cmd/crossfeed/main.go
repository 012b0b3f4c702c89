// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

// Command crossfeed runs the cross-platform content preference engine.
//
//	crossfeed serve                 run the HTTP API and scheduled retention
//	crossfeed purge --days 90       one-shot retention pass (for cron)
//	crossfeed stats --platform news print ledger statistics as JSON
//	crossfeed migrate               bring the schema up to date and report it
//
// Configuration comes from defaults, then config.yaml (or --config), then
// the environment. See internal/config for the variables.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
