// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package recommend

import "context"

// AuxScorer supplies an extra relevance signal for a title, such as a
// model served over HTTP. Implementations must be safe for concurrent use.
// Errors make the auxiliary term contribute zero.
type AuxScorer interface {
	ScoreAux(ctx context.Context, title string) (float64, error)
}

// AuxScorerFunc adapts a function to AuxScorer.
type AuxScorerFunc func(ctx context.Context, title string) (float64, error)

// ScoreAux calls f.
func (f AuxScorerFunc) ScoreAux(ctx context.Context, title string) (float64, error) {
	return f(ctx, title)
}
