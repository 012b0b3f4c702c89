// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package recommend

import "github.com/tomtom215/crossfeed/internal/models"

// Ledger update constants.
const (
	// CrossBoostFactor scales a source delta into the same source's
	// cross_platform_boost on the opposite platform.
	CrossBoostFactor = 0.2

	// CorrelationIncrement is added per co-occurring keyword pair.
	CorrelationIncrement = 0.1

	// CorrelationWindowDays bounds how far back opposite-platform activity
	// is sampled for correlations.
	CorrelationWindowDays = 7

	// CorrelationSampleLimit is the number of recent opposite-platform
	// interactions sampled.
	CorrelationSampleLimit = 50

	skipSourceDelta  = -0.1
	skipKeywordDelta = -0.05
)

// Delta is the pair of adjustments one interaction applies.
type Delta struct {
	Source  float64
	Keyword float64
}

// Negate returns the inverse adjustment.
func (d Delta) Negate() Delta {
	return Delta{Source: -d.Source, Keyword: -d.Keyword}
}

// DeltaFor returns the score adjustments for an interaction type and
// subtype. Consumed with no subtype is treated as marked, the weaker
// signal. Unknown types yield a zero delta.
//
//	consumed/clicked  +1.0 / +0.5
//	consumed/marked   +0.3 / +0.15
//	starred           +2.0 / +1.5
//	disliked          -2.0 / -1.0
func DeltaFor(t models.InteractionType, sub models.InteractionSubtype) Delta {
	switch t {
	case models.InteractionConsumed:
		if sub == models.SubtypeClicked {
			return Delta{Source: 1.0, Keyword: 0.5}
		}
		return Delta{Source: 0.3, Keyword: 0.15}
	case models.InteractionStarred:
		return Delta{Source: 2.0, Keyword: 1.5}
	case models.InteractionDisliked:
		return Delta{Source: -2.0, Keyword: -1.0}
	default:
		return Delta{}
	}
}

// SkipDelta is the weak negative applied by RecordSkip.
func SkipDelta() Delta {
	return Delta{Source: skipSourceDelta, Keyword: skipKeywordDelta}
}
