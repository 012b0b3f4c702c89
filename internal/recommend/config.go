// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package recommend

import (
	"fmt"
	"math"
)

// Config contains the scoring parameters for an Engine.
type Config struct {
	// Weights sets the contribution of each score term. Unlike the
	// multipliers they are not normalized.
	Weights TermWeights `json:"weights"`

	// AuxWeight scales the auxiliary scorer's output. Zero disables the
	// auxiliary term even when a scorer is bound.
	// Default: 0.
	AuxWeight float64 `json:"aux_weight"`

	// RecencyWindowDays is the age at which the recency term reaches zero.
	// Default: 30.
	RecencyWindowDays float64 `json:"recency_window_days"`
}

// TermWeights are the per-term weights of the weighted sum.
type TermWeights struct {
	Source      float64 `json:"source"`
	Keyword     float64 `json:"keyword"`
	Correlation float64 `json:"correlation"`
	Recency     float64 `json:"recency"`
}

// Interaction multipliers applied after the weighted sum. They are checked
// in this order; the first interaction type present on the item wins.
const (
	DislikedMultiplier = 0.01
	StarredMultiplier  = 1.5
	ConsumedMultiplier = 0.1

	// boostShare is the fraction of cross_platform_boost added to a
	// source's own score.
	boostShare = 0.5

	// sourceDamping flattens large source scores: s / (1 + k|s|).
	sourceDamping = 0.1
)

// DefaultConfig returns the standard weights.
func DefaultConfig() Config {
	return Config{
		Weights: TermWeights{
			Source:      0.30,
			Keyword:     0.40,
			Correlation: 0.10,
			Recency:     0.20,
		},
		RecencyWindowDays: 30,
	}
}

// Validate checks the configuration.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (c Config) Validate() error {
	weights := map[string]float64{
		"source":      c.Weights.Source,
		"keyword":     c.Weights.Keyword,
		"correlation": c.Weights.Correlation,
		"recency":     c.Weights.Recency,
		"aux":         c.AuxWeight,
	}
	for name, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%s weight must be a finite non-negative number, got %v", name, w)
		}
	}
	if c.RecencyWindowDays <= 0 {
		return fmt.Errorf("recency_window_days must be positive, got %v", c.RecencyWindowDays)
	}
	return nil
}
