// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package recommend

// Option customises a Store, Engine or RetentionManager.
type Option func(*options)

type options struct {
	clock Clock
	aux   AuxScorer
}

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithAuxScorer binds an auxiliary scorer to an Engine. Other components
// ignore it.
func WithAuxScorer(a AuxScorer) Option {
	return func(o *options) {
		o.aux = a
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: RealClock{}}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
