// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/crossfeed/internal/logging"
	"github.com/tomtom215/crossfeed/internal/models"
)

// Purger runs one retention pass. *recommend.RetentionManager satisfies it.
type Purger interface {
	Purge(ctx context.Context, daysToKeep int) (models.PurgeResult, error)
}

// RetentionServiceConfig schedules purges.
type RetentionServiceConfig struct {
	// DaysToKeep is passed to every Purge call.
	DaysToKeep int

	// Interval between purges. Default: 24h.
	Interval time.Duration

	// RunOnStartup purges once before the first tick.
	RunOnStartup bool
}

// RetentionService purges stale ledger rows on a fixed schedule. A failed
// purge is logged and retried at the next tick; it never stops the
// service.
type RetentionService struct {
	purger Purger
	config RetentionServiceConfig
	logger zerolog.Logger
}

// NewRetentionService returns a RetentionService for purger.
func NewRetentionService(purger Purger, cfg RetentionServiceConfig) *RetentionService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	return &RetentionService{
		purger: purger,
		config: cfg,
		logger: logging.WithComponent("retention-service"),
	}
}

// Serve implements suture.Service.
func (s *RetentionService) Serve(ctx context.Context) error {
	s.logger.Info().
		Int("days_to_keep", s.config.DaysToKeep).
		Dur("interval", s.config.Interval).
		Bool("run_on_startup", s.config.RunOnStartup).
		Msg("Retention service starting")

	if s.config.RunOnStartup {
		s.purge(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Retention service stopping")
			return ctx.Err()
		case <-ticker.C:
			s.purge(ctx)
		}
	}
}

func (s *RetentionService) purge(ctx context.Context) {
	result, err := s.purger.Purge(ctx, s.config.DaysToKeep)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Int64("deleted", result.Total()).
			Msg("Scheduled purge failed")
		return
	}
	s.logger.Debug().Int64("deleted", result.Total()).Msg("Scheduled purge finished")
}

// String names the service in supervisor logs.
func (s *RetentionService) String() string {
	return "retention-service"
}
