// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/crossfeed/internal/api"
	"github.com/tomtom215/crossfeed/internal/auxscore"
	"github.com/tomtom215/crossfeed/internal/config"
	"github.com/tomtom215/crossfeed/internal/database"
	"github.com/tomtom215/crossfeed/internal/logging"
	"github.com/tomtom215/crossfeed/internal/recommend"
	"github.com/tomtom215/crossfeed/internal/supervisor"
	"github.com/tomtom215/crossfeed/internal/supervisor/services"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and scheduled retention",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
}

// components is everything built over one open database.
type components struct {
	store     *recommend.Store
	engine    *recommend.Engine
	retention *recommend.RetentionManager
}

func buildComponents(db *database.DB, cfg *config.Config) (*components, error) {
	var opts []recommend.Option
	if cfg.Aux.Enabled {
		scorer, err := auxscore.New(auxscore.Config{
			URL:              cfg.Aux.URL,
			Timeout:          cfg.Aux.Timeout,
			RatePerSecond:    cfg.Aux.RatePerSecond,
			Burst:            cfg.Aux.Burst,
			FailureThreshold: cfg.Aux.FailureThreshold,
			OpenTimeout:      cfg.Aux.OpenTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("auxiliary scorer: %w", err)
		}
		opts = append(opts, recommend.WithAuxScorer(scorer))
	}

	scoring := recommend.DefaultConfig()
	scoring.AuxWeight = cfg.Scoring.AuxWeight
	engine, err := recommend.NewEngine(db, scoring, opts...)
	if err != nil {
		return nil, fmt.Errorf("scoring engine: %w", err)
	}

	return &components{
		store:     recommend.NewStore(db),
		engine:    engine,
		retention: recommend.NewRetentionManager(db),
	}, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if !cfg.Retention.Enabled && !cfg.Server.Enabled {
		return errors.New("nothing to serve: both retention and server are disabled")
	}

	logging.Info().
		Str("driver", cfg.Database.Driver).
		Str("path", cfg.Database.Path).
		Msg("Starting crossfeed")

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer closeDatabase(db)

	c, err := buildComponents(db, cfg)
	if err != nil {
		return err
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	if cfg.Retention.Enabled {
		tree.AddDataService(services.NewRetentionService(c.retention, services.RetentionServiceConfig{
			DaysToKeep:   cfg.Retention.DaysToKeep,
			Interval:     cfg.Retention.Interval,
			RunOnStartup: cfg.Retention.RunOnStartup,
		}))
		logging.Info().
			Int("days_to_keep", cfg.Retention.DaysToKeep).
			Dur("interval", cfg.Retention.Interval).
			Msg("Retention scheduled")
	}

	if cfg.Server.Enabled {
		handler := api.NewHandler(db, c.store, c.engine, c.retention)
		router := api.NewRouter(handler, api.RouterConfig{
			CORSOrigins:       cfg.Server.CORSOrigins,
			RateLimitRequests: cfg.Server.RateLimitRequests,
			RateLimitWindow:   cfg.Server.RateLimitWindow,
			RateLimitDisabled: cfg.Server.RateLimitDisabled,
		})
		server := &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
		logging.Info().Str("addr", server.Addr).Msg("HTTP API enabled")
	}

	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	logging.Info().Msg("Shutdown complete")
	return nil
}
