// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

/*
Package supervisor runs Crossfeed's long-lived services under suture v4.

	RootSupervisor ("crossfeed")
	├── DataSupervisor ("data-layer")
	│   └── RetentionService (if RETENTION_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (if SERVER_ENABLED)

Crashed services restart with suture's backoff. Failures are counted per
layer, so a purge that keeps failing never restarts the HTTP server.
Supervisor events go to slog through sutureslog, which in turn writes to
zerolog via logging.NewSlogLogger.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewRetentionService(retention, services.RetentionServiceConfig{
	    DaysToKeep: 90,
	    Interval:   24 * time.Hour,
	}))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

After Serve returns, UnstoppedServiceReport names any service that missed
the shutdown timeout.
*/
package supervisor
