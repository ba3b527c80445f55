// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

/*
Package supervisor runs the server's long-lived services under a suture v4
supervisor tree.

# Overview

	RootSupervisor ("lumen")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── cache-sweeper   (drops expired recommendation cache entries)
	│   ├── uptime          (refreshes lumen_app_uptime_seconds)
	│   └── grid-reloader   (if grid.reload_interval > 0)
	└── APISupervisor ("api-layer")
	    └── http-server

Each layer counts failures on its own. A maintenance job that panics or
keeps failing is restarted with backoff and never takes the HTTP server
with it.

Supervisor events (start, failure, backoff, restart) are logged through
sutureslog into the slog bridge built by logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), cfg.Supervisor)
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))
	tree.AddMaintenanceService(sweeper)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Configuration

TreeConfig carries suture's restart knobs. Zero fields take the values from
DefaultTreeConfig, which match suture's own defaults.

# See Also

  - internal/supervisor/services: HTTP and periodic service wrappers
  - github.com/thejerf/suture/v4
*/
package supervisor
