// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

/*
Package services provides suture.Service wrappers for Lumen components.

Each wrapper implements the suture v4 Service interface

	type Service interface {
	    Serve(ctx context.Context) error
	}

and fmt.Stringer, which suture uses to name the service in event logs.

# Available Services

HTTPServerService wraps an *http.Server. ListenAndServe runs in a goroutine;
cancellation triggers Shutdown with a bounded timeout. A bind failure is
returned so suture restarts the service with backoff.

PeriodicService runs a maintenance Task on a ticker. Task errors are logged
and retried on the next tick. The server uses it for the recommendation cache
sweep, the uptime gauge and grid file reloads.

# Usage

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))

	sweeper, _ := services.NewPeriodicService("cache-sweeper", func(context.Context) error {
	    recoCache.CleanupExpired()
	    return nil
	}, services.PeriodicConfig{Interval: time.Minute}, logger)
	tree.AddMaintenanceService(sweeper)
*/
package services
