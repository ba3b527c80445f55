// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

/*
Package middleware provides infrastructure HTTP middleware shared by the API
router.

Key Components:

  - RequestID: reuses or generates X-Request-ID and stores it in the logging
    context
  - PrometheusMetrics: request count, latency and in-flight gauge labeled by
    the chi route pattern
  - RequestLogger: one structured log line per completed request

All middleware has the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.RequestLogger)

Route-specific concerns (CORS, rate limiting) live in package api.
*/
package middleware
