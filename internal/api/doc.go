// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

/*
Package api serves dimming recommendations over HTTP.

Routes (chi router):

	GET  /            index with the registered routes
	GET  /health      liveness, scorer name and grid cell count
	POST /predict     recommendation for a posted feature vector
	GET  /api/grids   grid cells for map rendering (?limit=, ?area=)
	GET  /api/reco    recommendation for a stored grid cell (?grid_id=)
	GET  /metrics     Prometheus metrics

Every JSON response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "VALIDATION_ERROR", "message": "...", "details": {...}}}

Error mapping:

  - missing features: 400 VALIDATION_ERROR with details.missing
  - non-numeric feature or bad query parameter: 400 VALIDATION_ERROR
  - malformed JSON body: 400 BAD_REQUEST
  - unknown grid id: 404 NOT_FOUND
  - scorer failure: 500 PREDICTION_FAILED
  - grid features not loaded: 503 SERVICE_UNAVAILABLE
  - rate limit exceeded on /predict: 429 TOO_MANY_REQUESTS

Recommendations served by /api/reco are memoized in an LRU cache keyed by
grid id. The cache is optional; a nil cache disables it.
*/
package api
