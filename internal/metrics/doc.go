// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

/*
Package metrics provides Prometheus metrics for the recommendation service and
the offline runs.

All collectors are registered on the default registry through promauto and
exposed at /metrics:

	curl http://localhost:8000/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rejected requests (counter)
    Labels: endpoint

Recommendation Metrics:
  - recommendations_total: Assembled recommendations (counter)
    Labels: scorer, outcome (dimmed, kept, capped, degenerate, failed)
  - recommendation_delta_percent: Change in illuminance (histogram)
    Labels: scorer
  - scorer_info: Active scorer, always 1 (gauge)
    Labels: scorer, kind, version

Grid Store Metrics:
  - duckdb_query_duration_seconds: Query time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type
  - grid_cells_loaded: Cells in the feature store (gauge)

Run Metrics:
  - run_duration_seconds: Offline run time (histogram)
    Labels: kind (batch, synth, report)
  - run_rows_total: Rows handled (counter)
    Labels: kind, status (written, skipped, capped)
  - run_errors_total: Failed runs (counter)
    Labels: kind, error_type

Cache Metrics:
  - cache_hits_total, cache_misses_total, cache_evictions_total (counters)
  - cache_entries (gauge)
    Labels: cache_type

# Usage

	start := time.Now()
	rows, err := db.QueryContext(ctx, query, gridID)
	metrics.RecordDBQuery("SELECT", "grid_features", time.Since(start), err)

	rec, err := engine.Recommend(gridID, fv)
	if err != nil {
	    metrics.RecordPredictionFailure(scorer)
	} else {
	    metrics.RecordRecommendation(scorer, metrics.Outcome(rec.ExistingLx, rec.RawLx, rec.DeltaPercent), rec.DeltaPercent)
	}

# Alerting Examples

	# Scorer failures
	sum(rate(recommendations_total{outcome="failed"}[5m])) > 0

	# Model predicting brighter than existing on many cells
	sum(rate(recommendations_total{outcome="capped"}[1h]))
	  / sum(rate(recommendations_total[1h])) > 0.2

	# Slow feature lookups
	histogram_quantile(0.95, rate(duckdb_query_duration_seconds_bucket[5m])) > 0.05
*/
package metrics
