// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Grid feature store queries (DuckDB)
// - API endpoint latency and throughput
// - Recommendation outcomes per scorer
// - Batch, synthetic and report runs
// - Recommendation cache efficiency

// Recommendation outcomes.
const (
	OutcomeDimmed     = "dimmed"
	OutcomeKept       = "kept"
	OutcomeCapped     = "capped"
	OutcomeDegenerate = "degenerate"
	OutcomeFailed     = "failed"
)

var (
	// Grid Store Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	GridCells = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "grid_cells_loaded",
			Help: "Number of grid cells in the feature store",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendations by scorer and outcome",
		},
		[]string{"scorer", "outcome"}, // dimmed, kept, capped, degenerate, failed
	)

	RecommendationDelta = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_delta_percent",
			Help:    "Distribution of recommended illuminance change in percent (always <= 0)",
			Buckets: []float64{-60, -50, -40, -30, -20, -10, -5, -1, 0},
		},
		[]string{"scorer"},
	)

	ModelInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scorer_info",
			Help: "Active scorer (value is always 1)",
		},
		[]string{"scorer", "kind", "version"},
	)

	// Run Metrics (batch, synth, report)
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "run_duration_seconds",
			Help:    "Duration of offline runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"kind"},
	)

	RunRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "run_rows_total",
			Help: "Rows handled by offline runs",
		},
		[]string{"kind", "status"}, // written, skipped, capped
	)

	RunErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "run_errors_total",
			Help: "Offline runs that failed",
		},
		[]string{"kind", "error_type"}, // policy_violation, input, other
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (capacity or TTL)",
		},
		[]string{"cache_type"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a grid store query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a rejected request.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// Outcome classifies a recommendation for the outcome label.
func Outcome(existingLx, rawLx, deltaPercent float64) string {
	switch {
	case existingLx <= 0:
		return OutcomeDegenerate
	case rawLx > existingLx:
		return OutcomeCapped
	case deltaPercent < 0:
		return OutcomeDimmed
	default:
		return OutcomeKept
	}
}

// RecordRecommendation records one assembled recommendation.
func RecordRecommendation(scorer, outcome string, deltaPercent float64) {
	RecommendationsTotal.WithLabelValues(scorer, outcome).Inc()
	if outcome != OutcomeDegenerate {
		RecommendationDelta.WithLabelValues(scorer).Observe(deltaPercent)
	}
}

// RecordPredictionFailure records a scorer failure.
func RecordPredictionFailure(scorer string) {
	RecommendationsTotal.WithLabelValues(scorer, OutcomeFailed).Inc()
}

// SetModelInfo publishes the active scorer.
func SetModelInfo(scorer, kind string, version int) {
	ModelInfo.Reset()
	ModelInfo.WithLabelValues(scorer, kind, strconv.Itoa(version)).Set(1)
}

// RecordRun records an offline run. errorType is empty on success.
func RecordRun(kind string, duration time.Duration, written, skipped, capped int, errorType string) {
	RunDuration.WithLabelValues(kind).Observe(duration.Seconds())
	RunRows.WithLabelValues(kind, "written").Add(float64(written))
	RunRows.WithLabelValues(kind, "skipped").Add(float64(skipped))
	RunRows.WithLabelValues(kind, "capped").Add(float64(capped))
	if errorType != "" {
		RunErrors.WithLabelValues(kind, errorType).Inc()
	}
}

// SetAppInfo publishes build information.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}
