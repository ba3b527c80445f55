// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/lumen/internal/metrics"
)

func newMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Use(RequestLogger)
	r.Get("/mw-test/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func TestPrometheusMetrics_RoutePatternLabel(t *testing.T) {
	t.Parallel()

	router := newMetricsRouter()
	for _, path := range []string{"/mw-test/1", "/mw-test/2", "/mw-test/boom"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	ok := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/mw-test/{id}", "200")
	if got := testutil.ToFloat64(ok); got != 2 {
		t.Errorf("200 count = %v, want 2", got)
	}
	failed := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/mw-test/{id}", "500")
	if got := testutil.ToFloat64(failed); got != 1 {
		t.Errorf("500 count = %v, want 1", got)
	}
}

func TestPrometheusMetrics_Unmatched(t *testing.T) {
	t.Parallel()

	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/nowhere", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
	c := metrics.APIRequestsTotal.WithLabelValues(http.MethodPost, unmatchedRoute, "418")
	if got := testutil.ToFloat64(c); got != 1 {
		t.Errorf("unmatched count = %v, want 1", got)
	}
}

func TestPrometheusMetrics_DefaultStatus(t *testing.T) {
	t.Parallel()

	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/silent", nil))

	c := metrics.APIRequestsTotal.WithLabelValues(http.MethodDelete, unmatchedRoute, "200")
	if got := testutil.ToFloat64(c); got != 1 {
		t.Errorf("silent handler count = %v, want 1", got)
	}
}
