// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/lumen/internal/cache"
	"github.com/tomtom215/lumen/internal/recommend"
)

// Health status values.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// IndexResponse is the body of GET /.
type IndexResponse struct {
	OK     bool     `json:"ok"`
	Docs   string   `json:"docs"`
	Health string   `json:"health"`
	Routes []string `json:"routes,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK            bool             `json:"ok"`
	Status        string           `json:"status"`
	Version       string           `json:"version"`
	ModelLoaded   bool             `json:"model_loaded"`
	Scorer        string           `json:"scorer"`
	Policy        recommend.Policy `json:"policy"`
	GridLoaded    bool             `json:"grid_loaded"`
	GridCells     int              `json:"grid_cells"`
	Engine        recommend.Stats  `json:"engine"`
	Cache         *cache.Stats     `json:"cache,omitempty"`
	UptimeSeconds float64          `json:"uptime_seconds"`
}

// Health reports whether the scorer is loaded and the grid store answers.
// The server refuses to start without a scorer, so model_loaded is always
// true on a running server. A configured grid store that fails to count
// makes the status degraded.
//
// @Summary Health check
// @Tags Core
// @Produce json
// @Success 200 {object} APIResponse{data=HealthResponse} "Service health"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		OK:            true,
		Status:        StatusHealthy,
		Version:       h.version,
		ModelLoaded:   h.engine.Scorer() != nil,
		Scorer:        h.engine.Scorer().Name(),
		Policy:        h.engine.Policy(),
		Engine:        h.engine.Stats(),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	if h.grids != nil {
		n, err := h.grids.Count(r.Context())
		if err != nil {
			h.logger.Warn().Err(err).Msg("Grid store health check failed")
			resp.Status = StatusDegraded
		} else {
			resp.GridLoaded = true
			resp.GridCells = n
		}
	}

	if h.cache != nil {
		stats := h.cache.Stats()
		resp.Cache = &stats
	}

	NewResponseWriter(w, r).Success(resp)
}
