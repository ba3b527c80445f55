// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package api

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lumen/internal/cache"
	"github.com/tomtom215/lumen/internal/grid"
	"github.com/tomtom215/lumen/internal/recommend"
)

// GridStore is the read side of the grid feature store used by the API.
// *grid.Store satisfies it.
type GridStore interface {
	Features(ctx context.Context, gridID string) (recommend.FeatureVector, error)
	List(ctx context.Context, limit int) ([]grid.Cell, error)
	Count(ctx context.Context) (int, error)
}

// ErrNilEngine is returned when a handler is built without an engine.
var ErrNilEngine = errors.New("api: recommendation engine is required")

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_health.go: index and health endpoints
//   - handlers_recommend.go: predict, grid list and grid recommendation
type Handler struct {
	engine    *recommend.Engine
	grids     GridStore
	cache     *cache.LRU[recommend.Recommendation]
	logger    zerolog.Logger
	startTime time.Time
	version   string
}

// HandlerOption customizes a Handler.
type HandlerOption func(*Handler)

// WithGridStore serves /api/grids and /api/reco from store. Without it those
// endpoints answer 503.
func WithGridStore(store GridStore) HandlerOption {
	return func(h *Handler) {
		h.grids = store
	}
}

// WithCache memoizes /api/reco responses.
func WithCache(c *cache.LRU[recommend.Recommendation]) HandlerOption {
	return func(h *Handler) {
		h.cache = c
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(version string) HandlerOption {
	return func(h *Handler) {
		h.version = version
	}
}

// NewHandler creates the API handler. The engine carries the scorer loaded
// at startup and is shared by every request.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(engine *recommend.Engine, logger zerolog.Logger, opts ...HandlerOption) (*Handler, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	h := &Handler{
		engine:    engine,
		logger:    logger.With().Str("component", "api").Logger(),
		startTime: time.Now(),
		version:   "dev",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// ClearCache drops every memoized recommendation. Call it after the grid
// features are reloaded.
func (h *Handler) ClearCache() {
	if h.cache != nil {
		h.cache.Clear()
		h.logger.Info().Msg("Recommendation cache cleared")
	}
}
