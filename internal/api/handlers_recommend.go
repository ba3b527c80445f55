// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lumen/internal/grid"
	"github.com/tomtom215/lumen/internal/logging"
	"github.com/tomtom215/lumen/internal/metrics"
	"github.com/tomtom215/lumen/internal/recommend"
	"github.com/tomtom215/lumen/internal/validation"
)

// Predict handles POST /predict.
//
// The body is a JSON object with the six features and an optional grid_id:
//
//	{"night_traffic": 0.1, "cctv_density": 0.9, "park_within": 1,
//	 "commercial_density": 0.1, "residential_density": 0.9, "existing_lx": 25}
//
// Ratio features outside [0, 1] are clamped. park_within accepts booleans,
// numbers and O/X style tokens.
//
// The recommendation is not returned bare: it sits under "data" of the
// APIResponse envelope, next to "success" and "meta".
//
// @Summary Recommend a dimming level
// @Description Scores one grid cell from its six features. An optional grid_id is echoed back. The result never exceeds existing_lx and never drops below min(floor, existing_lx).
// @Tags Recommend
// @Accept json
// @Produce json
// @Param features body recommend.FeatureVector true "Cell features, plus an optional grid_id"
// @Success 200 {object} APIResponse{data=recommend.Recommendation} "Recommendation"
// @Failure 400 {object} APIResponse "Malformed body or missing feature"
// @Failure 413 {object} APIResponse "Body too large"
// @Failure 429 {object} APIResponse "Rate limit exceeded"
// @Failure 500 {object} APIResponse "Scorer failed"
// @Router /predict [post]
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	r.Body = http.MaxBytesReader(w, r.Body, maxPredictBody)

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rw.Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "request body too large")
			return
		}
		rw.BadRequest("invalid JSON body")
		return
	}
	if body == nil {
		body = map[string]any{}
	}

	fv, err := recommend.ParseFeatures(body)
	if err != nil {
		writeFeatureError(rw, err)
		return
	}

	gridID := gridIDOf(body["grid_id"])
	if gridID != "" {
		if verr := validation.ValidateVar("grid_id", gridID, "grid_id"); verr != nil {
			rw.RequestValidationError(verr)
			return
		}
	}

	rec, err := h.recommend(r.Context(), gridID, fv)
	if err != nil {
		rw.PredictionFailed(err)
		return
	}
	rw.Success(rec)
}

// Grids handles GET /api/grids, listing cells with their map centroid and
// brightness proxy.
//
// @Summary List grid cells
// @Description Returns stored cells with their map centroid and night-time brightness proxy.
// @Tags Recommend
// @Produce json
// @Param limit query int false "Maximum number of cells, 0 for all" default(0) minimum(0) maximum(100000)
// @Param area query string false "Mapped district name"
// @Success 200 {object} APIResponse{data=[]grid.Cell} "Cells with pagination meta"
// @Failure 400 {object} APIResponse "Invalid query"
// @Failure 503 {object} APIResponse "No grid feature store loaded"
// @Router /api/grids [get]
func (h *Handler) Grids(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, err := parseGridsRequest(r)
	if err != nil {
		writeRequestError(rw, err)
		return
	}
	if h.grids == nil {
		rw.ServiceUnavailable(grid.ErrNotLoaded.Error())
		return
	}

	cells, err := h.grids.List(r.Context(), req.Limit)
	if err != nil {
		writeGridError(rw, err, "")
		return
	}
	if cells == nil {
		cells = []grid.Cell{}
	}

	total, err := h.grids.Count(r.Context())
	if err != nil {
		total = len(cells)
	}

	rw.SuccessWithMeta(cells, &APIMeta{Pagination: &PaginationMeta{
		Total:   total,
		Count:   len(cells),
		Limit:   req.Limit,
		HasMore: len(cells) < total,
	}})
}

// Reco handles GET /api/reco, recommending for a stored grid cell. Results
// are memoized per grid id when a cache is configured.
//
// @Summary Recommend for a stored cell
// @Description Looks up the stored features of grid_id and scores them. meta.cached is set when the answer came from the cache.
// @Tags Recommend
// @Produce json
// @Param grid_id query string true "Grid cell identifier"
// @Success 200 {object} APIResponse{data=recommend.Recommendation} "Recommendation"
// @Failure 400 {object} APIResponse "Missing or malformed grid_id"
// @Failure 404 {object} APIResponse "Unknown grid cell"
// @Failure 503 {object} APIResponse "No grid feature store loaded"
// @Router /api/reco [get]
func (h *Handler) Reco(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, err := parseRecoRequest(r)
	if err != nil {
		writeRequestError(rw, err)
		return
	}

	if h.cache != nil {
		if rec, ok := h.cache.Get(req.GridID); ok {
			rw.SuccessWithMeta(&rec, &APIMeta{Cached: true})
			return
		}
	}

	if h.grids == nil {
		rw.ServiceUnavailable(grid.ErrNotLoaded.Error())
		return
	}

	fv, err := h.grids.Features(r.Context(), req.GridID)
	if err != nil {
		writeGridError(rw, err, req.GridID)
		return
	}

	rec, err := h.recommend(r.Context(), req.GridID, fv)
	if err != nil {
		rw.PredictionFailed(err)
		return
	}

	if h.cache != nil {
		h.cache.Add(req.GridID, *rec)
	}
	rw.Success(rec)
}

// recommend runs the engine and records the outcome metrics.
//
//nolint:gocritic // hugeParam: fv passed by value for immutability
func (h *Handler) recommend(ctx context.Context, gridID string, fv recommend.FeatureVector) (*recommend.Recommendation, error) {
	scorer := h.engine.Scorer().Name()

	rec, err := h.engine.Recommend(gridID, fv)
	if err != nil {
		metrics.RecordPredictionFailure(scorer)
		return nil, err
	}

	outcome := metrics.Outcome(rec.ExistingLx, rec.RawLx, rec.DeltaPercent)
	metrics.RecordRecommendation(scorer, outcome, rec.DeltaPercent)
	logging.Ctx(ctx).Debug().
		Str("grid_id", gridID).
		Float64("existing_lx", rec.ExistingLx).
		Float64("recommended_lx", rec.RecommendedLx).
		Str("outcome", outcome).
		Msg("Recommendation served")
	return rec, nil
}

// gridIDOf renders the optional grid_id of a predict body. Numeric ids are
// accepted as JSON numbers.
func gridIDOf(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

func writeFeatureError(rw *ResponseWriter, err error) {
	var missing *recommend.MissingFeatureError
	var invalid *recommend.InvalidFeatureError
	switch {
	case errors.As(err, &missing):
		rw.ValidationError(err.Error(), map[string]interface{}{"missing": missing.Keys})
	case errors.As(err, &invalid):
		rw.ValidationError(err.Error(), map[string]interface{}{"field": invalid.Key})
	default:
		rw.BadRequest(err.Error())
	}
}

func writeRequestError(rw *ResponseWriter, err error) {
	var verr *validation.RequestValidationError
	var perr *paramError
	switch {
	case errors.As(err, &verr):
		rw.RequestValidationError(verr)
	case errors.As(err, &perr):
		rw.ValidationError(perr.Error(), perr.details())
	default:
		rw.BadRequest(err.Error())
	}
}

func writeGridError(rw *ResponseWriter, err error, gridID string) {
	switch {
	case errors.Is(err, grid.ErrGridNotFound):
		rw.NotFound(fmt.Sprintf("grid cell with ID '%s' not found", gridID))
	case errors.Is(err, grid.ErrNotLoaded):
		rw.ServiceUnavailable(err.Error())
	default:
		rw.DatabaseError(err)
	}
}
