// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/lumen/internal/validation"
)

// maxPredictBody caps the /predict request body.
const maxPredictBody = 64 << 10

// GridsRequest holds the validated query of GET /api/grids.
type GridsRequest struct {
	// Limit caps the number of cells, 0 lists all of them.
	Limit int `query:"limit" validate:"gte=0,lte=100000"`

	// Area names the mapped district. A store holds a single area, so the
	// value is checked but does not filter.
	Area string `query:"area" validate:"omitempty,alphanum,max=32"`
}

// RecoRequest holds the validated query of GET /api/reco.
type RecoRequest struct {
	GridID string `query:"grid_id" validate:"required,grid_id"`
}

// paramError reports a query parameter that could not be parsed.
type paramError struct {
	Field string
	Value string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("%s must be an integer, got %q", e.Field, e.Value)
}

func (e *paramError) details() map[string]interface{} {
	return map[string]interface{}{"field": e.Field, "value": e.Value}
}

// parseGridsRequest reads and validates the /api/grids query.
func parseGridsRequest(r *http.Request) (*GridsRequest, error) {
	q := r.URL.Query()
	req := &GridsRequest{Area: strings.TrimSpace(q.Get("area"))}

	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &paramError{Field: "limit", Value: raw}
		}
		req.Limit = limit
	}

	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	return req, nil
}

// parseRecoRequest reads and validates the /api/reco query.
func parseRecoRequest(r *http.Request) (*RecoRequest, error) {
	req := &RecoRequest{GridID: strings.TrimSpace(r.URL.Query().Get("grid_id"))}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	return req, nil
}
