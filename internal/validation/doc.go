// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps a thread-safe singleton validator with user-friendly messages and
// a conversion to the API's VALIDATION_ERROR body. Fields are reported under
// their json, query or koanf tag name, so a bad report option reads
// "lamp_watt must be greater than 0" and a bad query parameter reads
// "limit must be at most 5000".
//
// # Quick Start
//
//	type gridsQuery struct {
//	    Limit int `query:"limit" validate:"min=0,max=5000"`
//	}
//
//	if verr := validation.ValidateStruct(&q); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// Single values, such as a grid id taken from the query string, go through
// ValidateVar:
//
//	if verr := validation.ValidateVar("grid_id", id, "required,grid_id"); verr != nil {
//	    ...
//	}
//
// # Custom Tags
//
//	grid_id  1-64 characters from [A-Za-z0-9._-]
//
// # Error Messages
//
//	required     -> "grid_id is required"
//	min=1        -> "limit must be at least 1"
//	lte=24       -> "hours must be less than or equal to 24"
//	oneof=a b    -> "scorer must be one of: a b"
//	len=3        -> "slot_alpha must have length 3"
//
// # Thread Safety
//
// The singleton validator is initialized once and safe for concurrent use.
// It caches struct reflection information per type.
package validation
