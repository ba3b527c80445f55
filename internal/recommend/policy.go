// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package recommend

import (
	"fmt"
	"math"
	"strconv"
)

// DefaultFloorLx is the minimum safe illuminance.
const DefaultFloorLx = 2.0

// Policy is the non-negotiable floor and ceiling applied to raw predictions.
//
// The ceiling is always the existing illuminance. The floor collapses to the
// existing illuminance when that is already below Floor, so the clamp range
// is never empty.
type Policy struct {
	Floor float64 `json:"floor" koanf:"floor"`
}

// DefaultPolicy returns the policy with the default 2 lx floor.
func DefaultPolicy() Policy {
	return Policy{Floor: DefaultFloorLx}
}

// Validate checks the floor.
func (p Policy) Validate() error {
	if p.Floor < 0 || math.IsNaN(p.Floor) || math.IsInf(p.Floor, 0) {
		return fmt.Errorf("policy.floor must be a non-negative finite value, got %v", p.Floor)
	}
	return nil
}

// Bounds returns the clamp range for an existing illuminance.
func (p Policy) Bounds(existing float64) (lo, hi float64) {
	return math.Min(p.Floor, existing), existing
}

// Clamp maps a raw prediction into [min(Floor, existing), existing].
// A non-positive existing illuminance yields 0.
func (p Policy) Clamp(raw, existing float64) float64 {
	if existing <= 0 {
		return 0
	}
	lo, hi := p.Bounds(existing)
	v := math.Min(raw, existing)
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Floored reports whether rec sits on the floor of the clamp range.
func (p Policy) Floored(rec, existing float64) bool {
	if existing <= 0 {
		return false
	}
	lo, _ := p.Bounds(existing)
	return rec == lo && lo < existing
}

// CheckInvariant fails with *PolicyViolationError when rec exceeds existing.
func (p Policy) CheckInvariant(gridID string, rec, existing float64) error {
	if rec > existing {
		return &PolicyViolationError{Rows: []ViolationRow{{GridID: gridID, ExistingLx: existing, RecommendedLx: rec}}}
	}
	return nil
}

// RawDeltaPercent is the unrounded relative change in percent, 0 when
// existing is non-positive.
func RawDeltaPercent(rec, existing float64) float64 {
	if existing <= 0 {
		return 0
	}
	return (rec - existing) / existing * 100
}

// DeltaPercent is RawDeltaPercent rounded to one decimal.
func DeltaPercent(rec, existing float64) float64 {
	return Round(RawDeltaPercent(rec, existing), 1)
}

// Round rounds v to the given number of decimals using correctly rounded
// decimal conversion (ties to even on the exact binary value).
func Round(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return v
	}
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

// ViolationRow is one offending row of a policy violation.
type ViolationRow struct {
	GridID        string  `json:"grid_id"`
	ExistingLx    float64 `json:"existing_lx"`
	RecommendedLx float64 `json:"recommended_lx"`
}

// PolicyViolationError lists recommendations brighter than their existing
// illuminance. It is never expected in correct operation.
type PolicyViolationError struct {
	Rows  []ViolationRow
	Total int
}

func (e *PolicyViolationError) Error() string {
	total := e.Total
	if total < len(e.Rows) {
		total = len(e.Rows)
	}
	msg := fmt.Sprintf("%d recommendation(s) exceed existing illuminance", total)
	for _, r := range e.Rows {
		msg += fmt.Sprintf("; grid %s: existing=%g recommended=%g", r.GridID, r.ExistingLx, r.RecommendedLx)
	}
	return msg
}

func (e *PolicyViolationError) Unwrap() error {
	return ErrPolicyViolation
}
