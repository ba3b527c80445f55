// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package recommend

import (
	"errors"
	"fmt"
)

// DurationHours is the fixed dimming window of every recommendation.
const DurationHours = 3

// MaxReasons is the maximum number of reasons attached to a recommendation.
const MaxReasons = 3

// Direction tells whether a factor pushes illuminance down or argues for
// keeping it.
type Direction string

const (
	// DirectionUp means the factor argues for maintaining illuminance.
	DirectionUp Direction = "UP"
	// DirectionDown means the factor pushes illuminance lower.
	DirectionDown Direction = "DOWN"
)

// String returns the wire form of the direction.
func (d Direction) String() string {
	return string(d)
}

// DirectionOf maps a signed weight to a direction. Zero is DOWN.
func DirectionOf(weight float64) Direction {
	if weight > 0 {
		return DirectionUp
	}
	return DirectionDown
}

// Reason is one ranked explanation attached to a recommendation.
type Reason struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
	Label     string    `json:"label"`
}

// Contribution is a signed per-feature attribution produced by a
// contribution-capable scorer.
type Contribution struct {
	Key    string  `json:"key"`
	Weight float64 `json:"weight"`
}

// Recommendation is the assembled output for one grid cell.
type Recommendation struct {
	GridID        string   `json:"grid_id"`
	ExistingLx    float64  `json:"existing_lx"`
	RecommendedLx float64  `json:"recommended_lx"`
	DeltaPercent  float64  `json:"delta_percent"`
	DurationHours int      `json:"duration_hours"`
	Reasons       []Reason `json:"reasons"`

	// RawLx is the scorer output before the policy clamp.
	RawLx float64 `json:"-"`
}

// Capped reports whether the scorer asked for more light than the cell has.
func (r *Recommendation) Capped() bool {
	return r.RawLx > r.ExistingLx
}

// Scorer predicts a raw illuminance for a feature vector. The result is
// unconstrained; the policy clamp runs afterwards.
//
// Implementations must be safe for concurrent use and must not mutate
// internal state during Predict.
type Scorer interface {
	// Name identifies the scorer in logs and metrics.
	Name() string

	// Predict returns the raw illuminance in lux.
	Predict(fv FeatureVector) (float64, error)
}

// ContributionScorer is the optional attribution capability of a scorer.
// Contributions are ordered by FeatureOrder and exclude the bias term.
type ContributionScorer interface {
	Scorer
	Contributions(fv FeatureVector) ([]Contribution, error)
}

// Sentinel errors.
var (
	// ErrPrediction marks a scorer failure for a single input.
	ErrPrediction = errors.New("prediction failed")

	// ErrPolicyViolation marks a recommendation brighter than the existing level.
	ErrPolicyViolation = errors.New("policy violation: recommendation exceeds existing illuminance")

	// ErrNilScorer is returned when an engine is built without a scorer.
	ErrNilScorer = errors.New("scorer is required")
)

// PredictionError wraps a scorer failure for one grid cell.
type PredictionError struct {
	GridID string
	Scorer string
	Err    error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("grid %s: %s scorer: %v", e.GridID, e.Scorer, e.Err)
}

func (e *PredictionError) Unwrap() []error {
	return []error{ErrPrediction, e.Err}
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Scorer      string `json:"scorer"`
	Predictions int64  `json:"predictions"`
	Failures    int64  `json:"failures"`
	Capped      int64  `json:"capped"`
	Floored     int64  `json:"floored"`
	Degenerate  int64  `json:"degenerate"`
}
