// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package scorers

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/lumen/internal/recommend/storage"
)

// LinearModel is a standardized linear regressor, the form an exported
// scaler + ElasticNet pipeline reduces to.
type LinearModel struct {
	intercept float64
	coef      []float64
	mean      []float64
	scale     []float64
}

// NewLinearModel validates a stored linear state.
func NewLinearModel(state *storage.LinearModelState) (*LinearModel, error) {
	if state == nil {
		return nil, errors.New("linear model state is missing")
	}
	n := len(state.Coef)
	if n == 0 {
		return nil, errors.New("linear model has no coefficients")
	}
	if len(state.Mean) != n || len(state.Scale) != n {
		return nil, fmt.Errorf("linear model shape mismatch: %d coef, %d mean, %d scale", n, len(state.Mean), len(state.Scale))
	}
	if !isFinite(state.Intercept) {
		return nil, fmt.Errorf("linear model intercept is %v", state.Intercept)
	}
	for i := 0; i < n; i++ {
		if !isFinite(state.Coef[i]) || !isFinite(state.Mean[i]) || !isFinite(state.Scale[i]) {
			return nil, fmt.Errorf("linear model term %d is not finite", i)
		}
		if state.Scale[i] == 0 {
			return nil, fmt.Errorf("linear model scale %d is zero", i)
		}
	}

	return &LinearModel{
		intercept: state.Intercept,
		coef:      append([]float64(nil), state.Coef...),
		mean:      append([]float64(nil), state.Mean...),
		scale:     append([]float64(nil), state.Scale...),
	}, nil
}

// Kind returns storage.KindLinear.
func (m *LinearModel) Kind() string {
	return storage.KindLinear
}

// NumFeatures returns the input width.
func (m *LinearModel) NumFeatures() int {
	return len(m.coef)
}

// Predict returns intercept + sum of the standardized terms.
func (m *LinearModel) Predict(x []float64) float64 {
	y := m.intercept
	for i := range m.coef {
		y += m.term(i, x[i])
	}
	return y
}

// Attribute returns the per-feature summands and the intercept.
func (m *LinearModel) Attribute(x []float64) (contribs []float64, bias float64) {
	contribs = make([]float64, len(m.coef))
	for i := range m.coef {
		contribs[i] = m.term(i, x[i])
	}
	return contribs, m.intercept
}

// State returns the serializable form.
func (m *LinearModel) State() *storage.ModelState {
	return &storage.ModelState{
		Kind: storage.KindLinear,
		Linear: &storage.LinearModelState{
			Intercept: m.intercept,
			Coef:      append([]float64(nil), m.coef...),
			Mean:      append([]float64(nil), m.mean...),
			Scale:     append([]float64(nil), m.scale...),
		},
	}
}

func (m *LinearModel) term(i int, v float64) float64 {
	return m.coef[i] * (v - m.mean[i]) / m.scale[i]
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
