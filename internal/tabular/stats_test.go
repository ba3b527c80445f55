// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package tabular

import (
	"math"
	"testing"
)

func TestQuantile(t *testing.T) {
	t.Parallel()

	values := []float64{4, 1, 3, 2, math.NaN(), 5}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.05, 1.2},
		{0.3, 2.2},
		{0.5, 3},
		{0.7, 3.8},
		{0.95, 4.8},
		{1, 5},
	}
	for _, tt := range tests {
		if got := Quantile(values, tt.p); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Quantile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	if !math.IsNaN(Quantile(nil, 0.5)) {
		t.Error("Quantile(empty) should be NaN")
	}
	if !math.IsNaN(Quantile(values, 1.5)) {
		t.Error("Quantile(p > 1) should be NaN")
	}
	if got := Quantile([]float64{7}, 0.3); got != 7 {
		t.Errorf("Quantile(single) = %v, want 7", got)
	}
}

func TestIsClose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b float64
		want bool
	}{
		{2, 2, true},
		{2.000001, 2, true},
		{2.001, 2, false},
		{25, 25.0001, true},
		{0, 1e-9, true},
		{0, 1e-6, false},
	}
	for _, tt := range tests {
		if got := IsClose(tt.a, tt.b); got != tt.want {
			t.Errorf("IsClose(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestClip(t *testing.T) {
	t.Parallel()
	if Clip(-1, 0, 1) != 0 || Clip(2, 0, 1) != 1 || Clip(0.4, 0, 1) != 0.4 {
		t.Error("Clip() out of bounds")
	}
}
