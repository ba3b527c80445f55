// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package scorers

import (
	"math"
	"testing"

	"github.com/tomtom215/lumen/internal/recommend"
)

const eps = 1e-9

func TestRuleScorer_Name(t *testing.T) {
	t.Parallel()
	if got := NewRuleScorer().Name(); got != "rule" {
		t.Errorf("Name() = %q, want rule", got)
	}
}

func TestMaxDrop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lx   float64
		want float64
	}{
		{25, 0.50},
		{15, 0.42},
		{10, 0.35},
		{24.9, 0.35},
		{100, 0.35},
		{0, 0.35},
	}
	for _, tt := range tests {
		if got := MaxDrop(tt.lx); got != tt.want {
			t.Errorf("MaxDrop(%v) = %v, want %v", tt.lx, got, tt.want)
		}
	}
}

func TestRuleScorer_Components(t *testing.T) {
	t.Parallel()

	r := NewRuleScorer()

	t.Run("shielded cell does not dim", func(t *testing.T) {
		t.Parallel()
		c := r.Components(recommend.NewFeatureVector(0.9, 0.1, false, 0.8, 0.1, 25))
		if math.Abs(c.DimRaw-0.17) > eps {
			t.Errorf("DimRaw = %v, want 0.17", c.DimRaw)
		}
		if math.Abs(c.Shield-1.595) > eps {
			t.Errorf("Shield = %v, want 1.595", c.Shield)
		}
		if c.Dim != 0 || c.DropRatio != 0 {
			t.Errorf("Dim, DropRatio = %v, %v, want 0, 0", c.Dim, c.DropRatio)
		}
	})

	t.Run("saturated dim", func(t *testing.T) {
		t.Parallel()
		c := r.Components(recommend.NewFeatureVector(0.05, 0.8, true, 0.05, 0.9, 25))
		if c.Dim != 1 {
			t.Errorf("Dim = %v, want 1", c.Dim)
		}
		want := 0.5 * math.Tanh(2.6)
		if math.Abs(c.DropRatio-want) > eps {
			t.Errorf("DropRatio = %v, want %v", c.DropRatio, want)
		}
	})

	t.Run("mid tier", func(t *testing.T) {
		t.Parallel()
		c := r.Components(recommend.NewFeatureVector(0, 1, true, 0, 1, 15))
		if c.MaxDrop != 0.42 {
			t.Errorf("MaxDrop = %v, want 0.42", c.MaxDrop)
		}
	})
}

func TestRuleScorer_Predict(t *testing.T) {
	t.Parallel()

	r := NewRuleScorer()
	tests := []struct {
		name string
		fv   recommend.FeatureVector
		want float64
	}{
		{"no dimming", recommend.NewFeatureVector(0.9, 0.1, false, 0.8, 0.1, 25), 25},
		{"bright tier saturated", recommend.NewFeatureVector(0.05, 0.8, true, 0.05, 0.9, 25), 25 * (1 - 0.5*math.Tanh(2.6))},
		{"default tier saturated", recommend.NewFeatureVector(0, 1, true, 0, 1, 10), 10 * (1 - 0.35*math.Tanh(2.6))},
		{"zero existing", recommend.NewFeatureVector(0, 1, true, 0, 1, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := r.Predict(tt.fv)
			if err != nil {
				t.Fatalf("Predict() error = %v", err)
			}
			if math.Abs(got-tt.want) > eps {
				t.Errorf("Predict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRuleScorer_NeverBrightens(t *testing.T) {
	t.Parallel()

	r := NewRuleScorer()
	steps := []float64{0, 0.25, 0.5, 0.75, 1}
	for _, lx := range []float64{1, 10, 15, 25, 40} {
		for _, nt := range steps {
			for _, res := range steps {
				for _, com := range steps {
					fv := recommend.NewFeatureVector(nt, 0.5, nt > 0.5, com, res, lx)
					raw, _ := r.Predict(fv)
					if raw > lx || raw < lx*(1-0.5) {
						t.Fatalf("Predict(%+v) = %v, outside [%v, %v]", fv, raw, lx*0.5, lx)
					}
				}
			}
		}
	}
}

func TestRuleScorer_Monotonicity(t *testing.T) {
	t.Parallel()

	r := NewRuleScorer()
	engine, err := recommend.NewEngine(nil, r, testLogger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	steps := make([]float64, 21)
	for i := range steps {
		steps[i] = float64(i) / 20
	}

	for _, lx := range []float64{10, 15, 25} {
		for _, park := range []bool{false, true} {
			for _, other := range []float64{0, 0.3, 0.7, 1} {
				prevRec := math.Inf(1)
				prevRaw := math.Inf(-1)
				for _, v := range steps {
					// residential_density up: recommended_lx never rises.
					rec, err := engine.Recommend("m", recommend.NewFeatureVector(other, other, park, other, v, lx))
					if err != nil {
						t.Fatalf("Recommend() error = %v", err)
					}
					if rec.RecommendedLx > prevRec+eps {
						t.Fatalf("lx=%v park=%v other=%v res=%v: recommended rose %v -> %v", lx, park, other, v, prevRec, rec.RecommendedLx)
					}
					prevRec = rec.RecommendedLx

					// night_traffic up: raw_lx never falls.
					raw, _ := r.Predict(recommend.NewFeatureVector(v, other, park, other, other, lx))
					if raw < prevRaw-eps {
						t.Fatalf("lx=%v park=%v other=%v nt=%v: raw fell %v -> %v", lx, park, other, v, prevRaw, raw)
					}
					prevRaw = raw
				}
			}
		}
	}
}
