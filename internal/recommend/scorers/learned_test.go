// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package scorers

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/tomtom215/lumen/internal/recommend"
	"github.com/tomtom215/lumen/internal/recommend/storage"
)

func testTreeScorer(t *testing.T) *LearnedScorer {
	t.Helper()
	m, err := NewTreeEnsemble(testTreeState(), len(recommend.FeatureOrder))
	if err != nil {
		t.Fatalf("NewTreeEnsemble() error = %v", err)
	}
	s, err := NewLearnedScorer("lgbm_reco", 1, recommend.FeatureOrder, m)
	if err != nil {
		t.Fatalf("NewLearnedScorer() error = %v", err)
	}
	return s
}

func TestNewLearnedScorer_FeatureOrder(t *testing.T) {
	t.Parallel()

	m, err := NewLinearModel(testLinearState())
	if err != nil {
		t.Fatalf("NewLinearModel() error = %v", err)
	}

	swapped := append([]string(nil), recommend.FeatureOrder...)
	swapped[0], swapped[1] = swapped[1], swapped[0]

	tests := []struct {
		name     string
		features []string
		wantErr  bool
	}{
		{"exact order", recommend.FeatureOrder, false},
		{"swapped", swapped, true},
		{"missing existing_lx", recommend.FeatureOrder[:5], true},
		{"extra feature", append(append([]string(nil), recommend.FeatureOrder...), "lamp_watt"), true},
		{"empty", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewLearnedScorer("elastic_reco", 1, tt.features, m)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLearnedScorer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrFeatureOrderMismatch) {
				t.Errorf("error = %v, want ErrFeatureOrderMismatch", err)
			}
		})
	}

	if _, err := NewLearnedScorer("x", 1, recommend.FeatureOrder, nil); err == nil {
		t.Error("NewLearnedScorer(nil model) should fail")
	}
}

func TestNewLearnedScorer_WidthMismatch(t *testing.T) {
	t.Parallel()

	state := testLinearState()
	state.Coef, state.Mean, state.Scale = state.Coef[:5], state.Mean[:5], state.Scale[:5]
	m, err := NewLinearModel(state)
	if err != nil {
		t.Fatalf("NewLinearModel() error = %v", err)
	}
	if _, err := NewLearnedScorer("x", 1, recommend.FeatureOrder, m); !errors.Is(err, ErrFeatureOrderMismatch) {
		t.Errorf("error = %v, want ErrFeatureOrderMismatch", err)
	}
}

func TestLearnedScorer_Contributions(t *testing.T) {
	t.Parallel()

	s := testTreeScorer(t)
	fv := recommend.NewFeatureVector(0.9, 0, false, 0, 0.8, 15)

	contribs, err := s.Contributions(fv)
	if err != nil {
		t.Fatalf("Contributions() error = %v", err)
	}
	if len(contribs) != 5 {
		t.Fatalf("len(Contributions()) = %d, want 5", len(contribs))
	}
	for i, c := range contribs {
		if c.Key != recommend.FeatureOrder[i] {
			t.Errorf("contribs[%d].Key = %s, want %s", i, c.Key, recommend.FeatureOrder[i])
		}
		if c.Key == recommend.KeyExistingLx {
			t.Error("Contributions() must not include existing_lx")
		}
	}

	all, bias := s.Attribution(fv)
	if len(all) != 6 {
		t.Fatalf("len(Attribution()) = %d, want 6", len(all))
	}
	total := bias
	for _, c := range all {
		total += c.Weight
	}
	raw, _ := s.Predict(fv)
	if math.Abs(total-raw) > eps {
		t.Errorf("bias + attribution = %v, want %v", total, raw)
	}
}

func TestLearnedScorer_ExplainsThroughEngine(t *testing.T) {
	t.Parallel()

	s := testTreeScorer(t)
	engine, err := recommend.NewEngine(nil, s, testLogger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	rec, err := engine.Recommend("000001", recommend.NewFeatureVector(0.9, 0, false, 0, 0.8, 15))
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	// raw 12.5 within [2, 15]
	if rec.RecommendedLx != 12.5 {
		t.Errorf("RecommendedLx = %v, want 12.5", rec.RecommendedLx)
	}
	// existing_lx carries the largest weight (-2.5) but is not a reason.
	want := []string{recommend.KeyResidentialDensity, recommend.KeyNightTraffic, recommend.KeyCCTVDensity}
	if len(rec.Reasons) != len(want) {
		t.Fatalf("len(Reasons) = %d, want %d", len(rec.Reasons), len(want))
	}
	for i, k := range want {
		if rec.Reasons[i].Key != k {
			t.Errorf("Reasons[%d].Key = %s, want %s", i, rec.Reasons[i].Key, k)
		}
	}
	if rec.Reasons[0].Direction != recommend.DirectionDown || rec.Reasons[1].Direction != recommend.DirectionUp {
		t.Errorf("directions = %s, %s, want DOWN, UP", rec.Reasons[0].Direction, rec.Reasons[1].Direction)
	}
}

func TestLearnedScorer_Concurrent(t *testing.T) {
	t.Parallel()

	s := testTreeScorer(t)
	fv := recommend.NewFeatureVector(0.2, 0.3, true, 0.4, 0.6, 25)
	want, _ := s.Predict(fv)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				got, _ := s.Predict(fv)
				if got != want {
					t.Errorf("Predict() = %v, want %v", got, want)
					return
				}
				if _, err := s.Contributions(fv); err != nil {
					t.Errorf("Contributions() error = %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestLoadScorer(t *testing.T) {
	t.Parallel()

	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	ctx := context.Background()

	state := &storage.ModelState{Kind: storage.KindTrees, Features: recommend.FeatureOrder, Trees: testTreeState()}
	for v := 0; v < 2; v++ {
		if _, err := store.Save(ctx, "lgbm_reco", 0, state, storage.ModelMetadata{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	s, meta, err := LoadScorer(ctx, store, "lgbm_reco", 0)
	if err != nil {
		t.Fatalf("LoadScorer() error = %v", err)
	}
	if s.Name() != "lgbm_reco" || s.Version() != 2 || meta.Version != 2 {
		t.Errorf("loaded %s v%d (meta v%d), want lgbm_reco v2", s.Name(), s.Version(), meta.Version)
	}
	if s.Kind() != storage.KindTrees {
		t.Errorf("Kind() = %s, want trees", s.Kind())
	}

	if _, _, err := LoadScorer(ctx, store, "missing", 0); !errors.Is(err, storage.ErrModelNotFound) {
		t.Errorf("LoadScorer(missing) error = %v, want ErrModelNotFound", err)
	}

	reordered := &storage.ModelState{
		Kind:     storage.KindTrees,
		Features: []string{"existing_lx", "night_traffic", "cctv_density", "park_within", "commercial_density", "residential_density"},
		Trees:    testTreeState(),
	}
	if _, err := store.Save(ctx, "reordered", 0, reordered, storage.ModelMetadata{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, _, err := LoadScorer(ctx, store, "reordered", 0); !errors.Is(err, ErrFeatureOrderMismatch) {
		t.Errorf("LoadScorer(reordered) error = %v, want ErrFeatureOrderMismatch", err)
	}
}
