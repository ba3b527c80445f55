// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package scorers

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/tomtom215/lumen/internal/recommend"
	"github.com/tomtom215/lumen/internal/recommend/storage"
)

// ErrFeatureOrderMismatch is returned when a model was trained on a feature
// tuple other than recommend.FeatureOrder. It is a configuration error and
// must stop startup.
var ErrFeatureOrderMismatch = errors.New("model feature order mismatch")

// Model is a trained regressor over the ordered feature tuple.
//
// Implementations must not mutate state in Predict or Attribute.
type Model interface {
	Kind() string
	NumFeatures() int
	Predict(x []float64) float64
	// Attribute returns one additive contribution per input plus the bias,
	// such that bias + sum(contribs) == Predict(x).
	Attribute(x []float64) (contribs []float64, bias float64)
	State() *storage.ModelState
}

// ModelFromState builds the model described by a stored state.
func ModelFromState(state *storage.ModelState) (Model, error) {
	if state == nil {
		return nil, errors.New("model state is missing")
	}
	switch state.Kind {
	case storage.KindLinear:
		m, err := NewLinearModel(state.Linear)
		if err != nil {
			return nil, err
		}
		if m.NumFeatures() != len(state.Features) {
			return nil, fmt.Errorf("linear model has %d terms for %d features", m.NumFeatures(), len(state.Features))
		}
		return m, nil
	case storage.KindTrees:
		return NewTreeEnsemble(state.Trees, len(state.Features))
	default:
		return nil, fmt.Errorf("unknown model kind %q", state.Kind)
	}
}

// CheckFeatureOrder verifies features equals recommend.FeatureOrder.
func CheckFeatureOrder(features []string) error {
	if !slices.Equal(features, recommend.FeatureOrder) {
		return fmt.Errorf("%w: model expects %v, engine provides %v", ErrFeatureOrderMismatch, features, recommend.FeatureOrder)
	}
	return nil
}

// LearnedScorer wraps a trained model. It implements
// recommend.ContributionScorer.
type LearnedScorer struct {
	name    string
	version int
	model   Model
}

// NewLearnedScorer binds a model to the engine's feature order. features is
// the tuple the model was trained on.
func NewLearnedScorer(name string, version int, features []string, model Model) (*LearnedScorer, error) {
	if model == nil {
		return nil, errors.New("model is required")
	}
	if err := CheckFeatureOrder(features); err != nil {
		return nil, err
	}
	if model.NumFeatures() != len(recommend.FeatureOrder) {
		return nil, fmt.Errorf("%w: model takes %d inputs", ErrFeatureOrderMismatch, model.NumFeatures())
	}
	if name == "" {
		name = model.Kind()
	}
	return &LearnedScorer{name: name, version: version, model: model}, nil
}

// LoadScorer loads a stored model (version 0 = latest) and wraps it.
func LoadScorer(ctx context.Context, store *storage.Store, name string, version int) (*LearnedScorer, *storage.ModelMetadata, error) {
	state, meta, err := store.Load(ctx, name, version)
	if err != nil {
		return nil, nil, fmt.Errorf("load model %s: %w", name, err)
	}
	model, err := ModelFromState(state)
	if err != nil {
		return nil, nil, fmt.Errorf("model %s v%d: %w", name, meta.Version, err)
	}
	scorer, err := NewLearnedScorer(meta.Name, meta.Version, state.Features, model)
	if err != nil {
		return nil, nil, fmt.Errorf("model %s v%d: %w", name, meta.Version, err)
	}
	return scorer, meta, nil
}

// Name returns the model name.
func (s *LearnedScorer) Name() string {
	return s.name
}

// Version returns the stored model version, 0 when not loaded from a store.
func (s *LearnedScorer) Version() int {
	return s.version
}

// Kind returns the model family.
func (s *LearnedScorer) Kind() string {
	return s.model.Kind()
}

// Predict returns the model output. It is not clamped.
//
//nolint:gocritic // hugeParam: fv passed by value for immutability
func (s *LearnedScorer) Predict(fv recommend.FeatureVector) (float64, error) {
	return s.model.Predict(fv.Values()), nil
}

// Contributions returns the signed per-feature attribution in feature order,
// without the bias term and without existing_lx.
//
//nolint:gocritic // hugeParam: fv passed by value for immutability
func (s *LearnedScorer) Contributions(fv recommend.FeatureVector) ([]recommend.Contribution, error) {
	all, _ := s.Attribution(fv)
	out := make([]recommend.Contribution, 0, len(all)-1)
	for _, c := range all {
		if c.Key == recommend.KeyExistingLx {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Attribution returns the contribution of every feature, existing_lx
// included, and the bias.
//
//nolint:gocritic // hugeParam: fv passed by value for immutability
func (s *LearnedScorer) Attribution(fv recommend.FeatureVector) ([]recommend.Contribution, float64) {
	weights, bias := s.model.Attribute(fv.Values())
	out := make([]recommend.Contribution, len(weights))
	for i, w := range weights {
		out[i] = recommend.Contribution{Key: recommend.FeatureOrder[i], Weight: w}
	}
	return out, bias
}
