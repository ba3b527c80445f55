// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package recommend

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Note: this package has no dependencies on other internal packages. Metrics
// are recorded by the callers (api, batch) from the returned values.

// Engine assembles recommendations: predict, clamp, explain.
//
// The scorer is fixed at construction and treated as read-only for the
// lifetime of the engine. Engine is safe for concurrent use.
type Engine struct {
	config    *Config
	logger    zerolog.Logger
	scorer    Scorer
	explainer *Explainer

	predictions atomic.Int64
	failures    atomic.Int64
	capped      atomic.Int64
	floored     atomic.Int64
	degenerate  atomic.Int64
}

// NewEngine creates an engine around an immutable scorer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, scorer Scorer, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if scorer == nil {
		return nil, ErrNilScorer
	}

	explainer, err := NewExplainer(cfg.Explain)
	if err != nil {
		return nil, err
	}
	if cfg.Explain == ExplainContribution {
		if _, ok := scorer.(ContributionScorer); !ok {
			return nil, fmt.Errorf("explain strategy %q requires a contribution scorer, %s has none", cfg.Explain, scorer.Name())
		}
	}

	e := &Engine{
		config:    cfg.Clone(),
		logger:    logger.With().Str("component", "recommend").Logger(),
		scorer:    scorer,
		explainer: explainer,
	}

	_, contributions := scorer.(ContributionScorer)
	e.logger.Info().
		Str("scorer", scorer.Name()).
		Bool("contributions", contributions).
		Float64("floor_lx", cfg.Policy.Floor).
		Str("explain", string(cfg.Explain)).
		Msg("recommendation engine ready")

	return e, nil
}

// Scorer returns the scorer the engine was built with.
func (e *Engine) Scorer() Scorer {
	return e.scorer
}

// Policy returns the clamp policy.
func (e *Engine) Policy() Policy {
	return e.config.Policy
}

// Explainer returns the reason ranker.
func (e *Engine) Explainer() *Explainer {
	return e.explainer
}

// Recommend produces the recommendation for one validated feature vector.
//
// A scorer failure is returned as *PredictionError. Once the scorer has
// produced a value, assembly always succeeds.
//
//nolint:gocritic // hugeParam: fv passed by value for immutability
func (e *Engine) Recommend(gridID string, fv FeatureVector) (*Recommendation, error) {
	e.predictions.Add(1)

	raw, err := e.scorer.Predict(fv)
	if err == nil && (math.IsNaN(raw) || math.IsInf(raw, 0)) {
		err = fmt.Errorf("non-finite prediction %v", raw)
	}
	if err != nil {
		e.failures.Add(1)
		return nil, &PredictionError{GridID: gridID, Scorer: e.scorer.Name(), Err: err}
	}

	policy := e.config.Policy
	rec := policy.Clamp(raw, fv.ExistingLx)

	reasons, err := e.explainer.Explain(fv, e.scorer)
	if err != nil {
		e.logger.Warn().Err(err).Str("grid_id", gridID).Msg("contribution ranking failed, using heuristic reasons")
		reasons = topReasons(HeuristicFactors(fv), MaxReasons)
	}

	switch {
	case fv.ExistingLx <= 0:
		e.degenerate.Add(1)
	case raw > fv.ExistingLx:
		e.capped.Add(1)
	case policy.Floored(rec, fv.ExistingLx):
		e.floored.Add(1)
	}

	return &Recommendation{
		GridID:        gridID,
		ExistingLx:    fv.ExistingLx,
		RecommendedLx: rec,
		DeltaPercent:  DeltaPercent(rec, fv.ExistingLx),
		DurationHours: DurationHours,
		Reasons:       reasons,
		RawLx:         raw,
	}, nil
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Scorer:      e.scorer.Name(),
		Predictions: e.predictions.Load(),
		Failures:    e.failures.Load(),
		Capped:      e.capped.Load(),
		Floored:     e.floored.Load(),
		Degenerate:  e.degenerate.Load(),
	}
}

// IsPredictionError reports whether err is a scorer failure.
func IsPredictionError(err error) bool {
	return errors.Is(err, ErrPrediction)
}
