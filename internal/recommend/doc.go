// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

// Package recommend implements the street-lighting dimming recommendation
// engine.
//
// # Pipeline
//
// A recommendation for one grid cell is assembled in three stages:
//
//  1. Score: a Scorer predicts a raw illuminance from the FeatureVector.
//  2. Clamp: the Policy maps the raw value into [min(floor, existing), existing].
//  3. Explain: the Explainer ranks at most three reasons.
//
// The engine only ever dims. A recommendation never exceeds the existing
// illuminance, and the floor (2 lx by default) collapses to the existing
// value when the cell is already darker than the floor.
//
// # Scorers
//
// Scorers live in the scorers subpackage:
//
//   - RuleScorer: the closed-form dim/shield formula, also used to label
//     synthetic training data.
//   - LearnedScorer: wraps an externally trained model artifact (linear or
//     tree ensemble) and exposes per-feature contributions.
//
// The scorer is chosen once at startup and handed to NewEngine. There is no
// global model cache.
//
// # Explanations
//
// When the scorer implements ContributionScorer, reasons are the model's
// largest absolute contributions (existing_lx excluded). Otherwise a fixed
// eight-entry heuristic table mirroring the rule formula is ranked. Sorting
// is stable so ties resolve in declaration order.
//
// # Usage
//
//	scorer := scorers.NewRuleScorer()
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), scorer, logger)
//	if err != nil {
//	    return err
//	}
//	fv, err := recommend.ParseFeatures(body)
//	if err != nil {
//	    return err // *MissingFeatureError
//	}
//	rec, err := engine.Recommend("000123", fv)
//
// # Thread Safety
//
// Engine, Explainer and the bundled scorers hold no mutable state on the
// request path and are safe for concurrent use.
package recommend
