// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

// Package scorers implements the recommend.Scorer variants.
//
// # Rule
//
// RuleScorer evaluates the closed-form formula:
//
//	dim_raw    = 0.55(1-nt) + 0.45pw + 0.35cd + 0.80res
//	shield     = 0.70nt + 0.30(1-pw) + 0.25(1-cd) + 0.55com
//	dim        = clamp(dim_raw - shield, 0, 1)
//	max_drop   = 0.50 at 25 lx, 0.42 at 15 lx, 0.35 otherwise
//	raw_lx     = existing_lx * (1 - max_drop * tanh(2.6 dim))
//
// # Learned
//
// LearnedScorer wraps a Model trained elsewhere and imported as an Artifact:
//
//   - LinearModel: standardized linear regression. Contributions are the
//     per-feature summands; the intercept is the bias.
//   - TreeEnsemble: gradient boosted regression trees. Contributions follow
//     each decision path and credit the change in node value to the split
//     feature; base score plus root values is the bias.
//
// A model is only accepted when it was trained on recommend.FeatureOrder.
// Anything else fails with ErrFeatureOrderMismatch.
//
// All scorers are immutable after construction and safe for concurrent use.
package scorers
