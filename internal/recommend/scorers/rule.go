// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package scorers

import (
	"math"

	"github.com/tomtom215/lumen/internal/recommend"
)

// RuleName is the scorer name reported by RuleScorer.
const RuleName = "rule"

// Rule coefficients. The heuristic explanation table uses the same values.
const (
	dimLowTraffic  = 0.55
	dimPark        = 0.45
	dimCCTV        = 0.35
	dimResidential = 0.80
	shieldTraffic  = 0.70
	shieldNoPark   = 0.30
	shieldLowCCTV  = 0.25
	shieldCommerce = 0.55
	dimSaturation  = 2.6
	maxDropBright  = 0.50 // 25 lx band
	maxDropMid     = 0.42 // 15 lx band
	maxDropDefault = 0.35
	brightTierLux  = 25.0
	midTierLux     = 15.0
)

// RuleComponents are the intermediate terms of the rule formula.
type RuleComponents struct {
	DimRaw    float64 `json:"dim_raw"`
	Shield    float64 `json:"shield"`
	Dim       float64 `json:"dim"`
	MaxDrop   float64 `json:"max_drop"`
	DropRatio float64 `json:"drop_ratio"`
}

// RuleScorer is the closed-form dimming formula. It is also the label oracle
// for synthetic training data. The zero value is ready to use.
type RuleScorer struct{}

// NewRuleScorer returns the rule scorer.
func NewRuleScorer() *RuleScorer {
	return &RuleScorer{}
}

// Name returns "rule".
func (r *RuleScorer) Name() string {
	return RuleName
}

// Predict returns existing_lx scaled down by the tier-limited drop ratio.
// The result is never above existing_lx and never fails.
//
//nolint:gocritic // hugeParam: fv passed by value for immutability
func (r *RuleScorer) Predict(fv recommend.FeatureVector) (float64, error) {
	c := r.Components(fv)
	return fv.ExistingLx * (1 - c.DropRatio), nil
}

// Components evaluates every term of the formula for fv.
//
//nolint:gocritic // hugeParam: fv passed by value for immutability
func (r *RuleScorer) Components(fv recommend.FeatureVector) RuleComponents {
	return RuleFormula(fv.NightTraffic, fv.CCTVDensity, fv.ParkFlag(), fv.CommercialDensity, fv.ResidentialDensity, fv.ExistingLx)
}

// RuleFormula evaluates the formula on raw column values. Inputs are used as
// given; callers clamp ratios first.
func RuleFormula(nightTraffic, cctv, park, commercial, residential, existingLx float64) RuleComponents {
	dimRaw := dimLowTraffic*(1-nightTraffic) + dimPark*park + dimCCTV*cctv + dimResidential*residential
	shield := shieldTraffic*nightTraffic + shieldNoPark*(1-park) + shieldLowCCTV*(1-cctv) + shieldCommerce*commercial
	dim := math.Min(math.Max(dimRaw-shield, 0), 1)
	maxDrop := MaxDrop(existingLx)

	return RuleComponents{
		DimRaw:    dimRaw,
		Shield:    shield,
		Dim:       dim,
		MaxDrop:   maxDrop,
		DropRatio: maxDrop * math.Tanh(dimSaturation*dim),
	}
}

// MaxDrop returns the largest fraction the tier of existingLx may be dimmed.
func MaxDrop(existingLx float64) float64 {
	switch existingLx {
	case brightTierLux:
		return maxDropBright
	case midTierLux:
		return maxDropMid
	default:
		return maxDropDefault
	}
}
