// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package recommend

import (
	"fmt"
	"math"
	"sort"
)

// ExplainStrategy selects how reasons are derived.
type ExplainStrategy string

const (
	// ExplainAuto uses scorer contributions when the scorer exposes them and
	// the heuristic table otherwise.
	ExplainAuto ExplainStrategy = "auto"
	// ExplainHeuristic always uses the heuristic table.
	ExplainHeuristic ExplainStrategy = "heuristic"
	// ExplainContribution requires a contribution-capable scorer.
	ExplainContribution ExplainStrategy = "contribution"
)

// Valid reports whether s is a known strategy.
func (s ExplainStrategy) Valid() bool {
	switch s {
	case ExplainAuto, ExplainHeuristic, ExplainContribution:
		return true
	}
	return false
}

// FeatureLabels are the reviewer-facing names of the model features, used by
// contribution-based reasons.
var FeatureLabels = map[string]string{
	KeyNightTraffic:       "Night-time traffic",
	KeyCCTVDensity:        "CCTV density",
	KeyParkWithin:         "Park within the cell",
	KeyCommercialDensity:  "Commercial density",
	KeyResidentialDensity: "Residential density",
}

// heuristicFactor is one row of the fixed weight table. The coefficients
// mirror the rule scorer's dim/shield terms.
type heuristicFactor struct {
	key       string
	direction Direction
	label     string
	weight    func(fv FeatureVector) float64
}

// heuristicTable is declared in tie-break order.
var heuristicTable = []heuristicFactor{
	{
		key: "low_traffic", direction: DirectionDown,
		label:  "Little night-time movement, so brightness is lowered.",
		weight: func(fv FeatureVector) float64 { return -0.55 * (1 - fv.NightTraffic) },
	},
	{
		key: "park_within", direction: DirectionDown,
		label:  "A park lies within the cell, so brightness is lowered to protect the ecosystem.",
		weight: func(fv FeatureVector) float64 { return -0.45 * fv.ParkFlag() },
	},
	{
		key: "high_cctv", direction: DirectionDown,
		label:  "Dense CCTV coverage compensates for safety when brightness is lowered.",
		weight: func(fv FeatureVector) float64 { return -0.35 * fv.CCTVDensity },
	},
	{
		key: "high_residential", direction: DirectionDown,
		label:  "Housing is dense, so brightness is lowered to reduce light intrusion.",
		weight: func(fv FeatureVector) float64 { return -0.80 * fv.ResidentialDensity },
	},
	{
		key: "high_traffic", direction: DirectionUp,
		label:  "Heavy night-time movement, so brightness is kept for safety.",
		weight: func(fv FeatureVector) float64 { return 0.70 * fv.NightTraffic },
	},
	{
		key: "no_park_within", direction: DirectionUp,
		label:  "No park lies within the cell, so brightness is kept.",
		weight: func(fv FeatureVector) float64 { return 0.30 * (1 - fv.ParkFlag()) },
	},
	{
		key: "low_cctv", direction: DirectionUp,
		label:  "CCTV coverage is sparse, so brightness is not lowered much.",
		weight: func(fv FeatureVector) float64 { return 0.25 * (1 - fv.CCTVDensity) },
	},
	{
		key: "high_commercial", direction: DirectionUp,
		label:  "Commercial activity is dense, so brightness is kept for night-time activity.",
		weight: func(fv FeatureVector) float64 { return 0.55 * fv.CommercialDensity },
	},
}

// RankedFactor is a reason together with the signed weight that ranked it.
type RankedFactor struct {
	Reason
	Weight float64 `json:"weight"`
}

// Explainer ranks the factors behind a recommendation. It holds no mutable
// state and is safe for concurrent use.
type Explainer struct {
	strategy ExplainStrategy
	limit    int
}

// NewExplainer creates an explainer. An empty strategy means ExplainAuto.
func NewExplainer(strategy ExplainStrategy) (*Explainer, error) {
	if strategy == "" {
		strategy = ExplainAuto
	}
	if !strategy.Valid() {
		return nil, fmt.Errorf("unknown explain strategy %q", strategy)
	}
	return &Explainer{strategy: strategy, limit: MaxReasons}, nil
}

// Strategy returns the configured strategy.
func (e *Explainer) Strategy() ExplainStrategy {
	return e.strategy
}

// Explain returns at most three reasons ordered by descending absolute
// weight. Ties keep declaration order.
func (e *Explainer) Explain(fv FeatureVector, scorer Scorer) ([]Reason, error) {
	factors, err := e.Rank(fv, scorer)
	if err != nil {
		return nil, err
	}
	return topReasons(factors, e.limit), nil
}

// Rank returns every ranked factor, before truncation.
func (e *Explainer) Rank(fv FeatureVector, scorer Scorer) ([]RankedFactor, error) {
	if e.strategy == ExplainHeuristic {
		return HeuristicFactors(fv), nil
	}

	cs, ok := scorer.(ContributionScorer)
	if !ok {
		if e.strategy == ExplainContribution {
			return nil, fmt.Errorf("scorer %s does not expose contributions", scorer.Name())
		}
		return HeuristicFactors(fv), nil
	}

	contribs, err := cs.Contributions(fv)
	if err != nil {
		return nil, fmt.Errorf("contributions: %w", err)
	}
	return ContributionFactors(contribs), nil
}

// HeuristicFactors evaluates the fixed weight table and ranks all eight
// entries.
func HeuristicFactors(fv FeatureVector) []RankedFactor {
	factors := make([]RankedFactor, 0, len(heuristicTable))
	for _, h := range heuristicTable {
		factors = append(factors, RankedFactor{
			Reason: Reason{Key: h.key, Direction: h.direction, Label: h.label},
			Weight: h.weight(fv),
		})
	}
	sortByMagnitude(factors)
	return factors
}

// ContributionFactors ranks model contributions, dropping existing_lx. The
// sign of each weight decides its direction.
func ContributionFactors(contribs []Contribution) []RankedFactor {
	factors := make([]RankedFactor, 0, len(contribs))
	for _, c := range contribs {
		if c.Key == KeyExistingLx {
			continue
		}
		label, ok := FeatureLabels[c.Key]
		if !ok {
			label = c.Key
		}
		factors = append(factors, RankedFactor{
			Reason: Reason{Key: c.Key, Direction: DirectionOf(c.Weight), Label: label},
			Weight: c.Weight,
		})
	}
	sortByMagnitude(factors)
	return factors
}

func sortByMagnitude(factors []RankedFactor) {
	sort.SliceStable(factors, func(i, j int) bool {
		return math.Abs(factors[i].Weight) > math.Abs(factors[j].Weight)
	})
}

func topReasons(factors []RankedFactor, limit int) []Reason {
	if len(factors) > limit {
		factors = factors[:limit]
	}
	reasons := make([]Reason, len(factors))
	for i, f := range factors {
		reasons[i] = f.Reason
	}
	return reasons
}
