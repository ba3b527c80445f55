// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package recommend

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Feature keys. The order of FeatureOrder is a binding contract with every
// learned model artifact and must not change.
const (
	KeyNightTraffic       = "night_traffic"
	KeyCCTVDensity        = "cctv_density"
	KeyParkWithin         = "park_within"
	KeyCommercialDensity  = "commercial_density"
	KeyResidentialDensity = "residential_density"
	KeyExistingLx         = "existing_lx"
)

// FeatureOrder is the ordered feature tuple consumed by every scorer.
var FeatureOrder = []string{
	KeyNightTraffic,
	KeyCCTVDensity,
	KeyParkWithin,
	KeyCommercialDensity,
	KeyResidentialDensity,
	KeyExistingLx,
}

// FeatureVector is the validated, normalized input of a single grid cell.
// Ratio fields are always within [0, 1]. ExistingLx is passed through as-is;
// non-positive values are handled by the policy clamp.
type FeatureVector struct {
	NightTraffic       float64 `json:"night_traffic"`
	CCTVDensity        float64 `json:"cctv_density"`
	ParkWithin         bool    `json:"park_within"`
	CommercialDensity  float64 `json:"commercial_density"`
	ResidentialDensity float64 `json:"residential_density"`
	ExistingLx         float64 `json:"existing_lx"`
}

// NewFeatureVector builds a vector, clamping the ratio fields to [0, 1].
func NewFeatureVector(nightTraffic, cctvDensity float64, parkWithin bool, commercialDensity, residentialDensity, existingLx float64) FeatureVector {
	return FeatureVector{
		NightTraffic:       Clamp01(nightTraffic),
		CCTVDensity:        Clamp01(cctvDensity),
		ParkWithin:         parkWithin,
		CommercialDensity:  Clamp01(commercialDensity),
		ResidentialDensity: Clamp01(residentialDensity),
		ExistingLx:         existingLx,
	}
}

// ParkFlag returns park_within as 0 or 1.
func (f FeatureVector) ParkFlag() float64 {
	if f.ParkWithin {
		return 1
	}
	return 0
}

// Values returns the features in FeatureOrder.
func (f FeatureVector) Values() []float64 {
	return []float64{
		f.NightTraffic,
		f.CCTVDensity,
		f.ParkFlag(),
		f.CommercialDensity,
		f.ResidentialDensity,
		f.ExistingLx,
	}
}

// Map returns the features keyed by name. park_within is 0 or 1.
func (f FeatureVector) Map() map[string]float64 {
	values := f.Values()
	m := make(map[string]float64, len(FeatureOrder))
	for i, key := range FeatureOrder {
		m[key] = values[i]
	}
	return m
}

// MissingFeatureError reports required features absent from an input mapping.
type MissingFeatureError struct {
	Keys []string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing required features: %s", strings.Join(e.Keys, ", "))
}

// InvalidFeatureError reports a feature that is present but not numeric.
type InvalidFeatureError struct {
	Key   string
	Value any
}

func (e *InvalidFeatureError) Error() string {
	return fmt.Sprintf("feature %s: cannot interpret %v as a number", e.Key, e.Value)
}

// ParseFeatures converts an untyped mapping (decoded JSON, a CSV row, ...)
// into a FeatureVector.
//
// Ratio fields out of range are clamped, never rejected. park_within is
// coerced to a boolean. Absent or null keys fail with *MissingFeatureError
// naming every absent key in FeatureOrder.
func ParseFeatures(m map[string]any) (FeatureVector, error) {
	var missing []string
	for _, key := range FeatureOrder {
		if v, ok := m[key]; !ok || v == nil {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return FeatureVector{}, &MissingFeatureError{Keys: missing}
	}

	values := make(map[string]float64, len(FeatureOrder))
	for _, key := range FeatureOrder {
		if key == KeyParkWithin {
			continue
		}
		f, ok := toFloat(m[key])
		if !ok {
			return FeatureVector{}, &InvalidFeatureError{Key: key, Value: m[key]}
		}
		values[key] = f
	}

	park, ok := toBool(m[KeyParkWithin])
	if !ok {
		return FeatureVector{}, &InvalidFeatureError{Key: KeyParkWithin, Value: m[KeyParkWithin]}
	}

	return NewFeatureVector(
		values[KeyNightTraffic],
		values[KeyCCTVDensity],
		park,
		values[KeyCommercialDensity],
		values[KeyResidentialDensity],
		values[KeyExistingLx],
	), nil
}

// Clamp01 clamps v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil && !math.IsNaN(f)
	default:
		return 0, false
	}
}

// toBool applies the truthiness rule for park_within: any nonzero number or
// affirmative token is true.
func toBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "y", "o":
			return true, true
		case "false", "no", "n", "x", "":
			return false, true
		}
	}
	f, ok := toFloat(v)
	if !ok {
		return false, false
	}
	return f != 0, true
}
