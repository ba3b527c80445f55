// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package synthetic

import (
	"io"
	"sort"

	"github.com/tomtom215/lumen/internal/recommend"
	"github.com/tomtom215/lumen/internal/tabular"
)

// FeatureColumns is the header of an unlabeled synthetic table.
var FeatureColumns = []string{
	"grid_id",
	recommend.KeyNightTraffic,
	recommend.KeyCCTVDensity,
	ColTraffic0102,
	ColTraffic0203,
	ColTraffic0304,
	recommend.KeyParkWithin,
	recommend.KeyCommercialDensity,
	recommend.KeyResidentialDensity,
	recommend.KeyExistingLx,
}

// LabelColumns are appended to FeatureColumns for a train-ready table.
var LabelColumns = []string{"recommended_lx", "delta_percent"}

// TierShare is the fraction of rows at one existing illuminance.
type TierShare struct {
	ExistingLx float64 `json:"existing_lx"`
	Share      float64 `json:"share"`
}

// Summary describes a generated table.
type Summary struct {
	Rows          int         `json:"rows"`
	Tiers         []TierShare `json:"tiers"`
	Labeled       bool        `json:"labeled"`
	MaintainRate  float64     `json:"maintain_rate"`
	Min2Rate      float64     `json:"min2_rate"`
	AvgRatio      float64     `json:"avg_ratio"`
	AvgSavingRate float64     `json:"avg_saving_rate"`
}

// Summarize reports the tier distribution and, for labeled rows, the
// dimming indicators.
func Summarize(rows []Row, labeled bool) Summary {
	s := Summary{Rows: len(rows), Labeled: labeled}
	if len(rows) == 0 {
		return s
	}

	counts := make(map[float64]int)
	maintain, min2, ratioRows := 0, 0, 0
	ratioSum := 0.0
	for _, r := range rows {
		counts[r.ExistingLx]++
		if !labeled {
			continue
		}
		if tabular.IsClose(r.RecommendedLx, r.ExistingLx) {
			maintain++
		}
		if tabular.IsClose(r.RecommendedLx, recommend.DefaultFloorLx) {
			min2++
		}
		if r.ExistingLx > 0 {
			ratioSum += r.RecommendedLx / r.ExistingLx
			ratioRows++
		}
	}

	n := float64(len(rows))
	for lx, c := range counts {
		s.Tiers = append(s.Tiers, TierShare{ExistingLx: lx, Share: float64(c) / n})
	}
	sort.Slice(s.Tiers, func(i, j int) bool { return s.Tiers[i].ExistingLx < s.Tiers[j].ExistingLx })

	if labeled {
		s.MaintainRate = float64(maintain) / n
		s.Min2Rate = float64(min2) / n
		if ratioRows > 0 {
			s.AvgRatio = ratioSum / float64(ratioRows)
			s.AvgSavingRate = 1 - s.AvgRatio
		}
	}
	return s
}

// WriteCSV writes rows in FeatureColumns order, plus LabelColumns when
// labeled.
func WriteCSV(w io.Writer, rows []Row, labeled, bom bool) error {
	header := FeatureColumns
	if labeled {
		header = append(append([]string{}, FeatureColumns...), LabelColumns...)
	}

	out := make([][]string, len(rows))
	for i, r := range rows {
		rec := []string{
			r.GridID,
			tabular.FormatFloat(r.NightTraffic),
			tabular.FormatFloat(r.CCTVDensity),
			tabular.FormatFloat(r.Traffic[0]),
			tabular.FormatFloat(r.Traffic[1]),
			tabular.FormatFloat(r.Traffic[2]),
			tabular.FormatFloat(r.ParkFlag()),
			tabular.FormatFloat(r.CommercialDensity),
			tabular.FormatFloat(r.ResidentialDensity),
			tabular.FormatFloat(r.ExistingLx),
		}
		if labeled {
			rec = append(rec, tabular.FormatFloat(r.RecommendedLx), tabular.FormatFloat(r.DeltaPercent))
		}
		out[i] = rec
	}
	return tabular.Write(w, header, out, bom)
}
