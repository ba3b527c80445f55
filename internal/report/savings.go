// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/lumen/internal/recommend"
	"github.com/tomtom215/lumen/internal/tabular"
	"github.com/tomtom215/lumen/internal/validation"
)

// RequiredColumns must be present in a report input.
var RequiredColumns = []string{"grid_id", recommend.KeyExistingLx, "recommended_lx"}

// RowColumns is the header of the per-row CSV.
var RowColumns = []string{"grid_id", "existing_lx", "recommended_lx", "saving_ratio", "saving_percent", "kwh_saved"}

// ErrNoRows is returned when the input has no data rows.
var ErrNoRows = errors.New("report input has no rows")

// Options are the energy assumptions of a report.
type Options struct {
	// LampWatt is the nominal power of one lamp in watts.
	LampWatt float64 `koanf:"lamp_watt" json:"lamp_watt" validate:"gt=0,lte=10000"`

	// Hours is the length of the dimmed window per night.
	Hours float64 `koanf:"hours" json:"hours" validate:"gt=0,lte=24"`

	// TopN is how many cells the top and bottom lists hold.
	TopN int `koanf:"top_n" json:"top_n" validate:"gte=0,lte=1000"`
}

// DefaultOptions returns a 100 W lamp dimmed for three hours.
func DefaultOptions() Options {
	return Options{
		LampWatt: 100,
		Hours:    recommend.DurationHours,
		TopN:     10,
	}
}

// Row is one scored cell with its estimated saving.
type Row struct {
	GridID        string  `json:"grid_id"`
	ExistingLx    float64 `json:"existing_lx"`
	RecommendedLx float64 `json:"recommended_lx"`
	SavingRatio   float64 `json:"saving_ratio"`
	KWhSaved      float64 `json:"kwh_saved"`
}

// SavingPercent is SavingRatio in percent.
func (r Row) SavingPercent() float64 {
	return r.SavingRatio * 100
}

// Summary holds the whole-table indicators.
type Summary struct {
	Rows         int     `json:"rows"`
	MaintainRate float64 `json:"maintain_rate"`
	Min2Rate     float64 `json:"min2_rate"`
	MeanSaving   float64 `json:"mean_saving"`
	MedianSaving float64 `json:"median_saving"`
	P05Saving    float64 `json:"p05_saving"`
	P95Saving    float64 `json:"p95_saving"`
	TotalKWh     float64 `json:"total_kwh"`
}

// Tier summarizes the cells sharing one existing illuminance.
type Tier struct {
	ExistingLx    float64 `json:"existing_lx"`
	Count         int     `json:"count"`
	SharePercent  float64 `json:"share_percent"`
	MeanPercent   float64 `json:"saving_mean_percent"`
	MedianPercent float64 `json:"saving_median_percent"`
	P05Percent    float64 `json:"saving_p05_percent"`
	P95Percent    float64 `json:"saving_p95_percent"`
	KWhMean       float64 `json:"kwh_mean"`
	KWhSum        float64 `json:"kwh_sum"`
}

// Report is the assumption-based savings estimate of a recommendation table.
type Report struct {
	Options Options `json:"options"`
	Summary Summary `json:"summary"`
	Tiers   []Tier  `json:"tiers"`
	Top     []Row   `json:"top"`
	Bottom  []Row   `json:"bottom"`
	Rows    []Row   `json:"-"`
}

// Input is one row read from a recommendation table.
type Input struct {
	GridID        string
	ExistingLx    float64
	RecommendedLx float64
}

// ReadInputs reads grid_id, existing_lx and recommended_lx from a delimited
// table. Both illuminance columns must be numeric on every row.
func ReadInputs(r io.Reader) ([]Input, error) {
	table, err := tabular.Read(r)
	if err != nil {
		return nil, err
	}
	if missing := table.Missing(RequiredColumns...); len(missing) > 0 {
		return nil, fmt.Errorf("report input is missing columns: %s", strings.Join(missing, ", "))
	}
	ids, _ := table.Column("grid_id") //nolint:errcheck // presence checked above
	existing, err := strictColumn(table, recommend.KeyExistingLx)
	if err != nil {
		return nil, err
	}
	recommended, err := strictColumn(table, "recommended_lx")
	if err != nil {
		return nil, err
	}

	inputs := make([]Input, table.Len())
	for i := range inputs {
		inputs[i] = Input{GridID: strings.TrimSpace(ids[i]), ExistingLx: existing[i], RecommendedLx: recommended[i]}
	}
	return inputs, nil
}

func strictColumn(table *tabular.Table, name string) ([]float64, error) {
	values, err := table.Floats(name)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("column %s: row %d is not numeric", name, i)
		}
	}
	return values, nil
}

// Build computes the report. A non-positive existing illuminance counts as
// no saving.
func Build(inputs []Input, opts Options) (*Report, error) {
	if verr := validation.ValidateStruct(&opts); verr != nil {
		return nil, verr
	}
	if len(inputs) == 0 {
		return nil, ErrNoRows
	}

	kwhFactor := opts.LampWatt / 1000 * opts.Hours
	rows := make([]Row, len(inputs))
	for i, in := range inputs {
		ratio := 0.0
		if in.ExistingLx > 0 {
			ratio = 1 - tabular.Clip(in.RecommendedLx/in.ExistingLx, 0, 1)
		}
		rows[i] = Row{
			GridID:        in.GridID,
			ExistingLx:    in.ExistingLx,
			RecommendedLx: in.RecommendedLx,
			SavingRatio:   ratio,
			KWhSaved:      kwhFactor * ratio,
		}
	}

	return &Report{
		Options: opts,
		Summary: summarize(rows),
		Tiers:   tiers(rows),
		Top:     extremes(rows, opts.TopN, true),
		Bottom:  extremes(rows, opts.TopN, false),
		Rows:    rows,
	}, nil
}

func summarize(rows []Row) Summary {
	ratios := make([]float64, len(rows))
	kwh := make([]float64, len(rows))
	maintain, min2 := 0, 0
	for i, r := range rows {
		ratios[i] = r.SavingRatio
		kwh[i] = r.KWhSaved
		if tabular.IsClose(r.RecommendedLx, r.ExistingLx) {
			maintain++
		}
		if tabular.IsClose(r.RecommendedLx, recommend.DefaultFloorLx) {
			min2++
		}
	}
	sort.Float64s(ratios)
	n := float64(len(rows))
	return Summary{
		Rows:         len(rows),
		MaintainRate: float64(maintain) / n,
		Min2Rate:     float64(min2) / n,
		MeanSaving:   stat.Mean(ratios, nil),
		MedianSaving: tabular.QuantileSorted(ratios, 0.5),
		P05Saving:    tabular.QuantileSorted(ratios, 0.05),
		P95Saving:    tabular.QuantileSorted(ratios, 0.95),
		TotalKWh:     floats.Sum(kwh),
	}
}

func tiers(rows []Row) []Tier {
	groups := make(map[float64][]Row)
	for _, r := range rows {
		groups[r.ExistingLx] = append(groups[r.ExistingLx], r)
	}

	out := make([]Tier, 0, len(groups))
	for lx, g := range groups {
		percents := make([]float64, len(g))
		kwh := make([]float64, len(g))
		for i, r := range g {
			percents[i] = r.SavingPercent()
			kwh[i] = r.KWhSaved
		}
		sort.Float64s(percents)
		out = append(out, Tier{
			ExistingLx:    lx,
			Count:         len(g),
			SharePercent:  float64(len(g)) / float64(len(rows)) * 100,
			MeanPercent:   stat.Mean(percents, nil),
			MedianPercent: tabular.QuantileSorted(percents, 0.5),
			P05Percent:    tabular.QuantileSorted(percents, 0.05),
			P95Percent:    tabular.QuantileSorted(percents, 0.95),
			KWhMean:       stat.Mean(kwh, nil),
			KWhSum:        floats.Sum(kwh),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExistingLx < out[j].ExistingLx })
	return out
}

// extremes returns the n rows with the highest (or lowest) saving ratio.
// Ties keep input order.
func extremes(rows []Row, n int, highest bool) []Row {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if highest {
			return sorted[i].SavingRatio > sorted[j].SavingRatio
		}
		return sorted[i].SavingRatio < sorted[j].SavingRatio
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// WriteCSV writes the per-row savings table.
func (r *Report) WriteCSV(w io.Writer, bom bool) error {
	out := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = []string{
			row.GridID,
			tabular.FormatFloat(row.ExistingLx),
			tabular.FormatFloat(row.RecommendedLx),
			tabular.FormatFloat(row.SavingRatio),
			tabular.FormatFloat(row.SavingPercent()),
			tabular.FormatFloat(row.KWhSaved),
		}
	}
	return tabular.Write(w, RowColumns, out, bom)
}
