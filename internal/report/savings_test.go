// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package report

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/tomtom215/lumen/internal/tabular"
	"github.com/tomtom215/lumen/internal/validation"
)

const sample = "grid_id,existing_lx,recommended_lx\n" +
	"000001,25,25\n" +
	"000002,25,12.5\n" +
	"000003,15,2\n" +
	"000004,10,10\n" +
	"000005,0,0\n"

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func buildSample(t *testing.T) *Report {
	t.Helper()
	inputs, err := ReadInputs(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ReadInputs() error = %v", err)
	}
	rep, err := Build(inputs, DefaultOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return rep
}

func TestBuild_Summary(t *testing.T) {
	t.Parallel()

	s := buildSample(t).Summary
	// ratios: 0, 0.5, 13/15, 0, 0
	if s.Rows != 5 {
		t.Errorf("Rows = %d, want 5", s.Rows)
	}
	if !near(s.MaintainRate, 0.6) {
		t.Errorf("MaintainRate = %v, want 0.6", s.MaintainRate)
	}
	if !near(s.Min2Rate, 0.2) {
		t.Errorf("Min2Rate = %v, want 0.2", s.Min2Rate)
	}
	wantMean := (0.5 + 13.0/15) / 5
	if !near(s.MeanSaving, wantMean) {
		t.Errorf("MeanSaving = %v, want %v", s.MeanSaving, wantMean)
	}
	if s.MedianSaving != 0 {
		t.Errorf("MedianSaving = %v, want 0", s.MedianSaving)
	}
	// sorted [0 0 0 0.5 0.8667]: h = 3.8 -> 0.5 + 0.8*(0.3667)
	wantP95 := 0.5 + 0.8*(13.0/15-0.5)
	if !near(s.P95Saving, wantP95) {
		t.Errorf("P95Saving = %v, want %v", s.P95Saving, wantP95)
	}
	wantKWh := 0.3 * (0.5 + 13.0/15)
	if !near(s.TotalKWh, wantKWh) {
		t.Errorf("TotalKWh = %v, want %v", s.TotalKWh, wantKWh)
	}
}

func TestBuild_Tiers(t *testing.T) {
	t.Parallel()

	tiers := buildSample(t).Tiers
	if len(tiers) != 4 {
		t.Fatalf("len(Tiers) = %d, want 4", len(tiers))
	}
	wantLx := []float64{0, 10, 15, 25}
	for i, tier := range tiers {
		if tier.ExistingLx != wantLx[i] {
			t.Errorf("Tiers[%d].ExistingLx = %v, want %v", i, tier.ExistingLx, wantLx[i])
		}
	}
	top := tiers[3]
	if top.Count != 2 || !near(top.SharePercent, 40) || !near(top.MeanPercent, 25) {
		t.Errorf("25 lx tier = %+v", top)
	}
	if !near(top.KWhSum, 0.15) {
		t.Errorf("25 lx KWhSum = %v, want 0.15", top.KWhSum)
	}
}

func TestBuild_Extremes(t *testing.T) {
	t.Parallel()

	inputs, err := ReadInputs(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.TopN = 2
	rep, err := Build(inputs, opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(rep.Top) != 2 || rep.Top[0].GridID != "000003" || rep.Top[1].GridID != "000002" {
		t.Errorf("Top = %+v", rep.Top)
	}
	if len(rep.Bottom) != 2 || rep.Bottom[0].GridID != "000001" || rep.Bottom[1].GridID != "000004" {
		t.Errorf("Bottom = %+v", rep.Bottom)
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	if _, err := Build(nil, DefaultOptions()); !errors.Is(err, ErrNoRows) {
		t.Errorf("Build(nil) error = %v, want ErrNoRows", err)
	}

	opts := DefaultOptions()
	opts.LampWatt = 0
	_, err := Build([]Input{{GridID: "1", ExistingLx: 10, RecommendedLx: 5}}, opts)
	var verr *validation.RequestValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Build(zero watt) error = %v, want RequestValidationError", err)
	}
}

func TestReadInputs_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"missing column", "grid_id,existing_lx\n1,25\n"},
		{"non-numeric recommended", "grid_id,existing_lx,recommended_lx\n1,25,dim\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ReadInputs(strings.NewReader(tt.input)); err == nil {
				t.Error("ReadInputs() = nil error")
			}
		})
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := buildSample(t).WriteText(&buf, "reco.csv"); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"input: reco.csv",
		"rows: 5",
		"assumption: 100W, 3h",
		"maintain_rate (recommended==existing): 60.00 %",
		"min2_rate (recommended==2): 20.00 %",
		"=== By existing_lx ===",
		"=== Top5 savings ===",
		"=== Bottom5 savings ===",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteText() missing %q\n%s", want, out)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := buildSample(t).WriteCSV(&buf, false); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	tbl, err := tabular.Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(tbl.Header, ",") != strings.Join(RowColumns, ",") || tbl.Len() != 5 {
		t.Fatalf("Header = %v, Len = %d", tbl.Header, tbl.Len())
	}
	if tbl.Rows[1][3] != "0.5" || tbl.Rows[1][4] != "50" {
		t.Errorf("row 2 = %v", tbl.Rows[1])
	}
}
