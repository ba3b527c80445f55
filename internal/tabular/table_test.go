// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package tabular

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestRead_Separators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantSep rune
	}{
		{"comma", "grid_id,existing_lx\n1,25\n", ','},
		{"tab", "grid_id\texisting_lx\n1\t25\n", '\t'},
		{"semicolon", "grid_id;existing_lx\n1;25,5\n", ';'},
		{"pipe", "grid_id|existing_lx\n1|25\n", '|'},
		{"single column falls back to comma", "grid_id\n1\n", ','},
		{"bom", "\ufeffgrid_id,existing_lx\n1,25\n", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tbl, err := Read(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if tbl.Sep != tt.wantSep {
				t.Errorf("Sep = %q, want %q", tbl.Sep, tt.wantSep)
			}
			if tbl.Header[0] != "grid_id" {
				t.Errorf("Header[0] = %q, want grid_id", tbl.Header[0])
			}
			if tbl.Len() != 1 {
				t.Errorf("Len() = %d, want 1", tbl.Len())
			}
		})
	}
}

func TestRead_SemicolonKeepsDecimalComma(t *testing.T) {
	t.Parallel()

	tbl, err := Read(strings.NewReader("grid_id;existing_lx\n1;25,5\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	cells, err := tbl.Column("existing_lx")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	if cells[0] != "25,5" {
		t.Errorf("cell = %q, want 25,5", cells[0])
	}
}

func TestRead_HeaderTrimAndPadding(t *testing.T) {
	t.Parallel()

	tbl, err := Read(strings.NewReader(" grid_id , existing_lx ,note\r\nA,25\r\nB,15,x\r\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !tbl.Has("existing_lx") || tbl.Index("note") != 2 {
		t.Errorf("Header = %q", tbl.Header)
	}
	if got := tbl.Rows[0][2]; got != "" {
		t.Errorf("padded cell = %q, want empty", got)
	}
	if name, ok := tbl.FirstOf("id", "grid_id"); !ok || name != "grid_id" {
		t.Errorf("FirstOf() = %q, %v", name, ok)
	}
	if missing := tbl.Missing("grid_id", "cctv_density", "park_within"); len(missing) != 2 || missing[0] != "cctv_density" {
		t.Errorf("Missing() = %v", missing)
	}
}

func TestRead_Errors(t *testing.T) {
	t.Parallel()

	if _, err := Read(strings.NewReader("")); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("Read(empty) error = %v, want ErrEmptyTable", err)
	}
	if _, err := Read(strings.NewReader("\ufeff \n")); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("Read(bom only) error = %v, want ErrEmptyTable", err)
	}
	if _, err := Read(strings.NewReader("a,b\n1,2,3\n")); err == nil {
		t.Error("Read(wide row) should fail")
	}
	tbl, err := Read(strings.NewReader("a,b\n1,2\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.Column("c"); err == nil {
		t.Error("Column(missing) should fail")
	}
}

func TestCoerce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"0.25", 0.25, true},
		{" 12 ", 12, true},
		{"1,234.5", 1234.5, true},
		{"35%", 35, true},
		{"True", 1, true},
		{"false", 0, true},
		{"O", 1, true},
		{"x", 0, true},
		{"Y", 1, true},
		{"N", 0, true},
		{"yes", 1, true},
		{"no", 0, true},
		{"", math.NaN(), false},
		{"n/a", math.NaN(), false},
		{"YES", math.NaN(), false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := Coerce(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("Coerce(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Coerce(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if !ok && !math.IsNaN(got) {
				t.Errorf("Coerce(%q) = %v, want NaN", tt.in, got)
			}
		})
	}
}

func TestMedianAndFill(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	tests := []struct {
		name       string
		in         []float64
		wantMedian float64
		wantFilled int
	}{
		{"odd", []float64{3, 1, nan, 2}, 2, 1},
		{"even", []float64{4, nan, 1, 2, 3, nan}, 2.5, 2},
		{"complete", []float64{1, 2}, 1.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Median(tt.in); got != tt.wantMedian {
				t.Errorf("Median() = %v, want %v", got, tt.wantMedian)
			}
			if got := FillMedian(tt.in); got != tt.wantFilled {
				t.Errorf("FillMedian() = %d, want %d", got, tt.wantFilled)
			}
			for i, v := range tt.in {
				if math.IsNaN(v) {
					t.Errorf("value %d still NaN", i)
				}
			}
		})
	}

	all := []float64{nan, nan}
	if !math.IsNaN(Median(all)) || FillMedian(all) != 0 {
		t.Error("all-NaN column should stay NaN")
	}
}

func TestFloats(t *testing.T) {
	t.Parallel()

	tbl, err := Read(strings.NewReader("park_within\nO\nX\n\n1\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	got, err := tbl.Floats("park_within")
	if err != nil {
		t.Fatalf("Floats() error = %v", err)
	}
	// blank lines are skipped by the reader
	if len(got) != 3 || got[0] != 1 || got[1] != 0 || got[2] != 1 {
		t.Errorf("Floats() = %v, want [1 0 1]", got)
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rows := [][]string{{"000001", "low_traffic|Little movement, so dimmed.|DOWN"}}
	if err := Write(&buf, []string{"grid_id", "reason_1"}, rows, true); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	want := "\ufeffgrid_id,reason_1\n000001,\"low_traffic|Little movement, so dimmed.|DOWN\"\n"
	if buf.String() != want {
		t.Errorf("Write() = %q, want %q", buf.String(), want)
	}

	// Written output reads back.
	tbl, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if tbl.Rows[0][1] != rows[0][1] {
		t.Errorf("round trip = %q", tbl.Rows[0][1])
	}
}

func TestFormatFloat(t *testing.T) {
	t.Parallel()
	for in, want := range map[float64]string{25: "25", 12.637: "12.637", -49.451: "-49.451", 0: "0"} {
		if got := FormatFloat(in); got != want {
			t.Errorf("FormatFloat(%v) = %q, want %q", in, got, want)
		}
	}
}
