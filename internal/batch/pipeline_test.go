// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package batch

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/lumen/internal/recommend"
	"github.com/tomtom215/lumen/internal/recommend/scorers"
	"github.com/tomtom215/lumen/internal/tabular"
)

const header = "grid_id,night_traffic,cctv_density,park_within,commercial_density,residential_density,existing_lx\n"

func newTestPipeline(t *testing.T, scorer recommend.Scorer) *Pipeline {
	t.Helper()
	engine, err := recommend.NewEngine(nil, scorer, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return NewPipeline(engine, DefaultConfig(), zerolog.Nop())
}

// failingScorer fails on cells with heavy night traffic.
type failingScorer struct{}

func (failingScorer) Name() string { return "failing" }

func (failingScorer) Predict(fv recommend.FeatureVector) (float64, error) {
	if fv.NightTraffic > 0.95 {
		return 0, errors.New("out of range")
	}
	return fv.ExistingLx / 2, nil
}

type constScorer float64

func (constScorer) Name() string { return "const" }

func (c constScorer) Predict(recommend.FeatureVector) (float64, error) { return float64(c), nil }

func readOutput(t *testing.T, out *bytes.Buffer) *tabular.Table {
	t.Helper()
	tbl, err := tabular.Read(out)
	if err != nil {
		t.Fatalf("tabular.Read(output) error = %v", err)
	}
	return tbl
}

func TestRun_RuleScenarios(t *testing.T) {
	t.Parallel()

	input := header +
		"000001,0.9,0.1,0,0.8,0.1,25\n" +
		"000002,0.05,0.8,O,0.05,0.9,25\n" +
		"000003,0.05,0.8,1,0.05,0.9,0\n"

	var out bytes.Buffer
	res, err := newTestPipeline(t, scorers.NewRuleScorer()).Run(context.Background(), strings.NewReader(input), &out)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Rows != 3 || res.Written != 3 || res.Skipped != 0 {
		t.Errorf("Result = %+v", res)
	}
	if res.IDColumn != "grid_id" || res.Scorer != scorers.RuleName {
		t.Errorf("IDColumn = %q, Scorer = %q", res.IDColumn, res.Scorer)
	}
	if !bytes.HasPrefix(out.Bytes(), []byte("\ufeff")) {
		t.Error("output is missing the byte order mark")
	}

	tbl := readOutput(t, &out)
	if strings.Join(tbl.Header, ",") != strings.Join(OutputColumns, ",") {
		t.Fatalf("Header = %v, want %v", tbl.Header, OutputColumns)
	}

	busy := tbl.Rows[0]
	if busy[0] != "000001" || busy[2] != "25" || busy[3] != "0" || busy[4] != "3" {
		t.Errorf("busy row = %v", busy)
	}
	if !strings.HasPrefix(busy[5], "high_traffic|") || !strings.HasSuffix(busy[5], "|UP") {
		t.Errorf("reason_1 = %q, want high_traffic up", busy[5])
	}

	quiet := tbl.Rows[1]
	rec, _ := strconv.ParseFloat(quiet[2], 64)
	delta, _ := strconv.ParseFloat(quiet[3], 64)
	if math.Abs(rec-12.637) > 0.001 || math.Abs(delta+49.451) > 0.0005 {
		t.Errorf("quiet row recommended = %v, delta = %v", rec, delta)
	}
	var reasons []recommend.Reason
	if err := json.Unmarshal([]byte(quiet[8]), &reasons); err != nil {
		t.Fatalf("reasons column: %v", err)
	}
	if len(reasons) == 0 || reasons[0].Key != "high_residential" {
		t.Errorf("reasons = %+v", reasons)
	}

	unlit := tbl.Rows[2]
	if unlit[2] != "0" || unlit[3] != "0" {
		t.Errorf("unlit row = %v", unlit)
	}
}

func TestRun_NeverBrightens(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString(header)
	for i := 0; i < 200; i++ {
		f := float64(i%10) / 10
		b.WriteString(strconv.Itoa(i) + "," + tabular.FormatFloat(f) + ",0.3,0," + tabular.FormatFloat(1-f) + ",0.5," + tabular.FormatFloat(float64(i)*0.1357) + "\n")
	}

	var out bytes.Buffer
	if _, err := newTestPipeline(t, scorers.NewRuleScorer()).Run(context.Background(), strings.NewReader(b.String()), &out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	tbl := readOutput(t, &out)
	for _, row := range tbl.Rows {
		existing, _ := strconv.ParseFloat(row[1], 64)
		rec, _ := strconv.ParseFloat(row[2], 64)
		delta, _ := strconv.ParseFloat(row[3], 64)
		if rec > existing || delta > 0 {
			t.Errorf("row %s brightens: existing=%v recommended=%v delta=%v", row[0], existing, rec, delta)
		}
	}
}

func TestRun_InputHandling(t *testing.T) {
	t.Parallel()

	t.Run("index ids and semicolon separator", func(t *testing.T) {
		t.Parallel()
		input := "night_traffic;cctv_density;park_within;commercial_density;residential_density;existing_lx\n" +
			"0.1;0.2;X;0.1;0.9;20\n" +
			"0.3;0.2;N;0.2;0.5;15\n"
		var out bytes.Buffer
		res, err := newTestPipeline(t, scorers.NewRuleScorer()).Run(context.Background(), strings.NewReader(input), &out)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if res.IDColumn != "" || res.Separator != ";" {
			t.Errorf("IDColumn = %q, Separator = %q", res.IDColumn, res.Separator)
		}
		tbl := readOutput(t, &out)
		if tbl.Rows[0][0] != "0" || tbl.Rows[1][0] != "1" {
			t.Errorf("ids = %q, %q, want row indexes", tbl.Rows[0][0], tbl.Rows[1][0])
		}
	})

	t.Run("median fill", func(t *testing.T) {
		t.Parallel()
		input := header +
			"a,0.2,,0,0.1,0.5,20\n" +
			"b,0.4,0.6,n/a,0.1,0.5,20\n" +
			"c,,0.2,1,0.1,0.5,20\n"
		res, err := newTestPipeline(t, scorers.NewRuleScorer()).Run(context.Background(), strings.NewReader(input), &bytes.Buffer{})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if res.Filled != 3 || res.Written != 3 {
			t.Errorf("Filled = %d, Written = %d, want 3, 3", res.Filled, res.Written)
		}
	})

	t.Run("missing columns", func(t *testing.T) {
		t.Parallel()
		input := "grid_id,night_traffic,existing_lx\n1,0.2,20\n"
		_, err := newTestPipeline(t, scorers.NewRuleScorer()).Run(context.Background(), strings.NewReader(input), &bytes.Buffer{})
		var missing *recommend.MissingFeatureError
		if !errors.As(err, &missing) {
			t.Fatalf("Run() error = %v, want MissingFeatureError", err)
		}
		if len(missing.Keys) != 4 {
			t.Errorf("Keys = %v, want 4 missing", missing.Keys)
		}
	})

	t.Run("non-numeric existing_lx", func(t *testing.T) {
		t.Parallel()
		input := header + "1,0.2,0.2,0,0.1,0.5,bright\n"
		var out bytes.Buffer
		_, err := newTestPipeline(t, scorers.NewRuleScorer()).Run(context.Background(), strings.NewReader(input), &out)
		if !errors.Is(err, ErrExistingLx) {
			t.Errorf("Run() error = %v, want ErrExistingLx", err)
		}
		if out.Len() != 0 {
			t.Error("output written for a failed run")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		_, err := newTestPipeline(t, scorers.NewRuleScorer()).Run(context.Background(), strings.NewReader(""), &bytes.Buffer{})
		if !errors.Is(err, tabular.ErrEmptyTable) {
			t.Errorf("Run() error = %v, want ErrEmptyTable", err)
		}
	})
}

func TestRun_SkipsFailedRows(t *testing.T) {
	t.Parallel()

	input := header +
		"1,0.99,0.2,0,0.1,0.5,20\n" +
		"2,0.2,0.2,0,0.1,0.5,20\n"
	var out bytes.Buffer
	res, err := newTestPipeline(t, failingScorer{}).Run(context.Background(), strings.NewReader(input), &out)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Skipped != 1 || res.Written != 1 {
		t.Errorf("Skipped = %d, Written = %d, want 1, 1", res.Skipped, res.Written)
	}
	tbl := readOutput(t, &out)
	if tbl.Len() != 1 || tbl.Rows[0][0] != "2" || tbl.Rows[0][2] != "10" {
		t.Errorf("rows = %v", tbl.Rows)
	}
}

func TestRun_DeltaFromUnroundedRecommendation(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	_, err := newTestPipeline(t, constScorer(12.3456)).Run(context.Background(), strings.NewReader(header+"1,0.2,0.2,0,0.1,0.5,25\n"), &out)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	row := readOutput(t, &out).Rows[0]
	if row[2] != "12.346" || row[3] != "-50.618" {
		t.Errorf("recommended_lx = %s, delta_percent = %s, want 12.346, -50.618", row[2], row[3])
	}
}

func TestRun_BlankParkColumnMeansNoPark(t *testing.T) {
	t.Parallel()

	run := func(park string) [][]string {
		t.Helper()
		input := header +
			"1,0.4,0.5," + park + ",0.3,0.5,25\n" +
			"2,0.3,0.4," + park + ",0.2,0.6,15\n"
		var out bytes.Buffer
		if _, err := newTestPipeline(t, scorers.NewRuleScorer()).Run(context.Background(), strings.NewReader(input), &out); err != nil {
			t.Fatalf("Run(park=%q) error = %v", park, err)
		}
		return readOutput(t, &out).Rows
	}

	blank, absent := run(""), run("0")
	for i := range blank {
		if strings.Join(blank[i], ",") != strings.Join(absent[i], ",") {
			t.Errorf("row %d: blank park = %v, want %v", i, blank[i], absent[i])
		}
		for _, reason := range blank[i][5:8] {
			if strings.HasPrefix(reason, recommend.KeyParkWithin+"|") && strings.HasSuffix(reason, "|"+string(recommend.DirectionDown)) {
				t.Errorf("row %d: reason %q credits a park", i, reason)
			}
		}
	}
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestPipeline(t, scorers.NewRuleScorer()).Run(ctx, strings.NewReader(header+"1,0.2,0.2,0,0.1,0.5,20\n"), &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestFormatReason(t *testing.T) {
	t.Parallel()
	r := recommend.Reason{Key: "low_traffic", Label: "Little movement at night.", Direction: recommend.DirectionDown}
	if got := FormatReason(r); got != "low_traffic|Little movement at night.|"+string(recommend.DirectionDown) {
		t.Errorf("FormatReason() = %q", got)
	}
}

func TestRunErrorType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&recommend.PolicyViolationError{Total: 1}, "policy_violation"},
		{&recommend.MissingFeatureError{Keys: []string{"existing_lx"}}, "input"},
		{ErrExistingLx, "input"},
		{context.Canceled, "canceled"},
		{errors.New("disk full"), "other"},
	}
	for _, tt := range tests {
		if got := runErrorType(tt.err); got != tt.want {
			t.Errorf("runErrorType(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
