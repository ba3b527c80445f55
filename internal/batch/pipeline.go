// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/lumen/internal/metrics"
	"github.com/tomtom215/lumen/internal/recommend"
	"github.com/tomtom215/lumen/internal/tabular"
)

// IDColumns are the accepted identifier columns, in preference order.
var IDColumns = []string{"grid_id", "id"}

// OutputColumns is the header of the recommendation file.
var OutputColumns = []string{
	"grid_id",
	"existing_lx",
	"recommended_lx",
	"delta_percent",
	"keep_hours",
	"reason_1",
	"reason_2",
	"reason_3",
	"reasons",
}

const (
	outputDecimals = 3
	maxViolations  = 10
	cancelCheck    = 1024
)

// ErrExistingLx is returned when existing_lx has a value that is not a number.
var ErrExistingLx = errors.New("existing_lx must be numeric on every row")

// Config controls a batch run.
type Config struct {
	// BOM prefixes the output with a UTF-8 byte order mark so spreadsheet
	// tools detect the encoding.
	BOM bool `koanf:"bom"`

	// SkipLogInterval limits how often skipped rows are logged.
	SkipLogInterval time.Duration `koanf:"skip_log_interval"`
}

// DefaultConfig returns the batch defaults.
func DefaultConfig() Config {
	return Config{
		BOM:             true,
		SkipLogInterval: time.Second,
	}
}

// Result summarizes a batch run.
type Result struct {
	Rows              int           `json:"rows"`
	Written           int           `json:"written"`
	Skipped           int           `json:"skipped"`
	Capped            int           `json:"capped"`
	Filled            int           `json:"filled"`
	UniqueRecommended int           `json:"unique_recommended"`
	Increases         int           `json:"increases"`
	IDColumn          string        `json:"id_column"`
	Separator         string        `json:"separator"`
	Scorer            string        `json:"scorer"`
	Duration          time.Duration `json:"duration"`
}

// Pipeline scores every row of a feature table with one engine.
type Pipeline struct {
	engine  *recommend.Engine
	cfg     Config
	logger  zerolog.Logger
	skipLog *rate.Sometimes
}

// NewPipeline creates a pipeline around a ready engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipeline(engine *recommend.Engine, cfg Config, logger zerolog.Logger) *Pipeline {
	if cfg.SkipLogInterval <= 0 {
		cfg.SkipLogInterval = DefaultConfig().SkipLogInterval
	}
	return &Pipeline{
		engine:  engine,
		cfg:     cfg,
		logger:  logger.With().Str("component", "batch").Logger(),
		skipLog: &rate.Sometimes{First: 5, Interval: cfg.SkipLogInterval},
	}
}

// Run reads a feature table from in and writes recommendations to out.
//
// All six feature columns must be present. Feature cells are coerced and
// gaps filled with the column median; existing_lx must parse on every row.
// Rows whose prediction fails are skipped and counted. If any output row
// would brighten a cell the run aborts with *recommend.PolicyViolationError
// and nothing is written.
func (p *Pipeline) Run(ctx context.Context, in io.Reader, out io.Writer) (result *Result, err error) {
	start := time.Now()
	result = &Result{Scorer: p.engine.Scorer().Name()}
	defer func() {
		result.Duration = time.Since(start)
		metrics.RecordRun("batch", result.Duration, result.Written, result.Skipped, result.Capped, runErrorType(err))
	}()

	table, err := tabular.Read(in)
	if err != nil {
		return result, err
	}
	result.Rows = table.Len()
	result.Separator = string(table.Sep)

	if missing := table.Missing(recommend.FeatureOrder...); len(missing) > 0 {
		return result, &recommend.MissingFeatureError{Keys: missing}
	}

	ids := rowIDs(table, result)
	columns, filled, err := featureColumns(table)
	if err != nil {
		return result, err
	}
	result.Filled = filled

	p.logger.Info().
		Int("rows", result.Rows).
		Str("id_column", result.IDColumn).
		Str("separator", strconv.QuoteRune(table.Sep)).
		Int("filled", filled).
		Str("scorer", result.Scorer).
		Msg("batch run started")

	rows := make([][]string, 0, table.Len())
	var violations []recommend.ViolationRow
	seen := make(map[float64]struct{})
	policy := p.engine.Policy()

	for i := 0; i < table.Len(); i++ {
		if i%cancelCheck == 0 {
			if err := ctx.Err(); err != nil {
				return result, err
			}
		}

		// A park flag that stayed blank after filling means no park.
		park := columns[2][i]
		fv := recommend.NewFeatureVector(
			columns[0][i], columns[1][i], !math.IsNaN(park) && park != 0,
			columns[3][i], columns[4][i], columns[5][i],
		)
		rec, err := p.engine.Recommend(ids[i], fv)
		if err != nil {
			result.Skipped++
			metrics.RecordPredictionFailure(result.Scorer)
			p.skipLog.Do(func() {
				p.logger.Warn().Err(err).Str("grid_id", ids[i]).Int("row", i).Msg("row skipped")
			})
			continue
		}
		if rec.Capped() {
			result.Capped++
		}
		metrics.RecordRecommendation(result.Scorer, metrics.Outcome(rec.ExistingLx, rec.RawLx, rec.DeltaPercent), rec.DeltaPercent)

		var violation *recommend.PolicyViolationError
		if err := policy.CheckInvariant(rec.GridID, rec.RecommendedLx, rec.ExistingLx); errors.As(err, &violation) {
			result.Increases++
			if len(violations) < maxViolations {
				violations = append(violations, violation.Rows...)
			}
		}
		// Rounding must not push the output above the existing level.
		recommended := math.Min(recommend.Round(rec.RecommendedLx, outputDecimals), rec.ExistingLx)
		seen[recommended] = struct{}{}

		row, err := outputRow(rec, recommended)
		if err != nil {
			return result, err
		}
		rows = append(rows, row)
	}

	result.UniqueRecommended = len(seen)
	if result.Increases > 0 {
		return result, &recommend.PolicyViolationError{Rows: violations, Total: result.Increases}
	}

	if err := tabular.Write(out, OutputColumns, rows, p.cfg.BOM); err != nil {
		return result, err
	}
	result.Written = len(rows)

	p.logger.Info().
		Int("rows", result.Rows).
		Int("written", result.Written).
		Int("skipped", result.Skipped).
		Int("capped", result.Capped).
		Int("unique_recommended", result.UniqueRecommended).
		Dur("duration", time.Since(start)).
		Msg("batch run finished")

	return result, nil
}

// rowIDs returns the identifier of every row: the first present id column,
// else the row index.
func rowIDs(table *tabular.Table, result *Result) []string {
	ids := make([]string, table.Len())
	if name, ok := table.FirstOf(IDColumns...); ok {
		result.IDColumn = name
		cells, _ := table.Column(name) //nolint:errcheck // column presence checked by FirstOf
		for i, c := range cells {
			ids[i] = strings.TrimSpace(c)
		}
		return ids
	}
	for i := range ids {
		ids[i] = strconv.Itoa(i)
	}
	return ids
}

// featureColumns returns the six feature columns in FeatureOrder, coerced
// and median-filled. existing_lx is parsed strictly.
func featureColumns(table *tabular.Table) ([][]float64, int, error) {
	columns := make([][]float64, len(recommend.FeatureOrder))
	filled := 0
	for c, key := range recommend.FeatureOrder {
		if key == recommend.KeyExistingLx {
			values, err := existingColumn(table)
			if err != nil {
				return nil, 0, err
			}
			columns[c] = values
			continue
		}
		values, err := table.Floats(key)
		if err != nil {
			return nil, 0, err
		}
		filled += tabular.FillMedian(values)
		columns[c] = values
	}
	return columns, filled, nil
}

func existingColumn(table *tabular.Table) ([]float64, error) {
	cells, err := table.Column(recommend.KeyExistingLx)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(cells))
	for i, c := range cells {
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: row %d has %q", ErrExistingLx, i, c)
		}
		values[i] = v
	}
	return values, nil
}

func outputRow(rec *recommend.Recommendation, recommended float64) ([]string, error) {
	reasons := make([]string, recommend.MaxReasons)
	for i, r := range rec.Reasons {
		if i == recommend.MaxReasons {
			break
		}
		reasons[i] = FormatReason(r)
	}

	payload := rec.Reasons
	if payload == nil {
		payload = []recommend.Reason{}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode reasons for %s: %w", rec.GridID, err)
	}

	return []string{
		rec.GridID,
		tabular.FormatFloat(rec.ExistingLx),
		tabular.FormatFloat(recommended),
		tabular.FormatFloat(recommend.Round(recommend.RawDeltaPercent(rec.RecommendedLx, rec.ExistingLx), outputDecimals)),
		strconv.Itoa(rec.DurationHours),
		reasons[0],
		reasons[1],
		reasons[2],
		string(encoded),
	}, nil
}

// FormatReason renders a reason slot as key|label|direction.
func FormatReason(r recommend.Reason) string {
	return r.Key + "|" + r.Label + "|" + string(r.Direction)
}

func runErrorType(err error) string {
	var missing *recommend.MissingFeatureError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, recommend.ErrPolicyViolation):
		return "policy_violation"
	case errors.As(err, &missing), errors.Is(err, ErrExistingLx), errors.Is(err, tabular.ErrEmptyTable):
		return "input"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
