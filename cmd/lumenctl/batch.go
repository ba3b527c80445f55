// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/lumen/internal/batch"
	"github.com/tomtom215/lumen/internal/logging"
	"github.com/tomtom215/lumen/internal/recommend"
	"github.com/tomtom215/lumen/internal/recommend/scorers"
	"github.com/tomtom215/lumen/internal/runlog"
)

const outputSuffix = "_reco.csv"

var (
	errNoInput       = errors.New("at least one input file is required")
	errOutputTooMany = errors.New("--output takes a single input; use --out-dir for several")
)

const (
	flagScorer       = "scorer"
	flagModel        = "model"
	flagModelVersion = "model-version"
	flagOutput       = "output"
	flagOutDir       = "out-dir"
	flagParallel     = "parallel"
	flagNoBOM        = "no-bom"
)

func modelVersionFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  flagModelVersion,
		Usage: "Stored model version, 0 for the latest",
	}
}

func noBOMFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  flagNoBOM,
		Usage: "Do not prefix CSV output with a UTF-8 byte order mark",
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Aliases:   []string{"b"},
		Usage:     "Score grid feature tables and write recommendation tables",
		ArgsUsage: "<features.csv>...",
		UsageText: `lumenctl batch grid_features.csv -o grid_reco.csv
   lumenctl batch --scorer learned --model lgbm_reco districts/*.csv --out-dir out/`,
		Action: cmdBatch,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagScorer,
				Usage: "Scorer to run [rule, learned] (default: model.scorer from config)",
			},
			&cli.StringFlag{
				Name:  flagModel,
				Usage: "Stored model name for the learned scorer (default: model.name from config)",
			},
			modelVersionFlag(),
			&cli.StringFlag{
				Name:    flagOutput,
				Aliases: []string{"o"},
				Usage:   "Output CSV path (single input only)",
			},
			&cli.StringFlag{
				Name:  flagOutDir,
				Usage: "Directory for <input>" + outputSuffix + " files (default: next to each input)",
			},
			&cli.IntFlag{
				Name:  flagParallel,
				Usage: "Number of inputs scored concurrently",
				Value: 2,
			},
			noBOMFlag(),
		},
	}
}

// BatchSummary is printed for every input of a batch command.
type BatchSummary struct {
	RunID  string        `json:"run_id" yaml:"run_id"`
	Input  string        `json:"input" yaml:"input"`
	Output string        `json:"output,omitempty" yaml:"output,omitempty"`
	Result *batch.Result `json:"result,omitempty" yaml:"result,omitempty"`
	Error  string        `json:"error,omitempty" yaml:"error,omitempty"`
}

func cmdBatch(ctx context.Context, cmd *cli.Command) error {
	st, err := getState(cmd)
	if err != nil {
		return err
	}
	inputs := cmd.Args().Slice()
	if len(inputs) == 0 {
		return errNoInput
	}
	if cmd.String(flagOutput) != "" && len(inputs) > 1 {
		return errOutputTooMany
	}

	engine, err := st.buildEngine(ctx, cmd)
	if err != nil {
		return err
	}
	cfg := st.cfg.Batch
	if cmd.Bool(flagNoBOM) {
		cfg.BOM = false
	}

	summaries := make([]BatchSummary, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cmd.Int(flagParallel), 1))
	for i, input := range inputs {
		output := cmd.String(flagOutput)
		if output == "" {
			output = defaultOutput(input, cmd.String(flagOutDir))
		}
		g.Go(func() error {
			summaries[i] = st.runBatch(gctx, engine, cfg, input, output)
			if summaries[i].Error != "" {
				return fmt.Errorf("%s: %s", input, summaries[i].Error)
			}
			return nil
		})
	}
	runErr := g.Wait()

	if err := st.encode(summaries); err != nil {
		return err
	}
	return runErr
}

func (st *appState) runBatch(ctx context.Context, engine *recommend.Engine, cfg batch.Config, input, output string) BatchSummary {
	run := runlog.NewRun(runlog.KindBatch, input, output)
	ctx = logging.ContextWithRunID(ctx, run.ID)
	summary := BatchSummary{RunID: run.ID, Input: input, Output: output}

	result, err := scoreFile(ctx, batch.NewPipeline(engine, cfg, runLogger(ctx)), input, output)
	if result != nil {
		summary.Result = result
		run.Scorer = result.Scorer
		run.Rows, run.Written, run.Skipped, run.Capped = result.Rows, result.Written, result.Skipped, result.Capped
		run.Details = map[string]float64{
			"unique_recommended": float64(result.UniqueRecommended),
			"filled":             float64(result.Filled),
			"increases":          float64(result.Increases),
		}
	}
	if err != nil {
		summary.Error = err.Error()
		summary.Output = ""
	}
	st.record(ctx, run, err)
	return summary
}

// scoreFile runs the pipeline on input. A failed run leaves no output.
func scoreFile(ctx context.Context, p *batch.Pipeline, input, output string) (result *batch.Result, err error) {
	err = readFile(input, func(in io.Reader) error {
		return writeAtomic(output, func(out io.Writer) error {
			result, err = p.Run(ctx, in, out)
			return err
		})
	})
	return result, err
}

// defaultOutput maps grid.csv to <dir>/grid_reco.csv.
func defaultOutput(input, dir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + outputSuffix
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base)
}

// buildEngine builds the configured scorer with flag overrides.
func (st *appState) buildEngine(ctx context.Context, cmd *cli.Command) (*recommend.Engine, error) {
	sel := st.cfg.Model
	if v := cmd.String(flagScorer); v != "" {
		sel.Scorer = v
	}
	if v := cmd.String(flagModel); v != "" {
		sel.Name = v
	}
	if cmd.IsSet(flagModelVersion) {
		sel.Version = cmd.Int(flagModelVersion)
	}

	logger := logging.WithComponent("lumenctl")
	scorer, err := scorers.Build(ctx, sel, logger)
	if err != nil {
		return nil, fmt.Errorf("build scorer: %w", err)
	}
	return recommend.NewEngine(st.cfg.Engine(), scorer, logger)
}
