// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/tomtom215/lumen/internal/logging"
	"github.com/tomtom215/lumen/internal/recommend/scorers"
	"github.com/tomtom215/lumen/internal/runlog"
	"github.com/tomtom215/lumen/internal/synthetic"
)

const (
	flagAnchors = "anchors"
	flagRows    = "rows"
	flagSeed    = "seed"
	flagNoLabel = "no-label"
)

func synthCommand() *cli.Command {
	return &cli.Command{
		Name:      "synth",
		Aliases:   []string{"s"},
		Usage:     "Generate a labeled synthetic training table from observed anchors",
		UsageText: "lumenctl synth --anchors observed.csv -o synthetic.csv --rows 50000 --seed 7",
		Action:    cmdSynth,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagAnchors,
				Aliases:  []string{"a"},
				Usage:    "Observed grid table to bootstrap from",
				Required: true,
			},
			&cli.StringFlag{
				Name:     flagOutput,
				Aliases:  []string{"o"},
				Usage:    "Output CSV path",
				Required: true,
			},
			&cli.IntFlag{
				Name:  flagRows,
				Usage: "Number of synthetic cells (default: synthetic.rows from config)",
			},
			&cli.Uint64Flag{
				Name:  flagSeed,
				Usage: "Random seed (default: synthetic.seed from config)",
			},
			&cli.BoolFlag{
				Name:  flagNoLabel,
				Usage: "Write features only, without recommended_lx and delta_percent",
			},
			noBOMFlag(),
		},
	}
}

// SynthSummary is printed after a synth command.
type SynthSummary struct {
	RunID   string            `json:"run_id" yaml:"run_id"`
	Anchors int               `json:"anchors" yaml:"anchors"`
	Output  string            `json:"output" yaml:"output"`
	Config  synthetic.Config  `json:"config" yaml:"config"`
	Summary synthetic.Summary `json:"summary" yaml:"summary"`
}

func cmdSynth(ctx context.Context, cmd *cli.Command) (err error) {
	st, err := getState(cmd)
	if err != nil {
		return err
	}
	cfg := st.cfg.Synthetic
	if cmd.IsSet(flagRows) {
		cfg.Rows = cmd.Int(flagRows)
	}
	if cmd.IsSet(flagSeed) {
		cfg.Seed = cmd.Uint64(flagSeed)
	}
	labeled := !cmd.Bool(flagNoLabel)
	bom := st.cfg.Batch.BOM && !cmd.Bool(flagNoBOM)

	input, output := cmd.String(flagAnchors), cmd.String(flagOutput)
	run := runlog.NewRun(runlog.KindSynthetic, input, output)
	ctx = logging.ContextWithRunID(ctx, run.ID)
	defer func() { st.record(ctx, run, err) }()

	gen, err := synthetic.NewGenerator(cfg, runLogger(ctx))
	if err != nil {
		return fmt.Errorf("synthetic config: %w", err)
	}

	var anchors []synthetic.Anchor
	if err := readFile(input, func(r io.Reader) error {
		anchors, err = synthetic.ReadAnchors(r)
		return err
	}); err != nil {
		return err
	}

	rows, err := gen.Generate(ctx, anchors)
	if err != nil {
		return err
	}
	if labeled {
		run.Scorer = scorers.RuleName
		if err := synthetic.Label(rows, scorers.NewRuleScorer(), st.cfg.Policy); err != nil {
			return err
		}
	}

	if err := writeAtomic(output, func(w io.Writer) error {
		return synthetic.WriteCSV(w, rows, labeled, bom)
	}); err != nil {
		return err
	}

	summary := synthetic.Summarize(rows, labeled)
	run.Rows, run.Written = len(rows), len(rows)
	run.Details = map[string]float64{
		"anchors":         float64(len(anchors)),
		"seed":            float64(cfg.Seed),
		"maintain_rate":   summary.MaintainRate,
		"min2_rate":       summary.Min2Rate,
		"avg_saving_rate": summary.AvgSavingRate,
	}

	return st.encode(SynthSummary{
		RunID:   run.ID,
		Anchors: len(anchors),
		Output:  output,
		Config:  gen.Config(),
		Summary: summary,
	})
}
