// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package main

import (
	"context"
	"errors"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/tomtom215/lumen/internal/logging"
	"github.com/tomtom215/lumen/internal/report"
	"github.com/tomtom215/lumen/internal/runlog"
)

var errOneInput = errors.New("exactly one input file is required")

const (
	flagCSV      = "csv"
	flagLampWatt = "lamp-watt"
	flagHours    = "hours"
	flagTop      = "top"
)

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Aliases:   []string{"r"},
		Usage:     "Estimate energy savings of a recommendation table",
		ArgsUsage: "<grid_reco.csv>",
		UsageText: `lumenctl report grid_reco.csv
   lumenctl report grid_reco.csv --lamp-watt 150 --csv savings.csv
   lumenctl --format yaml report grid_reco.csv`,
		Action: cmdReport,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagCSV,
				Usage: "Also write the per-cell savings table to this path",
			},
			&cli.FloatFlag{
				Name:  flagLampWatt,
				Usage: "Nominal lamp power in watts (default: report.lamp_watt from config)",
			},
			&cli.FloatFlag{
				Name:  flagHours,
				Usage: "Dimmed hours per night (default: report.hours from config)",
			},
			&cli.IntFlag{
				Name:  flagTop,
				Usage: "Cells listed in the top and bottom tables (default: report.top_n from config)",
			},
			noBOMFlag(),
		},
	}
}

func cmdReport(ctx context.Context, cmd *cli.Command) (err error) {
	st, err := getState(cmd)
	if err != nil {
		return err
	}
	if cmd.NArg() != 1 {
		return errOneInput
	}
	opts := st.cfg.Report
	if cmd.IsSet(flagLampWatt) {
		opts.LampWatt = cmd.Float(flagLampWatt)
	}
	if cmd.IsSet(flagHours) {
		opts.Hours = cmd.Float(flagHours)
	}
	if cmd.IsSet(flagTop) {
		opts.TopN = cmd.Int(flagTop)
	}

	input, csvPath := cmd.Args().First(), cmd.String(flagCSV)
	run := runlog.NewRun(runlog.KindReport, input, csvPath)
	ctx = logging.ContextWithRunID(ctx, run.ID)
	defer func() { st.record(ctx, run, err) }()

	var inputs []report.Input
	if err := readFile(input, func(r io.Reader) error {
		inputs, err = report.ReadInputs(r)
		return err
	}); err != nil {
		return err
	}

	rep, err := report.Build(inputs, opts)
	if err != nil {
		return err
	}
	run.Rows = rep.Summary.Rows
	run.Details = map[string]float64{
		"total_kwh":     rep.Summary.TotalKWh,
		"mean_saving":   rep.Summary.MeanSaving,
		"maintain_rate": rep.Summary.MaintainRate,
	}

	if csvPath != "" {
		bom := st.cfg.Batch.BOM && !cmd.Bool(flagNoBOM)
		if err := writeAtomic(csvPath, func(w io.Writer) error { return rep.WriteCSV(w, bom) }); err != nil {
			return err
		}
		run.Written = len(rep.Rows)
	}
	logging.Ctx(ctx).Info().
		Int("rows", rep.Summary.Rows).
		Float64("total_kwh", rep.Summary.TotalKWh).
		Msg("savings report built")

	if cmd.Root().IsSet(flagFormat) {
		return st.encode(rep)
	}
	return rep.WriteText(st.out, input)
}
