// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package report

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteText renders the report for a terminal.
func (r *Report) WriteText(w io.Writer, source string) error {
	s := r.Summary
	p := &printer{w: w}

	p.printf("=== Saving Summary (assumption-based) ===\n")
	if source != "" {
		p.printf("input: %s\n", source)
	}
	p.printf("rows: %d\n", s.Rows)
	p.printf("assumption: %.0fW, %gh\n", r.Options.LampWatt, r.Options.Hours)
	p.printf("maintain_rate (recommended==existing): %.2f %%\n", s.MaintainRate*100)
	p.printf("min2_rate (recommended==2): %.2f %%\n", s.Min2Rate*100)
	p.printf("avg saving rate: %.2f %%\n", s.MeanSaving*100)
	p.printf("median saving rate: %.2f %%\n", s.MedianSaving*100)
	p.printf("p05/p95 saving rate: %.2f %% / %.2f %%\n", s.P05Saving*100, s.P95Saving*100)
	p.printf("total kWh saved: %.3f kWh (over all rows)\n", s.TotalKWh)
	if p.err != nil {
		return p.err
	}

	p.printf("\n=== By existing_lx ===\n")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	tp := &printer{w: tw}
	tp.printf("existing_lx\tcount\tshare_%%\tsaving_mean_%%\tsaving_median_%%\tsaving_p05_%%\tsaving_p95_%%\tkwh_mean\tkwh_sum\t\n")
	for _, t := range r.Tiers {
		tp.printf("%g\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t\n",
			t.ExistingLx, t.Count, t.SharePercent, t.MeanPercent, t.MedianPercent,
			t.P05Percent, t.P95Percent, t.KWhMean, t.KWhSum)
	}
	if tp.err != nil {
		return tp.err
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if err := r.writeRows(w, fmt.Sprintf("\n=== Top%d savings ===\n", len(r.Top)), r.Top, 4); err != nil {
		return err
	}
	return r.writeRows(w, fmt.Sprintf("\n=== Bottom%d savings ===\n", len(r.Bottom)), r.Bottom, 6)
}

func (r *Report) writeRows(w io.Writer, title string, rows []Row, decimals int) error {
	if _, err := io.WriteString(w, title); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	p := &printer{w: tw}
	p.printf("grid_id\texisting_lx\trecommended_lx\tsaving_percent\tkwh_saved\t\n")
	for _, row := range rows {
		p.printf("%s\t%g\t%.*f\t%.*f\t%.*f\t\n",
			row.GridID, row.ExistingLx,
			decimals, row.RecommendedLx,
			decimals, row.SavingPercent(),
			decimals, row.KWhSaved)
	}
	if p.err != nil {
		return p.err
	}
	return tw.Flush()
}

// printer keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
