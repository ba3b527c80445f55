// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

// Command lumenctl runs the offline side of Lumen: batch recommendations
// over feature tables, synthetic training data, savings reports, model
// artifact management and the run journal.
//
//	lumenctl batch grid_features.csv -o grid_reco.csv
//	lumenctl synth --anchors observed.csv -o synthetic.csv --rows 50000
//	lumenctl report grid_reco.csv --csv savings.csv
//	lumenctl model import lgbm_reco.json
//	lumenctl runs list --limit 20
//
// Configuration is shared with the server (config.yaml, CONFIG_PATH and the
// same environment variables); flags override it.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/lumen/internal/logging"
)

var (
	version = "v0.0.1-default"
	commit  = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		logging.Error().Err(err).Msg("lumenctl failed")
		stop()
		os.Exit(1)
	}
}
