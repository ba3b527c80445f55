// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

/*
Package logging provides the process-wide zerolog logger.

The server and lumenctl call Init once from main with the logging section of
the configuration. Packages that own a component (grid store, run journal,
batch pipeline) take a zerolog.Logger in their constructor and derive a
component logger from it; everything else logs through the package-level
helpers.

# Quick Start

	logging.Init(logging.Config{Level: "info", Format: "json"})
	logging.Info().Str("addr", addr).Msg("HTTP server listening")

	gridLogger := logging.WithComponent("grid")

# Context Fields

HTTP handlers tag the request context with the chi request id, and lumenctl
tags the run context with the journal run id. Ctx adds both when present:

	ctx = logging.ContextWithRunID(ctx, run.ID)
	logging.Ctx(ctx).Info().Int("rows", n).Msg("batch finished")

# slog Bridge

SlogHandler lets the suture supervisor report service events through
sutureslog:

	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger("supervisor")}

# Configuration

	LOG_LEVEL   trace, debug, info, warn, error (default: info)
	LOG_FORMAT  json, console (default: json)
	LOG_CALLER  include caller file:line (default: false)
*/
package logging
