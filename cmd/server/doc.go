// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

// Package main is the Lumen HTTP server.
//
// The server answers single dimming recommendations on POST /predict and,
// when a grid feature file is configured, per-cell recommendations for the
// map frontend on /api/grids and /api/reco.
//
// # Startup
//
//  1. Configuration: defaults, optional YAML file, environment (Koanf v2)
//  2. Scorer: rule formula, or a learned model from MODEL_DIR. A learned
//     model that fails to load stops the server.
//  3. Grid store: DuckDB table loaded from GRID_FEATURES_PATH (optional)
//  4. Engine, recommendation cache and chi router
//  5. Supervisor tree: HTTP server plus maintenance jobs
//
// # API Docs
//
// The Swagger UI is served at /docs, its document at /docs/doc.json. The
// document lives in the docs package and is regenerated from the handler
// annotations with:
//
//	swag init -g cmd/server/docs.go -o docs --parseInternal
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The HTTP server stops
// accepting connections and drains in-flight requests for
// HTTP_SHUTDOWN_TIMEOUT before the grid store is closed.
//
// # Example Usage
//
//	export GRID_FEATURES_PATH=./data/grid_features.csv
//	export MODEL_SCORER=learned MODEL_DIR=./data/models
//	./lumen-server
package main
