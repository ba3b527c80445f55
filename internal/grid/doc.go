// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

/*
Package grid stores per-cell features in DuckDB for the map endpoints.

A grid feature file is read with read_csv_auto into a staging table and
mapped to the six model features:

  - night_traffic: the column when present, else the mean of the three
    hourly traffic slots divided by TrafficScale, clamped to [0, 1]
  - cctv_density: clamped to [0, 1], 0 when absent
  - park_within: park_within, park_within_50m or park_in_grid, in that order
  - commercial_density, residential_density, existing_lx: the column when
    present, else the configured default

Cells without coordinates are laid out on a rectangular grid around the
configured center for List.
*/
package grid
