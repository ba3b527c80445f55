// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

// Package tabular reads and writes the delimited files exchanged with GIS
// and spreadsheet tools.
//
// Input files come from several hand-maintained sources, so Read accepts a
// BOM, sniffs the separator among comma, tab, semicolon and pipe, and
// Coerce understands O/X and yes/no style markers. Output is always
// comma-separated.
package tabular
