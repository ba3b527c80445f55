// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

/*
Package batch scores a whole feature table and writes one recommendation per
row.

The input is a delimited text file with a header naming the six feature
columns and, optionally, a grid_id or id column. The separator is sniffed.
Feature gaps are filled with the column median; existing_lx must be numeric
everywhere.

The output columns are:

	grid_id, existing_lx, recommended_lx, delta_percent, keep_hours,
	reason_1, reason_2, reason_3, reasons

Each reason slot holds key|label|direction and the reasons column carries the
same list as JSON. Output is UTF-8 with a byte order mark by default.

A run that would raise any cell above its existing illuminance fails with
*recommend.PolicyViolationError before anything is written.
*/
package batch
