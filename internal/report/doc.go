// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

// Package report estimates the energy saved by a recommendation table.
//
// The saving ratio of a cell is 1 - clip(recommended/existing, 0, 1) and the
// energy saved is LampWatt/1000 * Hours * ratio. The report holds the overall
// indicators, a breakdown per existing illuminance tier, and the cells with
// the largest and smallest savings.
package report
