// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

/*
Package synthetic generates seeded training tables from a small set of
observed anchor cells.

Each synthetic cell bootstraps an anchor, jitters its traffic and CCTV
density, splits the traffic over three night hours with a Dirichlet draw and
derives the commercial and residential densities from noisy linear mixes.
Existing illuminance is assigned by the 30th and 70th percentiles of a
commercial index (10, 15 or 25 lx). Label then adds the rule recommendation
so the table can train a learned scorer.

Generation is deterministic for a seed and is only used offline.
*/
package synthetic
