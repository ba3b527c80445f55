// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

// Package main provides the Lumen HTTP server
//
// @title Lumen API
// @version 1.0
// @description Dimming recommendations for street-lighting grid cells.
// @description
// @description Every recommendation stays between the safety floor and the existing illuminance.
// @description Responses use a common envelope: the recommendation or list sits under `data`,
// @description failures under `error` with a machine-readable `code`.
// @description
// @description ## Rate Limiting
// @description
// @description POST /predict is limited per client IP (default 100 requests per minute).
// @description Rejected requests answer 429 with code `TOO_MANY_REQUESTS`.
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/lumen/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8000
// @BasePath /
// @schemes http https
//
// @tag.name Core
// @tag.description Index and health endpoints
//
// @tag.name Recommend
// @tag.description Single-cell and stored-grid dimming recommendations
package main
