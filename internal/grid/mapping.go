// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package grid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/lumen/internal/recommend"
)

// Raw column names understood by the loader besides the feature keys.
var (
	idColumns      = []string{"grid_id", "id"}
	trafficColumns = []string{"traffic_01_02", "traffic_02_03", "traffic_03_04"}
	parkColumns    = []string{recommend.KeyParkWithin, "park_within_50m", "park_in_grid"}
)

const (
	// ntlDefaultTraffic and ntlDivisor turn the first traffic slot into the
	// map brightness proxy.
	ntlDefaultTraffic = 50.0
	ntlDivisor        = 30.0
)

// featureSelect builds the query turning the staging table into the feature
// table. cols maps normalized column names to their exact names.
func (c Config) featureSelect(cols map[string]string) (string, error) {
	id, ok := firstOf(cols, idColumns...)
	if !ok {
		return "", ErrNoIDColumn
	}

	var night string
	if col, ok := cols[recommend.KeyNightTraffic]; ok {
		night = clamp01(num(col))
	} else {
		slots := make([]string, len(trafficColumns))
		for i, name := range trafficColumns {
			slots[i] = "0"
			if col, ok := cols[name]; ok {
				slots[i] = "COALESCE(" + num(col) + ", 0)"
			}
		}
		night = clamp01(fmt.Sprintf("(%s) / 3.0 / %s", strings.Join(slots, " + "), literal(c.TrafficScale)))
	}

	cctv := "0.0"
	if col, ok := cols[recommend.KeyCCTVDensity]; ok {
		cctv = clamp01(num(col))
	}

	park := "FALSE"
	if col, ok := firstOf(cols, parkColumns...); ok {
		park = flag(col)
	}

	ntl := literal(ntlDefaultTraffic / ntlDivisor)
	if col, ok := cols[trafficColumns[0]]; ok {
		ntl = fmt.Sprintf("COALESCE(%s, %s) / %s", num(col), literal(ntlDefaultTraffic), literal(ntlDivisor))
	}

	idExpr := "TRIM(CAST(" + quoteIdent(id) + " AS VARCHAR))"
	return fmt.Sprintf(`SELECT %s AS grid_id,
	CAST(%s AS DOUBLE) AS night_traffic,
	CAST(%s AS DOUBLE) AS cctv_density,
	%s AS park_within,
	CAST(%s AS DOUBLE) AS commercial_density,
	CAST(%s AS DOUBLE) AS residential_density,
	CAST(%s AS DOUBLE) AS existing_lx,
	CAST(%s AS DOUBLE) AS ntl_mean,
	row_number() OVER () - 1 AS ord
FROM %s
WHERE %s IS NOT NULL AND %s <> ''`,
		idExpr,
		night,
		cctv,
		park,
		withDefault(cols, recommend.KeyCommercialDensity, c.DefaultCommercial, true),
		withDefault(cols, recommend.KeyResidentialDensity, c.DefaultResidential, true),
		withDefault(cols, recommend.KeyExistingLx, c.DefaultExistingLx, false),
		ntl,
		rawTable,
		idExpr, idExpr,
	), nil
}

func firstOf(cols map[string]string, names ...string) (string, bool) {
	for _, n := range names {
		if col, ok := cols[n]; ok {
			return col, true
		}
	}
	return "", false
}

// withDefault reads a numeric column, falling back to def when the column or
// the cell is missing.
func withDefault(cols map[string]string, key string, def float64, ratio bool) string {
	col, ok := cols[key]
	if !ok {
		return literal(def)
	}
	expr := fmt.Sprintf("COALESCE(%s, %s)", num(col), literal(def))
	if ratio {
		return clamp01(expr)
	}
	return expr
}

// num coerces a text cell the way tabular.Coerce does for plain numbers:
// thousands separators and percent signs are dropped.
func num(col string) string {
	return fmt.Sprintf("TRY_CAST(REPLACE(REPLACE(TRIM(%s), ',', ''), '%%', '') AS DOUBLE)", quoteIdent(col))
}

// flag reads a boolean cell written as 1/0, true/false, O/X, Y/N or yes/no.
func flag(col string) string {
	return fmt.Sprintf("COALESCE(UPPER(TRIM(%s)) IN ('TRUE', 'O', 'Y', 'YES') OR %s >= 1, FALSE)", quoteIdent(col), num(col))
}

func clamp01(expr string) string {
	return fmt.Sprintf("LEAST(GREATEST(COALESCE(%s, 0), 0), 1)", expr)
}

func literal(v float64) string {
	return "CAST(" + strconv.FormatFloat(v, 'g', -1, 64) + " AS DOUBLE)"
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
