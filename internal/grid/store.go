// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package grid

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/lumen/internal/metrics"
	"github.com/tomtom215/lumen/internal/recommend"
)

const (
	featuresTable = "grid_features"
	rawTable      = "grid_raw"
)

var (
	// ErrGridNotFound is returned for an unknown grid id.
	ErrGridNotFound = errors.New("grid cell not found")

	// ErrNoIDColumn is returned when a feature file has no grid_id or id column.
	ErrNoIDColumn = errors.New("grid feature file needs a grid_id or id column")

	// ErrNotLoaded is returned when the store is queried before a file is loaded.
	ErrNotLoaded = errors.New("grid features not loaded")
)

// Config holds the store location and the rules mapping raw grid columns to
// features.
type Config struct {
	// Path is the DuckDB database file. Empty keeps the store in memory.
	Path string `koanf:"path"`

	// FeaturesPath is a CSV file loaded when the store opens.
	FeaturesPath string `koanf:"features_path"`

	// ReloadInterval polls FeaturesPath and reloads it when its modification
	// time changes. Zero disables polling.
	ReloadInterval time.Duration `koanf:"reload_interval" validate:"gte=0"`

	Threads   int    `koanf:"threads" validate:"gte=0"`
	MaxMemory string `koanf:"max_memory"`

	// TrafficScale divides the mean hourly traffic into night_traffic when the
	// file has no night_traffic column.
	TrafficScale float64 `koanf:"traffic_scale" validate:"gt=0"`

	DefaultCommercial  float64 `koanf:"default_commercial" validate:"gte=0,lte=1"`
	DefaultResidential float64 `koanf:"default_residential" validate:"gte=0,lte=1"`
	DefaultExistingLx  float64 `koanf:"default_existing_lx" validate:"gte=0"`

	// Map layout for cells without coordinates.
	CenterLat float64 `koanf:"center_lat" validate:"gte=-90,lte=90"`
	CenterLon float64 `koanf:"center_lon" validate:"gte=-180,lte=180"`
	LatStep   float64 `koanf:"lat_step" validate:"gt=0"`
	LonStep   float64 `koanf:"lon_step" validate:"gt=0"`
	Columns   int     `koanf:"columns" validate:"gt=0"`
}

// DefaultConfig returns an in-memory store laid out around Seongsu-dong.
func DefaultConfig() Config {
	return Config{
		MaxMemory:          "512MB",
		TrafficScale:       3000,
		DefaultCommercial:  0.5,
		DefaultResidential: 0.5,
		DefaultExistingLx:  100,
		CenterLat:          37.544,
		CenterLon:          127.056,
		LatStep:            0.00225,
		LonStep:            0.0028,
		Columns:            11,
	}
}

// Cell is a grid cell as listed for map rendering.
type Cell struct {
	GridID   string     `json:"grid_id"`
	Centroid [2]float64 `json:"centroid"`
	NTLMean  float64    `json:"ntl_mean"`
}

// Store is a DuckDB-backed grid feature table. It is safe for concurrent use.
type Store struct {
	conn   *sql.DB
	cfg    Config
	logger zerolog.Logger

	// loadMu serializes loads, which share the staging table.
	loadMu sync.Mutex
}

// Open opens the database and loads cfg.FeaturesPath when set.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*Store, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if cfg.Path != "" {
		if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create grid store directory %s: %w", dir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?threads=%d&autoinstall_known_extensions=false&autoload_known_extensions=false", cfg.Path, threads)
	if cfg.MaxMemory != "" {
		connStr += "&max_memory=" + cfg.MaxMemory
	}
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open grid store: %w", err)
	}
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	s := &Store{
		conn:   conn,
		cfg:    cfg,
		logger: logger.With().Str("component", "grid").Logger(),
	}
	if err := s.Ping(ctx); err != nil {
		closeQuietly(conn)
		return nil, err
	}

	if cfg.FeaturesPath != "" {
		if _, err := s.Load(ctx, cfg.FeaturesPath); err != nil {
			closeQuietly(conn)
			return nil, err
		}
	}
	return s, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("grid store ping: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Load replaces the feature table with the contents of a CSV file and
// returns the number of cells.
func (s *Store) Load(ctx context.Context, csvPath string) (n int, err error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("LOAD", featuresTable, time.Since(start), err) }()

	if _, err := os.Stat(csvPath); err != nil {
		return 0, fmt.Errorf("grid feature file: %w", err)
	}

	create := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto(%s, header = true, all_varchar = true)",
		rawTable, sqlString(csvPath))
	if _, err := s.conn.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("read grid feature file %s: %w", csvPath, err)
	}
	defer func() {
		if _, dropErr := s.conn.ExecContext(context.WithoutCancel(ctx), "DROP TABLE IF EXISTS "+rawTable); dropErr != nil {
			s.logger.Warn().Err(dropErr).Msg("failed to drop staging table")
		}
	}()

	cols, err := s.columns(ctx, rawTable)
	if err != nil {
		return 0, err
	}
	query, err := s.cfg.featureSelect(cols)
	if err != nil {
		return 0, err
	}
	if _, err := s.conn.ExecContext(ctx, fmt.Sprintf("CREATE OR REPLACE TABLE %s AS %s", featuresTable, query)); err != nil {
		return 0, fmt.Errorf("build grid features: %w", err)
	}

	n, err = s.Count(ctx)
	if err != nil {
		return 0, err
	}
	metrics.GridCells.Set(float64(n))
	s.logger.Info().
		Str("path", csvPath).
		Int("cells", n).
		Dur("duration", time.Since(start)).
		Msg("grid features loaded")
	return n, nil
}

// columns maps lower-cased trimmed column names to their exact names.
func (s *Store) columns(ctx context.Context, table string) (map[string]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT column_name FROM information_schema.columns WHERE table_name = ? ORDER BY ordinal_position", table)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	defer closeQuietly(rows)

	cols := make(map[string]string)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[key]; !dup {
			cols[key] = name
		}
	}
	return cols, rows.Err()
}

// Count returns the number of loaded cells.
func (s *Store) Count(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("COUNT", featuresTable, time.Since(start), err) }()

	if err = s.conn.QueryRowContext(ctx, "SELECT count(*) FROM "+featuresTable).Scan(&n); err != nil {
		if isMissingTable(err) {
			return 0, ErrNotLoaded
		}
		return 0, fmt.Errorf("count grid cells: %w", err)
	}
	return n, nil
}

// Features returns the feature vector of one cell. Numeric ids match
// regardless of zero padding.
func (s *Store) Features(ctx context.Context, gridID string) (fv recommend.FeatureVector, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, ErrGridNotFound) {
			metrics.RecordDBQuery("SELECT", featuresTable, time.Since(start), nil)
			return
		}
		metrics.RecordDBQuery("SELECT", featuresTable, time.Since(start), err)
	}()

	id := strings.TrimSpace(gridID)
	if id == "" {
		return fv, ErrGridNotFound
	}

	const query = `SELECT night_traffic, cctv_density, park_within, commercial_density, residential_density, existing_lx
		FROM grid_features
		WHERE grid_id = ? OR (TRY_CAST(? AS BIGINT) IS NOT NULL AND TRY_CAST(grid_id AS BIGINT) = TRY_CAST(? AS BIGINT))
		ORDER BY grid_id = ? DESC, ord
		LIMIT 1`

	var nt, cctv, com, res, lx float64
	var park bool
	err = s.conn.QueryRowContext(ctx, query, id, id, id, id).Scan(&nt, &cctv, &park, &com, &res, &lx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fv, fmt.Errorf("%w: %s", ErrGridNotFound, id)
	case err != nil:
		if isMissingTable(err) {
			return fv, ErrNotLoaded
		}
		return fv, fmt.Errorf("lookup grid %s: %w", id, err)
	}
	return recommend.NewFeatureVector(nt, cctv, park, com, res, lx), nil
}

// List returns up to limit cells in file order. A non-positive limit lists
// every cell.
func (s *Store) List(ctx context.Context, limit int) (cells []Cell, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("SELECT", featuresTable, time.Since(start), err) }()

	query := "SELECT grid_id, ord, ntl_mean FROM grid_features ORDER BY ord"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		if isMissingTable(err) {
			return nil, ErrNotLoaded
		}
		return nil, fmt.Errorf("list grid cells: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var c Cell
		var ord int64
		if err := rows.Scan(&c.GridID, &ord, &c.NTLMean); err != nil {
			return nil, err
		}
		c.Centroid = s.cfg.Centroid(int(ord))
		cells = append(cells, c)
	}
	return cells, rows.Err()
}

// Centroid lays cell i out on a rectangular grid around the configured
// center, Columns cells per row.
func (c Config) Centroid(i int) [2]float64 {
	row := i / c.Columns
	col := i % c.Columns
	startLat := c.CenterLat - 5*c.LatStep
	startLon := c.CenterLon - float64(c.Columns)/2*c.LonStep
	return [2]float64{startLat + float64(row)*c.LatStep, startLon + float64(col)*c.LonStep}
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "does not exist")
}

func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() //nolint:errcheck // best-effort cleanup
	}
}
