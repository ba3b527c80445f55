// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/lumen/internal/batch"
	"github.com/tomtom215/lumen/internal/grid"
	"github.com/tomtom215/lumen/internal/recommend"
	"github.com/tomtom215/lumen/internal/recommend/scorers"
	"github.com/tomtom215/lumen/internal/report"
	"github.com/tomtom215/lumen/internal/runlog"
	"github.com/tomtom215/lumen/internal/supervisor"
	"github.com/tomtom215/lumen/internal/synthetic"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml or CONFIG_PATH)
//  3. Environment Variables: Override any mapped setting
//
// Sections shared by the server and lumenctl:
//   - Model, Policy, Explain: which scorer runs and how its output is clamped
//     and explained
//   - Grid: DuckDB feature store behind /api/grids and /api/reco
//   - Journal: BadgerDB run journal written by lumenctl
//   - Batch, Report, Synthetic: defaults of the offline commands
//   - Supervisor: restart policy of the server's service tree
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Logging   LoggingConfig    `koanf:"logging"`
	Model     ModelConfig      `koanf:"model"`
	Policy    recommend.Policy `koanf:"policy"`
	Explain   ExplainConfig    `koanf:"explain"`
	Grid      grid.Config      `koanf:"grid"`
	Cache     CacheConfig      `koanf:"cache"`
	Journal   runlog.Config    `koanf:"journal"`
	Batch     batch.Config     `koanf:"batch"`
	Report    report.Options   `koanf:"report"`
	Synthetic synthetic.Config `koanf:"synthetic"`

	Supervisor supervisor.TreeConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging or production

	// CORSOrigins lists the frontends allowed to call the API.
	CORSOrigins []string `koanf:"cors_origins"`

	// Per-IP limit on POST /predict.
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoggingConfig holds logging settings
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Scorer names accepted in ModelConfig.Scorer.
const (
	ScorerRule    = scorers.RuleName
	ScorerLearned = scorers.LearnedName
)

// ModelConfig selects the scorer.
type ModelConfig = scorers.Selection

// ExplainConfig selects the reason ranking strategy: auto, heuristic or
// contribution.
type ExplainConfig struct {
	Strategy string `koanf:"strategy"`
}

// CacheConfig sizes the per-grid recommendation cache behind /api/reco.
type CacheConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Capacity int           `koanf:"capacity"`
	TTL      time.Duration `koanf:"ttl"`
}

// Engine returns the engine configuration.
func (c *Config) Engine() *recommend.Config {
	return &recommend.Config{
		Policy:  c.Policy,
		Explain: recommend.ExplainStrategy(c.Explain.Strategy),
	}
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration using a layered approach:
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
func Load() (*Config, error) {
	cfg, err := LoadWithKoanf()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
