// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/lumen/internal/batch"
	"github.com/tomtom215/lumen/internal/grid"
	"github.com/tomtom215/lumen/internal/recommend"
	"github.com/tomtom215/lumen/internal/report"
	"github.com/tomtom215/lumen/internal/runlog"
	"github.com/tomtom215/lumen/internal/supervisor"
	"github.com/tomtom215/lumen/internal/synthetic"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/lumen/config.yaml",
	"/etc/lumen/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
			// Map frontend dev servers
			CORSOrigins: []string{
				"http://localhost:5173",
				"http://localhost:3000",
				"http://127.0.0.1:5173",
				"http://127.0.0.1:3000",
			},
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Model: ModelConfig{
			Scorer:  ScorerRule,
			Dir:     "./data/models",
			Name:    "dimming",
			Version: 0, // latest
		},
		Policy: recommend.DefaultPolicy(),
		Explain: ExplainConfig{
			Strategy: string(recommend.ExplainAuto),
		},
		Grid: grid.DefaultConfig(),
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 10000,
			TTL:      5 * time.Minute,
		},
		Journal:   runlog.DefaultConfig(),
		Batch:     batch.DefaultConfig(),
		Report:    report.DefaultOptions(),
		Synthetic: synthetic.DefaultConfig(),

		Supervisor: supervisor.DefaultTreeConfig(),
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources.
//
// Loading order (later sources override earlier):
//  1. Built-in defaults
//  2. Config file (if exists)
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file if it exists
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables through the mapping table
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Comma-separated env values become slices
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, else the first existing
// default path, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists config paths that should be treated as slices.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"synthetic.slot_alpha",
}

// processSliceFields splits comma-separated strings from environment
// variables into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to config paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"model_scorer":  "model.scorer",
	"model_dir":     "model.dir",
	"model_name":    "model.name",
	"model_version": "model.version",

	"policy_floor_lx":  "policy.floor",
	"explain_strategy": "explain.strategy",

	"grid_db_path":             "grid.path",
	"grid_features_path":       "grid.features_path",
	"grid_threads":             "grid.threads",
	"grid_max_memory":          "grid.max_memory",
	"grid_traffic_scale":       "grid.traffic_scale",
	"grid_default_commercial":  "grid.default_commercial",
	"grid_default_residential": "grid.default_residential",
	"grid_default_existing_lx": "grid.default_existing_lx",
	"grid_reload_interval":     "grid.reload_interval",

	"cache_enabled":  "cache.enabled",
	"cache_capacity": "cache.capacity",
	"cache_ttl":      "cache.ttl",

	"journal_path":        "journal.path",
	"journal_in_memory":   "journal.in_memory",
	"journal_sync_writes": "journal.sync_writes",
	"journal_max_runs":    "journal.max_runs",

	"batch_bom":               "batch.bom",
	"batch_skip_log_interval": "batch.skip_log_interval",

	"report_lamp_watt": "report.lamp_watt",
	"report_hours":     "report.hours",
	"report_top_n":     "report.top_n",

	"synth_seed":       "synthetic.seed",
	"synth_rows":       "synthetic.rows",
	"synth_slot_alpha": "synthetic.slot_alpha",

	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc maps environment variable names to config paths.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
