// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

/*
Package config provides configuration management for Lumen.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. The server and lumenctl share one
Config; each command reads the sections it needs.

# Configuration File

The file is searched in this order:
  - CONFIG_PATH environment variable (if set and the file exists)
  - ./config.yaml, ./config.yml
  - /etc/lumen/config.yaml, /etc/lumen/config.yml

Example config.yaml:

	server:
	  port: 8000
	  cors_origins: ["http://localhost:5173"]
	model:
	  scorer: learned
	  dir: /var/lib/lumen/models
	  name: dimming
	policy:
	  floor: 2
	explain:
	  strategy: auto
	grid:
	  features_path: /var/lib/lumen/grid_features.csv
	journal:
	  path: /var/lib/lumen/runs

# Environment Variables

Only mapped variables are read. The most common ones:

	HTTP_PORT            server.port (default: 8000)
	LOG_LEVEL            logging.level (default: info)
	LOG_FORMAT           logging.format (default: json)
	MODEL_SCORER         model.scorer: rule or learned (default: rule)
	MODEL_DIR            model.dir
	POLICY_FLOOR_LX      policy.floor (default: 2)
	EXPLAIN_STRATEGY     explain.strategy (default: auto)
	GRID_FEATURES_PATH   grid.features_path
	GRID_RELOAD_INTERVAL grid.reload_interval (0 disables reloading)
	CACHE_TTL            cache.ttl (default: 5m)
	JOURNAL_PATH         journal.path (default: ./data/runs)
	CORS_ORIGINS         comma-separated list
	SUPERVISOR_FAILURE_BACKOFF supervisor.failure_backoff (default: 15s)

# Validation

Load validates every section and reports all problems at once, joined with
errors.Join. Sections with validate tags (grid, journal, report, synthetic,
supervisor)
go through internal/validation.
*/
package config
