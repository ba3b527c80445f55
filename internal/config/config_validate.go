// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/lumen/internal/validation"
)

// Valid values for enumerated settings
var (
	validLogLevels = map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	validLogFormats = map[string]bool{
		"json":    true,
		"console": true,
	}
	validEnvironments = map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
)

// Validate checks every section and returns all problems joined.
func (c *Config) Validate() error {
	errs := []error{
		c.validateServer(),
		c.validateLogging(),
		c.validateModel(),
		c.validateEngine(),
		c.validateCache(),
		c.validateJournal(),
	}

	// Sections that carry validate tags
	sections := []struct {
		name  string
		value interface{}
	}{
		{"grid", &c.Grid},
		{"journal", &c.Journal},
		{"report", &c.Report},
		{"synthetic", &c.Synthetic},
		{"supervisor", &c.Supervisor},
	}
	for _, s := range sections {
		if verr := validation.ValidateStruct(s.value); verr != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, verr))
		}
	}

	return errors.Join(errs...)
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT must be between 1 and 65535"))
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HTTP read and write timeouts must be positive"))
	}
	if !validEnvironments[c.Server.Environment] {
		errs = append(errs, fmt.Errorf("ENVIRONMENT must be one of: development, staging, production"))
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs < 1 {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1"))
		}
		if c.Server.RateLimitWindow <= 0 {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_WINDOW must be positive"))
		}
	}
	if c.IsProduction() && c.hasWildcardCORS() {
		errs = append(errs, fmt.Errorf("CORS_ORIGINS must not contain '*' in production"))
	}
	return errors.Join(errs...)
}

// hasWildcardCORS checks if CORS is configured to allow all origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Server.CORSOrigins {
		if strings.TrimSpace(origin) == "*" {
			return true
		}
	}
	return false
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateModel validates the scorer selection
func (c *Config) validateModel() error {
	switch c.Model.Scorer {
	case ScorerRule:
		return nil
	case ScorerLearned:
		var errs []error
		if c.Model.Dir == "" {
			errs = append(errs, fmt.Errorf("MODEL_DIR is required for the learned scorer"))
		}
		if c.Model.Name == "" {
			errs = append(errs, fmt.Errorf("MODEL_NAME is required for the learned scorer"))
		}
		if c.Model.Version < 0 {
			errs = append(errs, fmt.Errorf("MODEL_VERSION must be 0 (latest) or positive"))
		}
		return errors.Join(errs...)
	default:
		return fmt.Errorf("MODEL_SCORER must be one of: %s, %s", ScorerRule, ScorerLearned)
	}
}

// validateEngine validates the floor and the explanation strategy
func (c *Config) validateEngine() error {
	return c.Engine().Validate()
}

// validateCache validates recommendation cache sizing
func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if c.Cache.Capacity < 1 {
		return fmt.Errorf("CACHE_CAPACITY must be at least 1")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	return nil
}

// validateJournal validates the run journal location
func (c *Config) validateJournal() error {
	if !c.Journal.InMemory && c.Journal.Path == "" {
		return fmt.Errorf("JOURNAL_PATH is required unless JOURNAL_IN_MEMORY is set")
	}
	return nil
}
