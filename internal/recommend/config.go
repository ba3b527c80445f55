// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package recommend

import (
	"errors"
	"fmt"
)

// Config contains the policy and explanation settings of the engine.
type Config struct {
	// Policy holds the floor applied to every raw prediction.
	Policy Policy `json:"policy"`

	// Explain selects the reason ranking strategy.
	Explain ExplainStrategy `json:"explain"`
}

// DefaultConfig returns the production defaults: a 2 lx floor and
// capability-based explanations.
func DefaultConfig() *Config {
	return &Config{
		Policy:  DefaultPolicy(),
		Explain: ExplainAuto,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Policy.Validate(); err != nil {
		errs = append(errs, err)
	}
	if !c.Explain.Valid() {
		errs = append(errs, fmt.Errorf("explain must be one of auto, heuristic, contribution, got %q", c.Explain))
	}
	return errors.Join(errs...)
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
