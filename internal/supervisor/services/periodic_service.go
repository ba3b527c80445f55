// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// ErrNilTask is returned when a periodic service has nothing to run.
var ErrNilTask = errors.New("periodic service: task is required")

// Task is one maintenance pass. A returned error is logged and the next tick
// runs again; only context cancellation stops the service.
type Task func(ctx context.Context) error

// PeriodicConfig holds configuration for a periodic service.
type PeriodicConfig struct {
	// Interval between runs. Defaults to one minute.
	Interval time.Duration

	// RunOnStart runs the task once before the first tick.
	RunOnStart bool

	// Timeout bounds a single run. Zero means Interval.
	Timeout time.Duration
}

// PeriodicService runs a maintenance task on a fixed interval under suture
// supervision: sweeping expired cache entries, reclaiming journal space,
// reloading a changed grid file.
type PeriodicService struct {
	name   string
	task   Task
	config PeriodicConfig
	logger zerolog.Logger
}

// NewPeriodicService creates a periodic service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPeriodicService(name string, task Task, cfg PeriodicConfig, logger zerolog.Logger) (*PeriodicService, error) {
	if task == nil {
		return nil, ErrNilTask
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	return &PeriodicService{
		name:   name,
		task:   task,
		config: cfg,
		logger: logger.With().Str("service", name).Logger(),
	}, nil
}

// Serve implements suture.Service.
func (s *PeriodicService) Serve(ctx context.Context) error {
	s.logger.Debug().
		Dur("interval", s.config.Interval).
		Bool("run_on_start", s.config.RunOnStart).
		Msg("periodic service starting")

	if s.config.RunOnStart {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Msg("periodic service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *PeriodicService) run(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	if err := s.task(runCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("periodic task failed")
		return
	}
	s.logger.Trace().Dur("duration", time.Since(start)).Msg("periodic task complete")
}

// String returns the service name for logging.
func (s *PeriodicService) String() string {
	return s.name
}
