// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lumen/internal/api"
	"github.com/tomtom215/lumen/internal/cache"
	"github.com/tomtom215/lumen/internal/config"
	"github.com/tomtom215/lumen/internal/grid"
	"github.com/tomtom215/lumen/internal/metrics"
	"github.com/tomtom215/lumen/internal/recommend"
	"github.com/tomtom215/lumen/internal/supervisor"
	"github.com/tomtom215/lumen/internal/supervisor/services"
)

const (
	uptimeInterval     = 15 * time.Second
	minSweeperInterval = time.Second
)

type maintenanceJob struct {
	name string
	task services.Task
	cfg  services.PeriodicConfig
}

// addMaintenance registers the periodic jobs of the server on the tree.
// recoCache and store may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func addMaintenance(tree *supervisor.SupervisorTree, cfg *config.Config, recoCache *cache.LRU[recommend.Recommendation],
	store *grid.Store, handler *api.Handler, logger zerolog.Logger) error {
	started := time.Now()
	jobs := []maintenanceJob{
		{
			name: "uptime",
			task: func(context.Context) error {
				metrics.AppUptime.Set(time.Since(started).Seconds())
				return nil
			},
			cfg: services.PeriodicConfig{Interval: uptimeInterval, RunOnStart: true},
		},
	}

	if recoCache != nil {
		jobs = append(jobs, maintenanceJob{
			name: "cache-sweeper",
			task: func(context.Context) error {
				if n := recoCache.CleanupExpired(); n > 0 {
					logger.Debug().Int("removed", n).Msg("Expired recommendations removed")
				}
				return nil
			},
			cfg: services.PeriodicConfig{Interval: max(cfg.Cache.TTL, minSweeperInterval)},
		})
	}

	if store != nil && cfg.Grid.FeaturesPath != "" && cfg.Grid.ReloadInterval > 0 {
		reloader := grid.NewReloader(store, cfg.Grid.FeaturesPath)
		jobs = append(jobs, maintenanceJob{
			name: "grid-reloader",
			task: func(ctx context.Context) error {
				changed, err := reloader.Reload(ctx)
				if err != nil {
					return err
				}
				if changed {
					handler.ClearCache()
				}
				return nil
			},
			cfg: services.PeriodicConfig{Interval: cfg.Grid.ReloadInterval},
		})
	}

	for _, job := range jobs {
		svc, err := services.NewPeriodicService(job.name, job.task, job.cfg, logger)
		if err != nil {
			return fmt.Errorf("create %s job: %w", job.name, err)
		}
		tree.AddMaintenanceService(svc)
	}
	return nil
}
