// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	_ "github.com/tomtom215/lumen/docs" // Import generated swagger docs
	"github.com/tomtom215/lumen/internal/api"
	"github.com/tomtom215/lumen/internal/cache"
	"github.com/tomtom215/lumen/internal/config"
	"github.com/tomtom215/lumen/internal/grid"
	"github.com/tomtom215/lumen/internal/logging"
	"github.com/tomtom215/lumen/internal/metrics"
	"github.com/tomtom215/lumen/internal/recommend"
	"github.com/tomtom215/lumen/internal/recommend/scorers"
	"github.com/tomtom215/lumen/internal/supervisor"
	"github.com/tomtom215/lumen/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Service:   "lumen-server",
		Version:   version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		stop()
		os.Exit(1)
	}
	logging.Info().Msg("Server stopped")
}

//nolint:gocyclo // sequential wiring of the server components
func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.Logger()
	logger.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("scorer", cfg.Model.Scorer).
		Msg("Starting Lumen")
	metrics.SetAppInfo(version, runtime.Version())

	scorer, err := scorers.Build(ctx, cfg.Model, logger)
	if err != nil {
		return fmt.Errorf("build scorer: %w", err)
	}
	metrics.SetModelInfo(scorers.Describe(scorer))

	engine, err := recommend.NewEngine(cfg.Engine(), scorer, logger)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	var (
		opts  = []api.HandlerOption{api.WithVersion(version)}
		store *grid.Store
	)
	if cfg.Grid.Path != "" || cfg.Grid.FeaturesPath != "" {
		store, err = grid.Open(ctx, cfg.Grid, logger)
		if err != nil {
			return fmt.Errorf("open grid store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error().Err(err).Msg("Error closing grid store")
			}
		}()
		opts = append(opts, api.WithGridStore(store))
	} else {
		logger.Info().Msg("No grid store configured, /api/grids and /api/reco disabled")
	}

	var recoCache *cache.LRU[recommend.Recommendation]
	if cfg.Cache.Enabled {
		recoCache = cache.NewLRU[recommend.Recommendation]("reco", cfg.Cache.Capacity, cfg.Cache.TTL)
		opts = append(opts, api.WithCache(recoCache))
	}

	handler, err := api.NewHandler(engine, logger, opts...)
	if err != nil {
		return fmt.Errorf("build handler: %w", err)
	}

	if cfg.Server.RateLimitDisabled {
		logger.Warn().Msg("Rate limiting on /predict is DISABLED")
	}
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromServer(&cfg.Server)))
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), cfg.Supervisor)
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))
	if err := addMaintenance(tree, cfg, recoCache, store, handler, logger); err != nil {
		return err
	}

	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logger.Warn().Str("service", svc.Name).Msg("Service did not stop within the shutdown timeout")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}
	return nil
}
