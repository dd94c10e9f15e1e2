// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

// Package main is the entry point for the Moodie server.
//
// Moodie recommends titles from a Plex library based on the viewer's mood,
// available time and thumbs-up/down feedback.
//
// # Startup
//
//  1. Configuration (koanf: defaults, config.yaml, environment)
//  2. Logging
//  3. Store: DuckDB, Postgres or Badger (DB_DRIVER)
//  4. Page cache: in-memory or Redis (CACHE_BACKEND)
//  5. Plex client behind a circuit breaker
//  6. Recommendation engine
//  7. Supervisor tree: cache sweeper, Badger GC, media sync, HTTP server
//
// # Example
//
//	export PLEX_URL=http://plex:32400
//	export PLEX_TOKEN=your-plex-token
//	export PLEX_SYNC_ENABLED=true
//	./moodie
//
// SIGINT or SIGTERM stops the tree, then the store and cache are closed.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/moodie/internal/config"
	"github.com/tomtom215/moodie/internal/logging"
	"github.com/tomtom215/moodie/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_driver", cfg.Database.Driver).
		Str("cache_backend", cfg.Cache.Backend).
		Str("plex_url", cfg.Plex.URL).
		Bool("plex_sync", cfg.Plex.SyncEnabled).
		Msg("Starting Moodie")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := initApp(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer app.close()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + shutdownGrace,
	})
	app.addServices(tree, cfg)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Moodie stopped")
}
