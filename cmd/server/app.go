// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tomtom215/moodie/internal/api"
	"github.com/tomtom215/moodie/internal/cache"
	"github.com/tomtom215/moodie/internal/config"
	"github.com/tomtom215/moodie/internal/database"
	"github.com/tomtom215/moodie/internal/kvstore"
	"github.com/tomtom215/moodie/internal/logging"
	"github.com/tomtom215/moodie/internal/recommend"
	"github.com/tomtom215/moodie/internal/supervisor"
	"github.com/tomtom215/moodie/internal/supervisor/services"
	"github.com/tomtom215/moodie/internal/sync"
)

// shutdownGrace is added to the HTTP shutdown timeout for the supervisor so
// the server's own deadline fires first.
const shutdownGrace = 5 * time.Second

// store is everything the engine, the media sync and the health probe need
// from persistence. Both *database.DB and *kvstore.Store satisfy it.
type store interface {
	recommend.FeedbackStore
	recommend.HistoryStore
	sync.MediaWriter
	Ping(ctx context.Context) error
	Driver() string
	Close() error
}

var (
	_ store = (*database.DB)(nil)
	_ store = (*kvstore.Store)(nil)
)

// app holds the wired components.
type app struct {
	store   store
	cache   cache.PageCache
	plex    *sync.CircuitBreakerClient
	engine  *recommend.Engine
	handler http.Handler
}

func initApp(ctx context.Context, cfg *config.Config) (*app, error) {
	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	logging.Info().Str("driver", st.Driver()).Msg("Store ready")

	pageCache, err := cache.New(ctx, cfg.Cache, logging.WithComponent("cache"))
	if err != nil {
		closeAndLog("store", st)
		return nil, fmt.Errorf("cache: %w", err)
	}

	plex := sync.NewCircuitBreakerClient(
		sync.NewPlexClient(cfg.Plex.URL, cfg.Plex.Token,
			sync.WithTimeout(cfg.Plex.Timeout),
			sync.WithMinInterval(cfg.Plex.MinInterval),
			sync.WithSections(cfg.Plex.Sections),
		),
		sync.DefaultBreakerSettings(),
	)

	engine, err := recommend.NewEngine(engineConfig(cfg.Recommend), recommend.Deps{
		Catalog:  plex,
		Feedback: st,
		History:  st,
		Cache:    pageCache,
	}, logging.WithComponent("recommend"))
	if err != nil {
		closeAndLog("store", st)
		closeCache(pageCache)
		return nil, fmt.Errorf("engine: %w", err)
	}

	a := &app{store: st, cache: pageCache, plex: plex, engine: engine}
	a.handler = a.router(cfg)
	return a, nil
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (store, error) {
	switch cfg.Driver {
	case config.DriverBadger:
		st, err := kvstore.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("badger store: %w", err)
		}
		return st, nil
	default:
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s store: %w", cfg.Driver, err)
		}
		return db, nil
	}
}

func engineConfig(rc config.RecommendConfig) *recommend.Config {
	c := recommend.DefaultConfig()
	c.DefaultPageSize = rc.DefaultPageSize
	c.MaxPageSize = rc.MaxPageSize
	c.ShuffleWindow = rc.ShuffleWindow
	c.ComfortCount = rc.ComfortCount
	c.FallbackCount = rc.FallbackCount
	c.BingeShowBonus = rc.BingeShowBonus
	c.Seed = rc.Seed
	c.RecordHistory = rc.RecordHistory
	return c
}

func (a *app) router(cfg *config.Config) http.Handler {
	deps := api.HandlerDeps{
		Engine: a.engine,
		Store:  a.store,
		Plex:   a.plex,
	}
	if pinger, ok := a.cache.(api.CachePinger); ok {
		deps.Cache = pinger
	}
	return api.NewRouter(
		api.NewHandler(deps),
		api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)),
	).Setup()
}

// addServices registers the background services and the HTTP server.
func (a *app) addServices(tree *supervisor.Tree, cfg *config.Config) {
	if mem, ok := a.cache.(*cache.Memory); ok {
		tree.AddDataService(services.NewCacheSweeper(mem, cfg.Cache.SweepInterval, logging.WithComponent("cache")))
	}
	if kv, ok := a.store.(*kvstore.Store); ok {
		tree.AddDataService(services.NewValueLogGC(kv, 10*time.Minute, logging.WithComponent("kvstore")))
	}
	if cfg.Plex.SyncEnabled {
		tree.AddDataService(sync.NewLibrarySync(a.plex, a.store, cfg.Plex.SyncInterval, logging.WithComponent("library-sync")))
	} else {
		logging.Info().Msg("Plex media sync disabled; liked/disliked attributes need PLEX_SYNC_ENABLED=true")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           a.handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPService(server, server.Addr, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))
}

func (a *app) close() {
	closeCache(a.cache)
	closeAndLog("store", a.store)
}

func closeCache(c cache.PageCache) {
	if closer, ok := c.(io.Closer); ok {
		closeAndLog("cache", closer)
	}
}

func closeAndLog(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logging.Error().Err(err).Str("component", name).Msg("Close failed")
	}
}
