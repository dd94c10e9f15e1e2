// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

// Package kvstore implements the feedback, media and history store on
// BadgerDB for single-binary deployments without a SQL engine.
//
// Key layout:
//
//	media/<title>                                  -> mediaRecord (JSON)
//	fb/<session>\x00<title>                        -> feedbackRecord (JSON)
//	hist/<session>\x00<nanos BE><^seq BE>          -> historyRecord (JSON, TTL)
//
// History keys sort by time within a session, so the newest entries are read
// with a reverse iterator.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/moodie/internal/config"
	"github.com/tomtom215/moodie/internal/logging"
	"github.com/tomtom215/moodie/internal/metrics"
)

const (
	prefixMedia    = "media/"
	prefixFeedback = "fb/"
	prefixHistory  = "hist/"

	driverName = config.DriverBadger
	gcRatio    = 0.5
)

// ErrEmptyKey is returned when a session or title needed to build a key is empty.
var ErrEmptyKey = errors.New("kvstore: empty key component")

// Store is a BadgerDB-backed store. It is safe for concurrent use.
type Store struct {
	db         *badger.DB
	historyTTL time.Duration
	inMemory   bool
	seq        atomic.Uint64
}

// Open opens (or creates) the Badger directory at cfg.Path. An empty path or
// ":memory:" opens an in-memory instance.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	inMemory := cfg.Path == "" || cfg.Path == ":memory:"

	opts := badger.DefaultOptions(cfg.Path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", inMemory).
		Dur("history_ttl", cfg.HistoryTTL).
		Msg("KV store opened")

	return &Store{db: db, historyTTL: cfg.HistoryTTL, inMemory: inMemory}, nil
}

// Driver returns the store's driver name.
func (s *Store) Driver() string {
	return driverName
}

// Ping reports whether the store is open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return badger.ErrDBClosed
	}
	return nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

// RunValueLogGC reclaims value log space until Badger reports nothing left
// to rewrite. It is a no-op for in-memory stores.
func (s *Store) RunValueLogGC(ctx context.Context) (err error) {
	if s.inMemory {
		return nil
	}
	start := time.Now()
	defer func() { observe("value_log_gc", start, err) }()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.RunValueLogGC(gcRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

func observe(operation string, start time.Time, err error) {
	metrics.RecordStoreOperation(driverName, operation, time.Since(start), err)
}

func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
