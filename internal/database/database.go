// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

// Package database is the relational store for feedback, synced media and
// recommendation history. It runs on embedded DuckDB or on Postgres through
// database/sql; both dialects share one set of statements.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	_ "github.com/lib/pq"              // registers the "postgres" driver

	"github.com/tomtom215/moodie/internal/config"
	"github.com/tomtom215/moodie/internal/logging"
	"github.com/tomtom215/moodie/internal/metrics"
)

const queryTimeout = 10 * time.Second

// DB wraps the SQL connection pool.
type DB struct {
	conn   *sql.DB
	driver string
}

// New opens the database selected by cfg.Driver, verifies the connection and
// creates the schema.
func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	driverName, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Driver, err)
	}

	db := &DB{conn: conn, driver: cfg.Driver}
	db.configureConnectionPool(cfg.MaxOpenConns)

	pingCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	if err := db.createSchema(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logging.Info().
		Str("driver", cfg.Driver).
		Msg("Database initialized")

	return db, nil
}

func dataSource(cfg config.DatabaseConfig) (driverName, dsn string, err error) {
	switch cfg.Driver {
	case config.DriverDuckDB:
		path := cfg.Path
		if path == "" || path == ":memory:" {
			return "duckdb", "", nil
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return "", "", fmt.Errorf("failed to create database directory: %w", err)
		}
		return "duckdb", path, nil
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return "", "", fmt.Errorf("postgres driver requires a dsn")
		}
		return "postgres", cfg.DSN, nil
	default:
		return "", "", fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}
}

func (db *DB) configureConnectionPool(maxOpen int) {
	if maxOpen <= 0 {
		maxOpen = runtime.NumCPU()
	}
	db.conn.SetMaxOpenConns(maxOpen)
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Driver returns the configured driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return db.conn.PingContext(ctx)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// observe records duration and outcome of one store operation.
func (db *DB) observe(operation string, start time.Time, err error) {
	metrics.RecordStoreOperation(db.driver, operation, time.Since(start), err)
}
