// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/terroir/internal/config"
	"github.com/tomtom215/terroir/internal/logging"
)

// DB wraps the pooled connection to the reference database.
//
// All reads go through QueryContext, which is gated by a circuit breaker so a
// failing backend is rejected fast instead of piling up blocked requests.
type DB struct {
	conn             *sql.DB
	cfg              *config.DatabaseConfig
	dialect          Dialect
	spatialAvailable bool
	breaker          *gobreaker.CircuitBreaker[*sql.Rows]
}

// Open connects to the backend selected by cfg.Driver and loads the spatial
// functions.
//
// For DuckDB the database file is opened read-only; ":memory:" or an empty
// path opens a private in-memory store. For PostgreSQL the DSN is handed to
// the pgx stdlib driver and PostGIS is verified.
func Open(cfg *config.DatabaseConfig) (*DB, error) {
	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	var conn *sql.DB
	switch dialect {
	case DialectPostgres:
		conn, err = sql.Open("pgx", cfg.DSN)
	default:
		if dir := filepath.Dir(cfg.Path); !isMemoryPath(cfg.Path) && dir != "" && dir != "." {
			if _, statErr := os.Stat(dir); statErr != nil {
				return nil, fmt.Errorf("database directory %s: %w", dir, statErr)
			}
		}
		conn, err = sql.Open("duckdb", duckdbConnString(cfg))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:    conn,
		cfg:     cfg,
		dialect: dialect,
		breaker: newBreaker("database", cfg.BreakerMaxFailures, cfg.BreakerTimeout),
	}

	db.configureConnectionPool()

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	if err := db.loadSpatial(); err != nil {
		if !cfg.SpatialOptional {
			closeQuietly(conn)
			return nil, err
		}
		logging.Warn().Err(err).Msg("Spatial functions unavailable, geometry endpoints will fail")
	}

	logging.Info().
		Str("driver", string(dialect)).
		Bool("spatial", db.spatialAvailable).
		Msg("Database connection established")

	return db, nil
}

// NewFromConn wraps an already opened connection. Spatial support is assumed
// absent until LoadSpatial succeeds.
func NewFromConn(conn *sql.DB, dialect Dialect) *DB {
	return &DB{
		conn:    conn,
		cfg:     &config.DatabaseConfig{Driver: string(dialect)},
		dialect: dialect,
		breaker: newBreaker("database", 0, 0),
	}
}

// Dialect returns the SQL dialect of the backend.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// IsSpatialAvailable returns whether the ST_* functions are loaded.
func (db *DB) IsSpatialAvailable() bool {
	return db.spatialAvailable
}

// Conn returns the underlying SQL database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// BreakerState reports the circuit breaker state as a string.
func (db *DB) BreakerState() string {
	return stateToString(db.breaker.State())
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}
