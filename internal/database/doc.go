// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

// Package database owns the connection to the reference data store.
//
// Two backends are supported, selected by DATABASE_DRIVER:
//
//   - duckdb: a DuckDB file opened read-only, with the spatial extension
//   - postgres: PostgreSQL with PostGIS, through the pgx stdlib driver
//
// # Files
//
//   - database.go: Open, NewFromConn, accessors, Ping and Close
//   - database_connection.go: DuckDB connection string and pool sizing
//   - database_extensions.go: spatial extension install/load with hard timeouts
//   - breaker.go: gobreaker circuit breaker around QueryContext
//   - dialect.go: SQL dialect differences (EXCLUDE projection, KNN ordering)
//   - errors.go: close helpers that log instead of failing
//
// Statement building and result caching live in the query subpackage.
//
// # Circuit Breaker
//
// Consecutive failed queries open the breaker. While it is open, QueryContext
// returns ErrUnavailable without touching the pool. Canceled and timed out
// contexts do not count as failures. The state is exported as the
// circuit_breaker_state gauge and reported by /api/v1/health/ready.
//
// # Usage
//
//	db, err := database.Open(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	engine := query.NewEngine(db, responseCache, db.Dialect(), query.Options{})
package database
