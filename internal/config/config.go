// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package config

import (
	"time"
)

// Config holds all application configuration.
//
// Values are layered by LoadWithKoanf: built-in defaults, then an optional
// YAML file, then environment variables.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Listing  ListingConfig  `koanf:"listing"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig selects and tunes the relational backend.
//
// Environment Variables:
//   - DATABASE_DRIVER: duckdb or postgres (default: duckdb)
//   - DUCKDB_PATH: DuckDB database file, ":memory:" for an in-memory store
//   - DATABASE_URL: PostgreSQL/PostGIS connection string (driver=postgres)
//   - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
//   - DUCKDB_THREADS: DuckDB worker threads, 0 = runtime.NumCPU()
//   - SPATIAL_OPTIONAL: start even if the spatial extension cannot be loaded
//   - DATABASE_QUERY_TIMEOUT: per-query deadline (default: 30s)
type DatabaseConfig struct {
	Driver    string `koanf:"driver" validate:"oneof=duckdb postgres"`
	Path      string `koanf:"path"`
	DSN       string `koanf:"dsn"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"min=0,max=256"`

	// SpatialOptional lets the service start without ST_* functions.
	// Geometry endpoints then fail with a query error.
	SpatialOptional bool `koanf:"spatial_optional"`

	MaxOpenConns    int           `koanf:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	QueryTimeout    time.Duration `koanf:"query_timeout"`

	// Breaker trips after BreakerMaxFailures consecutive query failures and
	// rejects queries for BreakerTimeout before probing again.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures" validate:"min=1"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// CacheConfig sizes the shared query response cache.
//
// Environment Variables:
//   - CACHE_CAPACITY: maximum number of cached results (default: 1000)
//   - CACHE_TTL: lifetime of a cached result (default: 24h)
//   - CACHE_SWEEP_INTERVAL: how often expired results are purged (default: 10m)
type CacheConfig struct {
	Capacity      int           `koanf:"capacity" validate:"min=1,max=1000000"`
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// ListingConfig controls paginated listings.
type ListingConfig struct {
	PageSize int `koanf:"page_size" validate:"min=1,max=10000"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// BaseURL is the public origin used for "@id" and pagination links.
	// Empty means links are derived from the incoming request.
	BaseURL     string `koanf:"base_url"`
	Environment string `koanf:"environment"` // "development", "staging", "production"
}

// SecurityConfig holds transport-level protections. The API is read-only and
// unauthenticated; only CORS and rate limiting apply.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from all sources with the following precedence:
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
