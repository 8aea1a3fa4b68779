// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

/*
Package config provides centralized configuration management for Terroir.

# Configuration Sources

Configuration is layered with Koanf v2, later sources overriding earlier ones:
  - Built-in defaults (defaultConfig)
  - Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/terroir/config.yaml)
  - Environment variables, mapped explicitly to config paths

# Environment Variables

Database:
  - DATABASE_DRIVER: duckdb or postgres (default: duckdb)
  - DUCKDB_PATH: DuckDB file (default: /data/terroir.duckdb)
  - DATABASE_URL: PostgreSQL/PostGIS DSN
  - DUCKDB_MAX_MEMORY, DUCKDB_THREADS, SPATIAL_OPTIONAL
  - DATABASE_QUERY_TIMEOUT, DATABASE_BREAKER_MAX_FAILURES, DATABASE_BREAKER_TIMEOUT

Response cache:
  - CACHE_CAPACITY: maximum cached query results (default: 1000)
  - CACHE_TTL: lifetime of a cached result (default: 24h)
  - CACHE_SWEEP_INTERVAL: background purge interval (default: 10m)

Listings:
  - LISTING_PAGE_SIZE: rows per page (default: 150)

HTTP server:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8080)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - PUBLIC_BASE_URL: origin used in "@id" and pagination links
  - ENVIRONMENT: development, staging, production

Security:
  - CORS_ORIGINS: comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Validation

Validate combines go-playground/validator struct tags with cross-field
checks (driver-specific connection settings, URL shape, rate limit bounds).
*/
package config
