// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

/*
Command server runs the Terroir hypermedia API.

Terroir publishes read-only agricultural and geographic reference data
(municipalities, cadastral parcels, weather stations, phytosanitary
products and vine varieties) as paginated listings and single resources
in HTML, JSON, CSV and GeoJSON.

# Process Layout

	RootSupervisor ("terroir")
	├── DataSupervisor ("data-layer")
	│   └── cache-sweeper
	└── APISupervisor ("api-layer")
	    └── http-server

Initialization order:

 1. Configuration: Koanf v2 defaults, optional config.yaml, environment
 2. Logging: zerolog, bridged to slog for suture
 3. Database: DuckDB (read-only, spatial extension) or PostgreSQL/PostGIS
 4. Query engine with the shared response cache
 5. Dataset catalog, handlers and chi router
 6. Supervisor tree

# Configuration

Common environment variables:

	DATABASE_DRIVER=duckdb          # or postgres
	DUCKDB_PATH=/data/terroir.duckdb
	DATABASE_URL=postgres://...     # driver=postgres
	CACHE_TTL=24h
	LISTING_PAGE_SIZE=150
	PUBLIC_BASE_URL=https://terroir.example.org
	LOG_LEVEL=info

# Signals

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests for HTTP_SHUTDOWN_TIMEOUT before the process exits.
*/
package main
