// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

/*
Package metrics provides Prometheus metrics collection and export for observability.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput, per rendered format
  - Dataset query performance and spatial predicate usage
  - Response cache hits, misses, evictions and size
  - Listing pipeline latency and degraded renders
  - Circuit breaker state transitions

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

All collectors are registered with the default registry through promauto at
package init, so importing the package is enough to expose them.
*/
package metrics
