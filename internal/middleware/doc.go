// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

/*
Package middleware provides the HTTP middleware shared by every route.

  - RequestID: X-Request-ID propagation bridged into the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge per route pattern
  - Compression: gzip for clients sending Accept-Encoding: gzip

All three use the http.HandlerFunc form; the api package adapts them to
chi's func(http.Handler) http.Handler.
*/
package middleware
