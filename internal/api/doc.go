// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

/*
Package api serves the datasets over HTTP using the chi router.

Every resource path answers in several representations selected by a
filename suffix:

	/vine/varieties          HTML
	/vine/varieties.json     hypermedia JSON document
	/vine/varieties.csv      CSV table (text/csv; charset=utf-8)
	/cadastre/parcels.geojson  GeoJSON FeatureCollection

Single resources take the suffix on their key, for example
/vine/varieties/CHA.json. Geometry-bearing resources also answer .geojson
with the raw geometry.

Handlers never pick HTTP statuses themselves: listings and reads return
errors from the failure package and the renderers map their kind to a
status. A malformed page parameter is rejected with a plain-text 400 before
any query runs.

Middleware stack (outermost first): request ID bridged into the logging
context, RealIP, Recoverer, CORS, then per group rate limiting, security
headers, Prometheus instrumentation and gzip.
*/
package api
