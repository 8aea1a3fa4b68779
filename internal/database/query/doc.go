// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

// Package query builds and executes parameterized SELECT statements over the
// reference datasets.
//
// # Overview
//
// A Table describes a dataset: its name, primary key, one-to-one joins and
// geometry columns. An Engine starts a Select on a table; the Select is
// chained and executed once:
//
//	rows, err := engine.From(datasets.Parcels).
//	    Where("section", query.Eq, "AB").
//	    Where("geometry", query.Contains, point).
//	    OrderBy("id", query.Asc).
//	    Limit(150).
//	    Offset(150).
//	    Run(ctx)
//
// Statements are rendered with squirrel using $1..$N placeholders in
// statement order. Bare column names are qualified with the base table name.
// No conditions means no WHERE clause; zero limit or offset is omitted.
//
// # Geometry
//
// Geometry columns are projected as GeoJSON text through ST_AsGeoJSON and
// decoded into geom.T values. The WITHIN and CONTAINS operators take a geom.T
// and bind it as GeoJSON through ST_GeomFromGeoJSON.
//
// # Caching
//
// Run and Count fingerprint the rendered SQL and its arguments and consult the
// engine's cache.Store before querying. Cached rows are shared between
// requests and must be treated as read-only.
//
// # Errors
//
// Database failures are logged with the statement and returned as a generic
// failure.Query error. Engine.Read returns failure.NotFound when no row has
// the requested primary key.
package query
