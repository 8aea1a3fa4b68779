// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

// Package listing turns a base query and a column mapping into a paginated,
// filterable page that every renderer consumes.
//
// A request goes through three steps:
//
//	req, err := listing.ParseRequest(path, r.URL.Query()) // BadRequest on a bad page
//	data := paginator.Paginate(ctx, datasets.Varieties, req)
//	if data.Failed() { ... }                               // degraded page, data.Err set
//
// Paginate applies the listing filter, then runs the page query, the count
// query and the optional credit query concurrently with errgroup. Navigation
// links, a window of up to thirteen page links and per-format self-links are
// derived from the count.
package listing
