// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

/*
Package cache provides the bounded response cache shared by every dataset query.

Query results (row sets and counts) are stored under a fingerprint of the
rendered SQL statement and its parameters. The cache is process-wide and
protected by a mutex, so concurrent listing sub-queries can share it.

# Semantics

  - Capacity bound: the number of entries never exceeds the configured
    capacity (default 1000).
  - FIFO eviction: saving a new key into a full cache removes the entry at
    insertion-order position zero. Reads do not promote entries.
  - Per-entry TTL: every entry carries its own lifetime (default 24h). An
    entry older than its TTL is absent; Retrieve deletes it.
  - In-place overwrite: saving an existing key keeps its position.

The insertion order is held by github.com/wk8/go-ordered-map/v2, which gives
O(1) access to the oldest entry.

# Usage Example

	c := cache.New(1000, 24*time.Hour)
	key := cache.Fingerprint(statement, args)
	if rows, ok := c.Retrieve(key); ok {
	    return rows.([]query.Row), nil
	}
	c.Save(key, rows, 0)

# Background Sweeping

Sweep removes every expired entry at once. The supervisor runs it on a
ticker so that entries which are never read again do not hold memory until
they are evicted by capacity.
*/
package cache
