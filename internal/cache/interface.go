// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package cache

import "time"

// Store is the contract the query engine relies on.
// Cache implements it; tests substitute their own recording stores.
type Store interface {
	// Retrieve returns the payload and true if present and not expired.
	Retrieve(key string) (any, bool)

	// Save stores a payload. A non-positive ttl uses the store default.
	Save(key string, content any, ttl time.Duration)
}

// Sweeper is implemented by stores that can drop expired entries in bulk.
type Sweeper interface {
	Sweep() int
}

// Verify interface implementations at compile time
var (
	_ Store   = (*Cache)(nil)
	_ Sweeper = (*Cache)(nil)
)
