// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/tomtom215/terroir/internal/metrics"
)

const (
	// DefaultCapacity is the maximum number of entries kept when no capacity is configured.
	DefaultCapacity = 1000

	// DefaultTTL is the lifetime of an entry when no TTL is configured.
	DefaultTTL = 24 * time.Hour
)

// Entry represents a cached item with its lifetime
type Entry struct {
	Data      any
	CreatedAt time.Time
	TTL       time.Duration
}

// expired reports whether the entry is stale at the given instant.
// An entry aged exactly its TTL is still valid.
func (e Entry) expired(now time.Time) bool {
	return now.Sub(e.CreatedAt) > e.TTL
}

// Cache is a bounded, insertion-ordered result cache with per-entry TTL.
//
// When the cache is full and a new key is saved, the entry inserted first is
// evicted. Reads never change an entry's position, so eviction is FIFO rather
// than LRU. Re-saving an existing key replaces its payload in place.
type Cache struct {
	mu       sync.Mutex
	entries  *orderedmap.OrderedMap[string, Entry]
	capacity int
	ttl      time.Duration
	now      func() time.Time
	stats    Stats
}

// Stats tracks cache performance metrics
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
	TotalKeys   int64
	LastSweep   time.Time
}

// New creates a cache bounded to capacity entries whose default lifetime is ttl.
// Non-positive arguments fall back to DefaultCapacity and DefaultTTL.
//
// Example:
//
//	c := cache.New(1000, 24*time.Hour)
//	c.Save(key, rows, 0)
//	if rows, ok := c.Retrieve(key); ok {
//	    // Use cached rows
//	}
func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries:  orderedmap.New[string, Entry](orderedmap.WithCapacity[string, Entry](capacity)),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Retrieve returns the payload stored under key.
//
// It reports false when the key is unknown or when the entry outlived its
// TTL; a stale entry is removed before returning.
func (c *Cache) Retrieve(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries.Get(key)
	if !ok {
		c.stats.Misses++
		metrics.RecordCacheLookup(false)
		return nil, false
	}

	if entry.expired(c.now()) {
		c.entries.Delete(key)
		c.stats.Misses++
		c.stats.Expirations++
		c.stats.TotalKeys = int64(c.entries.Len())
		metrics.RecordCacheLookup(false)
		metrics.RecordCacheEviction("expired", c.entries.Len())
		return nil, false
	}

	c.stats.Hits++
	metrics.RecordCacheLookup(true)
	return entry.Data, true
}

// Save stores content under key for ttl. A non-positive ttl uses the cache default.
//
// If the cache is at capacity and key is new, the oldest inserted entry is
// evicted first, so the entry count never exceeds the capacity.
func (c *Cache) Save(key string, content any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries.Get(key); !exists && c.entries.Len() >= c.capacity {
		if oldest := c.entries.Oldest(); oldest != nil {
			c.entries.Delete(oldest.Key)
			c.stats.Evictions++
			metrics.RecordCacheEviction("capacity", c.entries.Len())
		}
	}

	c.entries.Set(key, Entry{
		Data:      content,
		CreatedAt: c.now(),
		TTL:       ttl,
	})
	c.stats.TotalKeys = int64(c.entries.Len())
	metrics.CacheSize.Set(float64(c.entries.Len()))
}

// Delete removes a specific cache entry by key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, present := c.entries.Delete(key); present {
		c.stats.Evictions++
	}
	c.stats.TotalKeys = int64(c.entries.Len())
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Evictions += int64(c.entries.Len())
	c.entries = orderedmap.New[string, Entry](orderedmap.WithCapacity[string, Entry](c.capacity))
	c.stats.TotalKeys = 0
	metrics.CacheSize.Set(0)
}

// Sweep drops every expired entry and returns how many were removed.
//
// Retrieve already expires entries lazily; Sweep only bounds the memory held
// by entries that are never read again.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var stale []string
	for pair := c.entries.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.expired(now) {
			stale = append(stale, pair.Key)
		}
	}
	for _, key := range stale {
		c.entries.Delete(key)
		metrics.RecordCacheEviction("expired", c.entries.Len())
	}

	c.stats.Expirations += int64(len(stale))
	c.stats.TotalKeys = int64(c.entries.Len())
	c.stats.LastSweep = now
	return len(stale)
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Capacity returns the configured entry bound.
func (c *Cache) Capacity() int {
	return c.capacity
}

// TTL returns the default entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Keys returns the cached keys in insertion order.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, c.entries.Len())
	for pair := c.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// GetStats returns a snapshot of current cache performance statistics.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// HitRate returns the cache hit rate as a percentage
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Fingerprint derives a cache key from a SQL statement and its bound parameters.
//
// Parameters are stringified through JSON so that two statements with the same
// text but different arguments never share a key.
func Fingerprint(statement string, args []any) string {
	data, err := json.Marshal(args)
	if err != nil {
		// Fallback to the default formatting of the arguments
		data = []byte(fmt.Sprintf("%v", args))
	}

	h := sha256.New()
	h.Write([]byte(statement))
	h.Write([]byte{0})
	h.Write(data)
	return fmt.Sprintf("%x", h.Sum(nil))
}
