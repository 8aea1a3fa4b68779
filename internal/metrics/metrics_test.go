// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package metrics

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordDBQuery tests database query metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		duration  time.Duration
		err       error
	}{
		{
			name:      "successful rows query",
			operation: "rows",
			table:     "parcels",
			duration:  10 * time.Millisecond,
		},
		{
			name:      "successful count query",
			operation: "count",
			table:     "weather_stations",
			duration:  5 * time.Millisecond,
		},
		{
			name:      "failed query with short error",
			operation: "rows",
			table:     "vine_varieties",
			duration:  100 * time.Millisecond,
			err:       errors.New("connection refused"),
		},
		{
			name:      "failed query with long error - should truncate to 50 chars",
			operation: "count",
			table:     "phytosanitary_products",
			duration:  50 * time.Millisecond,
			err:       errors.New("this is a very long error message that exceeds fifty characters and should be truncated properly"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordDBQuery(tt.operation, tt.table, tt.duration, tt.err)
		})
	}
}

func TestRecordDBQuery_ErrorTruncation(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("rows", "truncation", strings.Repeat("c", 50)))

	RecordDBQuery("rows", "truncation", time.Millisecond, errors.New(strings.Repeat("c", 100)))

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("rows", "truncation", strings.Repeat("c", 50)))
	if after-before != 1 {
		t.Errorf("Expected truncated error label to be incremented once, got delta %v", after-before)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits)
	misses := testutil.ToFloat64(CacheMisses)

	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)

	if got := testutil.ToFloat64(CacheHits) - hits; got != 1 {
		t.Errorf("Expected 1 hit, got %v", got)
	}
	if got := testutil.ToFloat64(CacheMisses) - misses; got != 2 {
		t.Errorf("Expected 2 misses, got %v", got)
	}
}

func TestRecordCacheEviction(t *testing.T) {
	before := testutil.ToFloat64(CacheEvictions.WithLabelValues("capacity"))

	RecordCacheEviction("capacity", 42)

	if got := testutil.ToFloat64(CacheEvictions.WithLabelValues("capacity")) - before; got != 1 {
		t.Errorf("Expected 1 capacity eviction, got %v", got)
	}
	if got := testutil.ToFloat64(CacheSize); got != 42 {
		t.Errorf("Expected cache size gauge 42, got %v", got)
	}
}

func TestRecordListing(t *testing.T) {
	before := testutil.ToFloat64(ListingFailures.WithLabelValues("parcels", "BadRequest"))

	RecordListing("parcels", 3*time.Millisecond, "")
	RecordListing("parcels", 3*time.Millisecond, "BadRequest")

	if got := testutil.ToFloat64(ListingFailures.WithLabelValues("parcels", "BadRequest")) - before; got != 1 {
		t.Errorf("Expected 1 degraded listing, got %v", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/vine/varieties", "200"))

	RecordAPIRequest("GET", "/vine/varieties", "200", 25*time.Millisecond)

	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/vine/varieties", "200")) - before; got != 1 {
		t.Errorf("Expected request counter delta 1, got %v", got)
	}
}

func TestTrackActiveRequest_Concurrent(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			TrackActiveRequest(true)
			RecordFormat("csv")
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(APIActiveRequests); got != start {
		t.Errorf("Expected active requests to return to %v, got %v", start, got)
	}
}
