// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package services

import (
	"context"
	"time"

	"github.com/tomtom215/terroir/internal/cache"
	"github.com/tomtom215/terroir/internal/logging"
)

const defaultSweepInterval = 10 * time.Minute

// CacheSweeperService periodically drops expired response cache entries.
// Expired entries are never served; sweeping only reclaims their memory.
type CacheSweeperService struct {
	sweeper  cache.Sweeper
	interval time.Duration
}

// NewCacheSweeperService sweeps s every interval. A non-positive interval
// means 10 minutes.
func NewCacheSweeperService(s cache.Sweeper, interval time.Duration) *CacheSweeperService {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &CacheSweeperService{sweeper: s, interval: interval}
}

// Serve implements suture.Service.
func (c *CacheSweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := c.sweeper.Sweep(); n > 0 {
				logging.Debug().Int("removed", n).Msg("Swept expired cache entries")
			}
		}
	}
}

func (c *CacheSweeperService) String() string {
	return "cache-sweeper"
}
