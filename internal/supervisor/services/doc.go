// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

// Package services adapts components to suture's Serve(ctx) error contract.
//
//   - HTTPServerService: ListenAndServe with graceful Shutdown on cancellation
//   - CacheSweeperService: periodic removal of expired response cache entries
package services
