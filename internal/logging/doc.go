// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

/*
Package logging provides structured logging on top of zerolog.

A process-wide logger is configured once by Init from the logging section of
the configuration. Request handlers use Ctx to obtain a logger carrying the
request ID (set by the HTTP middleware) and, for listings, a correlation ID
shared by the concurrent sub-queries:

	logging.Ctx(ctx).Debug().Str("table", "parcels").Msg("Query cache miss")

The slog adapter exposes the same pipeline to libraries that expect an
*slog.Logger, such as the supervisor's sutureslog hook.
*/
package logging
