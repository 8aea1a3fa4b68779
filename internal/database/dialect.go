// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package database

import (
	"fmt"
	"strings"
)

// Dialect identifies the SQL flavour spoken by the backend.
type Dialect string

const (
	DialectDuckDB   Dialect = "duckdb"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect maps a configured driver name to a Dialect.
// "postgresql" and "pgx" are accepted as PostgreSQL aliases.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "duckdb":
		return DialectDuckDB, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// SupportsExclude reports whether "t.* EXCLUDE (col)" projections are valid.
func (d Dialect) SupportsExclude() bool {
	return d == DialectDuckDB
}
