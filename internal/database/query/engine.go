// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package query

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/tomtom215/terroir/internal/cache"
	"github.com/tomtom215/terroir/internal/database"
	"github.com/tomtom215/terroir/internal/failure"
	"github.com/tomtom215/terroir/internal/logging"
	"github.com/tomtom215/terroir/internal/metrics"
)

// Querier runs read queries. *database.DB and *sql.DB both satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Options tunes an Engine.
type Options struct {
	// TTL is the lifetime of cached results; zero uses the store default.
	TTL time.Duration

	// Timeout bounds each statement; zero leaves the caller's deadline.
	Timeout time.Duration
}

// Engine executes Select statements against a Querier, consulting the
// response cache before touching the database.
type Engine struct {
	db      Querier
	store   cache.Store
	dialect database.Dialect
	opts    Options
}

// NewEngine creates an engine. A nil store disables caching.
func NewEngine(db Querier, store cache.Store, dialect database.Dialect, opts Options) *Engine {
	return &Engine{db: db, store: store, dialect: dialect, opts: opts}
}

// From starts a Select on table.
func (e *Engine) From(table Table) *Select {
	return newSelect(e, table, e.dialect)
}

// Read returns the row whose primary key equals key, or a NotFound failure.
// A key that does not fit the primary key type matches no row.
func (e *Engine) Read(ctx context.Context, table Table, key any) (Row, error) {
	parsed, ok := table.ParseKey(key)
	if !ok {
		return nil, failure.NotFound("%s %v not found", table.Name, key)
	}
	rows, err := e.From(table).Where(table.PrimaryKey, Eq, parsed).Limit(1).Run(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, failure.NotFound("%s %v not found", table.Name, key)
	}
	return rows[0], nil
}

// Run executes the statement and returns every row. The result is never nil.
func (s *Select) Run(ctx context.Context) ([]Row, error) {
	stmt, args, err := s.Build()
	if err != nil {
		return nil, failure.Query(err)
	}

	e := s.engine
	key := cache.Fingerprint(stmt, args)
	if cached, ok := e.lookup(key); ok {
		if rows, ok := cached.([]Row); ok {
			logging.Ctx(ctx).Debug().Str("table", s.table.Name).Msg("Query cache hit")
			return rows, nil
		}
	}

	rows, err := e.fetch(ctx, "select", s.table.Name, stmt, args, s.geometryColumns())
	if err != nil {
		return nil, err
	}
	e.save(key, rows)
	return rows, nil
}

// Count returns the number of rows matching the conditions.
func (s *Select) Count(ctx context.Context) (int, error) {
	stmt, args, err := s.BuildCount()
	if err != nil {
		return 0, failure.Query(err)
	}

	e := s.engine
	key := cache.Fingerprint(stmt, args)
	if cached, ok := e.lookup(key); ok {
		if n, ok := cached.(int); ok {
			return n, nil
		}
	}

	rows, err := e.fetch(ctx, "count", s.table.Name, stmt, args, nil)
	if err != nil {
		return 0, err
	}

	var n int
	if len(rows) > 0 {
		for _, v := range rows[0] {
			i, ok := toInt64(v)
			if !ok {
				return 0, failure.Query(fmt.Errorf("unexpected count type %T", v))
			}
			n = int(i)
		}
	}
	e.save(key, n)
	return n, nil
}

func (e *Engine) lookup(key string) (any, bool) {
	if e.store == nil {
		return nil, false
	}
	return e.store.Retrieve(key)
}

func (e *Engine) save(key string, content any) {
	if e.store != nil {
		e.store.Save(key, content, e.opts.TTL)
	}
}

// fetch executes stmt and scans every row into a Row, decoding the listed
// GeoJSON columns. Any failure is logged and surfaced as a generic query error.
func (e *Engine) fetch(ctx context.Context, operation, table, stmt string, args []any, geometries []string) ([]Row, error) {
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := e.scan(ctx, stmt, args, geometries)
	metrics.RecordDBQuery(operation, table, time.Since(start), err)

	if err != nil {
		logging.Ctx(ctx).Error().
			Err(err).
			Str("operation", operation).
			Str("table", table).
			Str("sql", stmt).
			Msg("Query failed")
		return nil, failure.Query(err)
	}
	return rows, nil
}

func (e *Engine) scan(ctx context.Context, stmt string, args []any, geometries []string) ([]Row, error) {
	rs, err := e.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer database.CloseWithLog(rs, "rows")

	columns, err := rs.Columns()
	if err != nil {
		return nil, err
	}

	result := make([]Row, 0)
	for rs.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				values[i] = string(b)
			}
			row[col] = values[i]
		}
		for _, g := range geometries {
			decoded, err := decodeGeometry(row[g])
			if err != nil {
				return nil, fmt.Errorf("decode geometry %s: %w", g, err)
			}
			row[g] = decoded
		}
		result = append(result, row)
	}
	return result, rs.Err()
}

// decodeGeometry parses GeoJSON text into a geometry. NULL stays nil.
func decodeGeometry(v any) (geom.T, error) {
	var text string
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		text = t
	case []byte:
		text = string(t)
	default:
		return nil, fmt.Errorf("unexpected GeoJSON type %T", v)
	}

	var g geom.T
	if err := geojson.Unmarshal([]byte(text), &g); err != nil {
		return nil, err
	}
	return g, nil
}
