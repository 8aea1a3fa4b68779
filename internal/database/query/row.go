// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package query

import (
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/twpayne/go-geom"
)

// Row is one result row keyed by column name. Geometry columns hold geom.T.
// Rows may be served from the shared cache and must not be mutated.
type Row map[string]any

// String returns the column formatted as text, or "" when NULL or absent.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Float returns the column as a float64.
func (r Row) Float(col string) (float64, bool) {
	return toFloat64(r[col])
}

// Int returns the column as an int64.
func (r Row) Int(col string) (int64, bool) {
	return toInt64(r[col])
}

// Bool returns the column as a bool.
func (r Row) Bool(col string) (bool, bool) {
	b, ok := r[col].(bool)
	return b, ok
}

// Time returns the column as a time.Time.
func (r Row) Time(col string) (time.Time, bool) {
	t, ok := r[col].(time.Time)
	return t, ok
}

// Geometry returns the decoded geometry, or nil.
func (r Row) Geometry(col string) geom.T {
	g, _ := r[col].(geom.T)
	return g
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint64:
		return int64(n), true
	case uint32:
		return int64(n), true
	case *big.Int:
		return n.Int64(), n.IsInt64()
	case float64:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case interface{ Float64() float64 }:
		return n.Float64(), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		if i, ok := toInt64(v); ok {
			return float64(i), true
		}
		return 0, false
	}
}
