// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Table describes a queryable dataset. Values are declared once at package
// level and never mutated.
type Table struct {
	Name       string
	PrimaryKey string

	// KeyType is the type family of PrimaryKey. The zero value is KeyText.
	KeyType KeyType

	// Joins are one-to-one relations rendered as LEFT JOINs on the joined
	// table's primary key.
	Joins []Join

	// Geometries lists the geometry-typed columns. They are projected as
	// GeoJSON text and decoded back into geom.T values.
	Geometries []string
}

// KeyType is the type family of a primary key column.
type KeyType int

const (
	KeyText KeyType = iota
	KeyInteger
)

// ParseKey converts key to the type of the primary key. It reports false
// when key cannot be represented in that type and so cannot match a row.
func (t Table) ParseKey(key any) (any, bool) {
	if t.KeyType != KeyInteger {
		return key, true
	}
	switch k := key.(type) {
	case int:
		return int64(k), true
	case int32:
		return int64(k), true
	case int64:
		return k, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(k), 10, 64)
		return n, err == nil
	default:
		n, err := strconv.ParseInt(fmt.Sprint(k), 10, 64)
		return n, err == nil
	}
}

// Join links Field of the base table to the primary key of Table.
// Columns lists the joined columns to project. Each is returned under
// Alias, so it never collides with a base column of the same name.
type Join struct {
	Field   string
	Table   Table
	Columns []string
}

// Alias is the result column name of the joined column col.
func (j Join) Alias(col string) string {
	return j.Field + "_" + col
}

// IsGeometry reports whether field is one of the table's geometry columns.
func (t Table) IsGeometry(field string) bool {
	return slices.Contains(t.Geometries, field)
}

// Qualify prefixes a bare column name with the table name. Names that are
// already qualified or are expressions are returned unchanged.
func (t Table) Qualify(field string) string {
	if strings.ContainsAny(field, ".( ") {
		return field
	}
	return t.Name + "." + field
}

// Op is a comparison operator accepted by Select.Where.
type Op string

const (
	Eq       Op = "="
	Gt       Op = ">"
	Gte      Op = ">="
	Lt       Op = "<"
	Lte      Op = "<="
	Like     Op = "LIKE"
	Within   Op = "WITHIN"
	Contains Op = "CONTAINS"
)

// Spatial reports whether the operator compares geometries.
func (o Op) Spatial() bool {
	return o == Within || o == Contains
}

func (o Op) valid() bool {
	switch o {
	case Eq, Gt, Gte, Lt, Lte, Like, Within, Contains:
		return true
	}
	return false
}

// Condition is a single predicate. Conditions of a Select are ANDed.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// Direction is an ORDER BY direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)
