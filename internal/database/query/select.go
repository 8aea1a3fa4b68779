// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package query

import (
	"fmt"
	"slices"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/tomtom215/terroir/internal/database"
	"github.com/tomtom215/terroir/internal/metrics"
)

type ordering struct {
	expr string
	args []any
}

// Select is a mutable SELECT builder bound to one table. It is owned by a
// single call site and executed once through Run or Count.
//
//	rows, err := engine.From(Parcels).
//	    Where("section", query.Eq, "AB").
//	    OrderBy("id", query.Asc).
//	    Limit(150).
//	    Run(ctx)
type Select struct {
	engine  *Engine
	table   Table
	dialect database.Dialect

	fields     []string
	distinct   bool
	conditions []Condition
	groupBy    []string
	orders     []ordering
	limit      uint64
	offset     uint64

	// err holds the first invalid call; Build reports it.
	err error
}

func newSelect(engine *Engine, table Table, dialect database.Dialect) *Select {
	return &Select{engine: engine, table: table, dialect: dialect}
}

// Table returns the base table.
func (s *Select) Table() Table {
	return s.table
}

// Select restricts the projection. Without fields every column is returned.
func (s *Select) Select(fields ...string) *Select {
	s.fields = append(s.fields, fields...)
	return s
}

// Where appends a condition. Spatial operators require a geom.T value.
func (s *Select) Where(field string, op Op, value any) *Select {
	if s.err != nil {
		return s
	}
	if !op.valid() {
		s.err = fmt.Errorf("unsupported operator %q on %s", op, field)
		return s
	}
	if op.Spatial() {
		if _, ok := value.(geom.T); !ok {
			s.err = fmt.Errorf("%s on %s requires a geometry, got %T", op, field, value)
			return s
		}
	}
	s.conditions = append(s.conditions, Condition{Field: field, Op: op, Value: value})
	return s
}

// Conditions returns a copy of the accumulated conditions.
func (s *Select) Conditions() []Condition {
	return slices.Clone(s.conditions)
}

func (s *Select) Distinct() *Select {
	s.distinct = true
	return s
}

func (s *Select) GroupBy(fields ...string) *Select {
	s.groupBy = append(s.groupBy, fields...)
	return s
}

// OrderBy appends a plain column ordering.
func (s *Select) OrderBy(field string, dir Direction) *Select {
	if dir != Desc {
		dir = Asc
	}
	s.orders = append(s.orders, ordering{expr: s.table.Qualify(field) + " " + string(dir)})
	return s
}

// OrderByDistance orders rows by planar distance between field and the point.
func (s *Select) OrderByDistance(field string, lon, lat float64) *Select {
	metrics.RecordSpatial("distance")
	s.orders = append(s.orders, ordering{
		expr: fmt.Sprintf("ST_Distance(%s, ST_Point(?, ?)) ASC", s.table.Qualify(field)),
		args: []any{lon, lat},
	})
	return s
}

// OrderByNearest orders rows by closeness to the point using the backend's
// nearest-neighbour form: the PostGIS <-> operator, or great-circle distance
// to the geometry centroid on DuckDB.
func (s *Select) OrderByNearest(field string, lon, lat float64) *Select {
	metrics.RecordSpatial("nearest")
	col := s.table.Qualify(field)
	var expr string
	var args []any
	switch s.dialect {
	case database.DialectPostgres:
		expr = fmt.Sprintf("%s <-> ST_SetSRID(ST_MakePoint(?, ?), 4326) ASC", col)
		args = []any{lon, lat}
	default:
		// ST_Distance_Sphere expects latitude/longitude axis order.
		expr = fmt.Sprintf("ST_Distance_Sphere(ST_FlipCoordinates(ST_Centroid(%s)), ST_Point(?, ?)) ASC", col)
		args = []any{lat, lon}
	}
	s.orders = append(s.orders, ordering{expr: expr, args: args})
	return s
}

// Limit caps the number of rows. Zero means no limit.
func (s *Select) Limit(n uint64) *Select {
	s.limit = n
	return s
}

// Offset skips rows. Zero means no offset.
func (s *Select) Offset(n uint64) *Select {
	s.offset = n
	return s
}

// Clone returns an independent copy sharing only the immutable table.
func (s *Select) Clone() *Select {
	c := *s
	c.fields = slices.Clone(s.fields)
	c.conditions = slices.Clone(s.conditions)
	c.groupBy = slices.Clone(s.groupBy)
	c.orders = slices.Clone(s.orders)
	return &c
}

// Build renders the statement with $N placeholders in statement order.
func (s *Select) Build() (string, []any, error) {
	if s.err != nil {
		return "", nil, s.err
	}
	b, err := s.builder(true)
	if err != nil {
		return "", nil, err
	}
	return b.PlaceholderFormat(sq.Dollar).ToSql()
}

// BuildCount renders the COUNT statement: same predicates, no ordering,
// limit or offset. DISTINCT and GROUP BY selections are counted through a
// sub-select.
func (s *Select) BuildCount() (string, []any, error) {
	if s.err != nil {
		return "", nil, s.err
	}

	if s.distinct || len(s.groupBy) > 0 {
		inner, err := s.builder(false)
		if err != nil {
			return "", nil, err
		}
		return sq.Select("COUNT(*)").
			FromSelect(inner, "counted").
			PlaceholderFormat(sq.Dollar).
			ToSql()
	}

	b := sq.Select("COUNT(*)").From(s.table.Name)
	b = s.joins(b)
	b, err := s.where(b)
	if err != nil {
		return "", nil, err
	}
	return b.PlaceholderFormat(sq.Dollar).ToSql()
}

func (s *Select) builder(paged bool) (sq.SelectBuilder, error) {
	b := sq.Select(s.columns()...).From(s.table.Name)
	if s.distinct {
		b = b.Distinct()
	}
	b = s.joins(b)

	b, err := s.where(b)
	if err != nil {
		return b, err
	}

	if len(s.groupBy) > 0 {
		grouped := make([]string, len(s.groupBy))
		for i, f := range s.groupBy {
			grouped[i] = s.table.Qualify(f)
		}
		b = b.GroupBy(grouped...)
	}

	if !paged {
		return b, nil
	}

	for _, o := range s.orders {
		b = b.OrderByClause(o.expr, o.args...)
	}
	if s.limit > 0 {
		b = b.Limit(s.limit)
	}
	if s.offset > 0 {
		b = b.Offset(s.offset)
	}
	return b, nil
}

func (s *Select) joins(b sq.SelectBuilder) sq.SelectBuilder {
	for _, j := range s.table.Joins {
		b = b.LeftJoin(fmt.Sprintf("%s ON %s = %s",
			j.Table.Name, s.table.Qualify(j.Field), j.Table.Qualify(j.Table.PrimaryKey)))
	}
	return b
}

func (s *Select) where(b sq.SelectBuilder) (sq.SelectBuilder, error) {
	for _, c := range s.conditions {
		col := s.table.Qualify(c.Field)
		switch c.Op {
		case Within, Contains:
			text, err := geojson.Marshal(c.Value.(geom.T))
			if err != nil {
				return b, fmt.Errorf("encode %s geometry: %w", c.Field, err)
			}
			fn := "ST_Within"
			if c.Op == Contains {
				fn = "ST_Contains"
			}
			metrics.RecordSpatial(strings.ToLower(string(c.Op)))
			b = b.Where(sq.Expr(fmt.Sprintf("%s(%s, ST_GeomFromGeoJSON(?))", fn, col), string(text)))
		default:
			b = b.Where(sq.Expr(fmt.Sprintf("%s %s ?", col, c.Op), c.Value))
		}
	}
	return b, nil
}

// columns renders the projection. Geometry columns are re-encoded as GeoJSON
// text under their own name. Without a field list every base column is
// returned along with the declared columns of each join under their alias.
func (s *Select) columns() []string {
	if len(s.fields) > 0 {
		cols := make([]string, len(s.fields))
		for i, f := range s.fields {
			if s.table.IsGeometry(f) {
				cols[i] = geoJSONColumn(s.table.Qualify(f), f)
			} else {
				cols[i] = s.table.Qualify(f)
			}
		}
		return cols
	}

	cols := []string{s.star(s.table)}
	for _, g := range s.table.Geometries {
		cols = append(cols, geoJSONColumn(s.table.Qualify(g), g))
	}
	for _, j := range s.table.Joins {
		for _, c := range j.Columns {
			if j.Table.IsGeometry(c) {
				cols = append(cols, geoJSONColumn(j.Table.Qualify(c), j.Alias(c)))
			} else {
				cols = append(cols, j.Table.Qualify(c)+" AS "+j.Alias(c))
			}
		}
	}
	return cols
}

// star selects every column of t, leaving raw geometry out where the
// dialect allows it. Otherwise the raw column is shadowed by the GeoJSON
// column of the same name, which scan assigns last.
func (s *Select) star(t Table) string {
	if len(t.Geometries) > 0 && s.dialect.SupportsExclude() {
		return fmt.Sprintf("%s.* EXCLUDE (%s)", t.Name, strings.Join(t.Geometries, ", "))
	}
	return t.Name + ".*"
}

func geoJSONColumn(expr, alias string) string {
	return fmt.Sprintf("CAST(ST_AsGeoJSON(%s) AS VARCHAR) AS %s", expr, alias)
}

// geometryColumns lists the result columns holding GeoJSON text.
func (s *Select) geometryColumns() []string {
	var cols []string
	if len(s.fields) > 0 {
		for _, f := range s.fields {
			if s.table.IsGeometry(f) {
				cols = append(cols, f)
			}
		}
		return cols
	}
	cols = append(cols, s.table.Geometries...)
	for _, j := range s.table.Joins {
		for _, c := range j.Columns {
			if j.Table.IsGeometry(c) {
				cols = append(cols, j.Alias(c))
			}
		}
	}
	return cols
}
