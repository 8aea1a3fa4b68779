// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package query

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/twpayne/go-geom"

	"github.com/tomtom215/terroir/internal/cache"
	"github.com/tomtom215/terroir/internal/database"
	"github.com/tomtom215/terroir/internal/failure"
)

// recordingQuerier forwards to DuckDB and remembers every statement.
type recordingQuerier struct {
	db         *sql.DB
	mu         sync.Mutex
	statements []string
	args       [][]any
}

func (r *recordingQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	r.mu.Lock()
	r.statements = append(r.statements, query)
	r.args = append(r.args, args)
	r.mu.Unlock()
	return r.db.QueryContext(ctx, query, args...)
}

func (r *recordingQuerier) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.statements)
}

func setupVarieties(t *testing.T) *recordingQuerier {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("Failed to open DuckDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	statements := []string{
		`CREATE TABLE varieties (code VARCHAR PRIMARY KEY, name VARCHAR, color VARCHAR, berry_weight DOUBLE)`,
		`INSERT INTO varieties VALUES
			('PN', 'Pinot noir', 'rouge', 1.2),
			('CH', 'Chardonnay', 'blanc', 1.4),
			('PG', 'Pinot gris', 'gris', 1.3),
			('GA', 'Gamay', 'rouge', 1.9)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Failed to prepare fixture: %v", err)
		}
	}
	return &recordingQuerier{db: db}
}

func TestRun_ReturnsRows(t *testing.T) {
	q := setupVarieties(t)
	engine := NewEngine(q, nil, database.DialectDuckDB, Options{})

	rows, err := engine.From(testVarieties).Where("color", Eq, "rouge").OrderBy("code", Asc).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].String("code") != "GA" || rows[1].String("name") != "Pinot noir" {
		t.Errorf("Unexpected rows %v", rows)
	}
	if w, ok := rows[0].Float("berry_weight"); !ok || w != 1.9 {
		t.Errorf("Expected berry_weight 1.9, got %v", rows[0]["berry_weight"])
	}
}

func TestRun_EmptyResultIsNotNil(t *testing.T) {
	q := setupVarieties(t)
	engine := NewEngine(q, nil, database.DialectDuckDB, Options{})

	rows, err := engine.From(testVarieties).Where("color", Eq, "rosé").Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", rows)
	}
}

func TestRun_LikeFilter(t *testing.T) {
	q := setupVarieties(t)
	engine := NewEngine(q, nil, database.DialectDuckDB, Options{})

	rows, err := engine.From(testVarieties).Where("name", Like, "%Pinot%").Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("Expected 2 Pinot rows, got %d", len(rows))
	}
}

func TestRun_DatabaseFailureIsQueryError(t *testing.T) {
	q := setupVarieties(t)
	engine := NewEngine(q, nil, database.DialectDuckDB, Options{})

	_, err := engine.From(Table{Name: "missing", PrimaryKey: "id"}).Run(context.Background())
	if err == nil {
		t.Fatal("Expected error for missing table")
	}
	if !errors.Is(err, failure.ErrQuery) {
		t.Errorf("Expected generic query error, got %v", err)
	}
	if failure.MessageOf(err) != "query failed" {
		t.Errorf("Expected public message without SQL, got %q", failure.MessageOf(err))
	}
}

func TestRead(t *testing.T) {
	q := setupVarieties(t)
	engine := NewEngine(q, nil, database.DialectDuckDB, Options{})
	ctx := context.Background()

	row, err := engine.Read(ctx, testVarieties, "CH")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if row.String("name") != "Chardonnay" {
		t.Errorf("Expected Chardonnay, got %q", row.String("name"))
	}
	if !strings.Contains(q.statements[0], "WHERE varieties.code = $1 LIMIT 1") {
		t.Errorf("Unexpected read statement %q", q.statements[0])
	}

	_, err = engine.Read(ctx, testVarieties, "XX")
	if !errors.Is(err, failure.ErrNotFound) {
		t.Errorf("Expected NotFound, got %v", err)
	}
}

func TestRead_IntegerKey(t *testing.T) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("Failed to open DuckDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	for _, stmt := range []string{
		`CREATE TABLE stations (id INTEGER PRIMARY KEY, name VARCHAR)`,
		`INSERT INTO stations VALUES (21473001, 'Dijon-Longvic'), (71105001, 'Macon')`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Failed to prepare fixture: %v", err)
		}
	}

	q := &recordingQuerier{db: db}
	engine := NewEngine(q, nil, database.DialectDuckDB, Options{})
	stations := Table{Name: "stations", PrimaryKey: "id", KeyType: KeyInteger}
	ctx := context.Background()

	row, err := engine.Read(ctx, stations, "21473001")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if row.String("name") != "Dijon-Longvic" {
		t.Errorf("Expected Dijon-Longvic, got %q", row.String("name"))
	}

	tests := []string{"abc", "12.5", "", "99999999999999999999", "1"}
	for _, key := range tests {
		_, err := engine.Read(ctx, stations, key)
		if !errors.Is(err, failure.ErrNotFound) {
			t.Errorf("Read(%q): expected NotFound, got %v", key, err)
		}
	}
	if q.calls() != 2 {
		t.Errorf("Expected unparsable keys to skip the database, got %d queries", q.calls())
	}
}

func TestParseKey(t *testing.T) {
	integer := Table{Name: "t", PrimaryKey: "id", KeyType: KeyInteger}
	tests := []struct {
		key  any
		want any
		ok   bool
	}{
		{"42", int64(42), true},
		{" 7 ", int64(7), true},
		{42, int64(42), true},
		{int64(-3), int64(-3), true},
		{"x42", int64(0), false},
	}
	for _, tt := range tests {
		got, ok := integer.ParseKey(tt.key)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseKey(%v) = (%v, %v), want (%v, %v)", tt.key, got, ok, tt.want, tt.ok)
		}
	}

	if got, ok := testVarieties.ParseKey("PN"); !ok || got != "PN" {
		t.Errorf("Expected text keys unchanged, got (%v, %v)", got, ok)
	}
}

func TestCount(t *testing.T) {
	q := setupVarieties(t)
	engine := NewEngine(q, nil, database.DialectDuckDB, Options{})
	ctx := context.Background()

	base := engine.From(testVarieties).Where("color", Eq, "rouge")
	n, err := base.Clone().Limit(1).Offset(1).Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2, got %d", n)
	}

	colors, err := engine.From(testVarieties).Select("color").Distinct().Count(ctx)
	if err != nil {
		t.Fatalf("Distinct count failed: %v", err)
	}
	if colors != 3 {
		t.Errorf("Expected 3 distinct colors, got %d", colors)
	}

	grouped, err := engine.From(testVarieties).Select("color").GroupBy("color").Count(ctx)
	if err != nil {
		t.Fatalf("Grouped count failed: %v", err)
	}
	if grouped != 3 {
		t.Errorf("Expected 3 groups, got %d", grouped)
	}
}

func TestRun_CacheHit(t *testing.T) {
	q := setupVarieties(t)
	store := cache.New(10, time.Hour)
	engine := NewEngine(q, store, database.DialectDuckDB, Options{})
	ctx := context.Background()

	first, err := engine.From(testVarieties).Where("color", Eq, "blanc").Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := engine.From(testVarieties).Where("color", Eq, "blanc").Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if q.calls() != 1 {
		t.Errorf("Expected 1 database call, got %d", q.calls())
	}
	if len(first) != 1 || len(second) != 1 || second[0].String("code") != "CH" {
		t.Errorf("Expected cached row, got %v", second)
	}

	// Different parameters must not share the cached result
	if _, err := engine.From(testVarieties).Where("color", Eq, "rouge").Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if q.calls() != 2 {
		t.Errorf("Expected 2 database calls, got %d", q.calls())
	}

	if _, err := engine.From(testVarieties).Where("color", Eq, "rouge").Count(ctx); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if _, err := engine.From(testVarieties).Where("color", Eq, "rouge").Count(ctx); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if q.calls() != 3 {
		t.Errorf("Expected count to be cached separately, got %d calls", q.calls())
	}
	if store.Len() != 3 {
		t.Errorf("Expected 3 cache entries, got %d", store.Len())
	}
}

func TestDecodeGeometry(t *testing.T) {
	g, err := decodeGeometry(`{"type":"Point","coordinates":[4.84,47.02]}`)
	if err != nil {
		t.Fatalf("decodeGeometry failed: %v", err)
	}
	point, ok := g.(*geom.Point)
	if !ok {
		t.Fatalf("Expected *geom.Point, got %T", g)
	}
	if point.X() != 4.84 || point.Y() != 47.02 {
		t.Errorf("Unexpected coordinates %v", point.Coords())
	}

	if g, err := decodeGeometry(nil); err != nil || g != nil {
		t.Errorf("Expected nil geometry for NULL, got %v, %v", g, err)
	}
	if _, err := decodeGeometry("not json"); err == nil {
		t.Error("Expected error for invalid GeoJSON")
	}
	if _, err := decodeGeometry(42); err == nil {
		t.Error("Expected error for non-text value")
	}
}

func TestRowAccessors(t *testing.T) {
	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	row := Row{"name": "Gamay", "n": int32(7), "f": "1.5", "ok": true, "at": ts, "null": nil}

	if row.String("name") != "Gamay" || row.String("null") != "" || row.String("n") != "7" {
		t.Errorf("Unexpected String results")
	}
	if n, ok := row.Int("n"); !ok || n != 7 {
		t.Errorf("Expected 7, got %d", n)
	}
	if f, ok := row.Float("f"); !ok || f != 1.5 {
		t.Errorf("Expected 1.5, got %v", f)
	}
	if b, ok := row.Bool("ok"); !ok || !b {
		t.Error("Expected true")
	}
	if at, ok := row.Time("at"); !ok || !at.Equal(ts) {
		t.Errorf("Expected %v, got %v", ts, at)
	}
	if row.Geometry("name") != nil {
		t.Error("Expected nil geometry for a text column")
	}
}

func TestRun_JoinedColumnsKeepTheirOwnValues(t *testing.T) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("Failed to open DuckDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	statements := []string{
		`CREATE TABLE towns (code VARCHAR PRIMARY KEY, name VARCHAR, area DOUBLE)`,
		`CREATE TABLE plots (id VARCHAR PRIMARY KEY, town VARCHAR, area DOUBLE)`,
		`INSERT INTO towns VALUES ('21054', 'Beaune', 31.3)`,
		`INSERT INTO plots VALUES ('21054000AB0012', '21054', 1250.0), ('99999000ZZ0001', '99999', 80.0)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Failed to prepare fixture: %v", err)
		}
	}

	plots := Table{
		Name:       "plots",
		PrimaryKey: "id",
		Joins: []Join{{
			Field:   "town",
			Table:   Table{Name: "towns", PrimaryKey: "code"},
			Columns: []string{"name", "area"},
		}},
	}
	engine := NewEngine(&recordingQuerier{db: db}, nil, database.DialectDuckDB, Options{})

	rows, err := engine.From(plots).OrderBy("id", Asc).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	if area, _ := rows[0].Float("area"); area != 1250.0 {
		t.Errorf("Expected base area 1250, got %v", rows[0]["area"])
	}
	if area, _ := rows[0].Float("town_area"); area != 31.3 {
		t.Errorf("Expected joined area 31.3, got %v", rows[0]["town_area"])
	}
	if got := rows[0].String("town_name"); got != "Beaune" {
		t.Errorf("Expected 'Beaune', got %q", got)
	}

	if area, _ := rows[1].Float("area"); area != 80.0 {
		t.Errorf("Expected base area 80, got %v", rows[1]["area"])
	}
	if rows[1]["town_name"] != nil {
		t.Errorf("Expected NULL joined name for an unknown town, got %v", rows[1]["town_name"])
	}
}
