// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package listing

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"net/url"
	"strings"
	"sync"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/twpayne/go-geom"

	"github.com/tomtom215/terroir/internal/database"
	"github.com/tomtom215/terroir/internal/database/query"
	"github.com/tomtom215/terroir/internal/failure"
	"github.com/tomtom215/terroir/internal/hypermedia"
)

type recordingQuerier struct {
	db   *sql.DB
	mu   sync.Mutex
	seen []recorded
}

type recorded struct {
	statement string
	args      []any
}

func (r *recordingQuerier) QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	r.mu.Lock()
	r.seen = append(r.seen, recorded{statement: q, args: args})
	r.mu.Unlock()
	return r.db.QueryContext(ctx, q, args...)
}

func (r *recordingQuerier) find(prefix string) (recorded, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.seen {
		if strings.HasPrefix(rec.statement, prefix) {
			return rec, true
		}
	}
	return recorded{}, false
}

var (
	varietiesTable = query.Table{Name: "varieties", PrimaryKey: "code"}
	creditsTable   = query.Table{Name: "credits", PrimaryKey: "dataset"}
)

func setup(t *testing.T) (*recordingQuerier, *query.Engine) {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("Failed to open DuckDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range []string{
		`CREATE TABLE varieties (code VARCHAR PRIMARY KEY, name VARCHAR, color VARCHAR, weight DOUBLE)`,
		`INSERT INTO varieties
			SELECT 'V' || CAST(i AS VARCHAR), 'Variety ' || CAST(i AS VARCHAR), CASE WHEN i % 2 = 0 THEN 'rouge' ELSE 'blanc' END, i / 10.0
			FROM range(320) t(i)`,
		`CREATE TABLE credits (dataset VARCHAR PRIMARY KEY, source VARCHAR, licence VARCHAR)`,
		`INSERT INTO credits VALUES ('varieties', 'Plant catalogue', 'Licence Ouverte 2.0')`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Failed to prepare fixture: %v", err)
		}
	}

	q := &recordingQuerier{db: db}
	return q, query.NewEngine(q, nil, database.DialectDuckDB, query.Options{})
}

func varietyListing(engine *query.Engine) *Listing {
	return &Listing{
		Name:        "varieties",
		Title:       "Vine varieties",
		Breadcrumbs: []Breadcrumb{{Label: "Home", Href: "/"}, {Label: "Vine varieties"}},
		Fields: []Field{
			{Name: "name", Label: "Name", Match: MatchLike},
			{Name: "color", Label: "Color", Match: MatchExact},
			{Name: "min_weight", Label: "Minimum weight", Match: MatchMin, Column: "weight"},
		},
		Query:  engine.From(varietiesTable).OrderBy("code", query.Asc),
		Credit: engine.From(creditsTable).Where("dataset", query.Eq, "varieties"),
		Columns: []hypermedia.Column{
			{Key: "code", Label: "Code"},
			{Key: "name", Label: "Name"},
		},
		Mapper: func(row query.Row) hypermedia.Record {
			return hypermedia.Record{
				"code": hypermedia.Text{Label: "Code", Value: row.String("code")},
				"name": hypermedia.Text{Label: "Name", Value: row.String("name")},
			}
		},
		CreditMapper: func(row query.Row) hypermedia.Record {
			return hypermedia.Record{"source": hypermedia.Text{Label: "Source", Value: row.String("source")}}
		},
	}
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 1, false},
		{"1", 1, false},
		{"7", 7, false},
		{"abc", 0, true},
		{"0", 0, true},
		{"-2", 0, true},
		{"1.5", 0, true},
		{"2147483647", 2147483647, false},
		{"2147483648", 0, true},
		{"9223372036854775807", 0, true},
		{"99999999999999999999", 0, true},
	}

	for _, tt := range tests {
		values := url.Values{}
		if tt.raw != "" {
			values.Set("page", tt.raw)
		}
		req, err := ParseRequest("/vine/varieties", values)
		if tt.wantErr {
			if !errors.Is(err, failure.ErrBadRequest) {
				t.Errorf("page=%q: expected BadRequest, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("page=%q: unexpected error %v", tt.raw, err)
			continue
		}
		if req.Page != tt.want {
			t.Errorf("page=%q: expected %d, got %d", tt.raw, tt.want, req.Page)
		}
	}
}

func TestWindowBounds(t *testing.T) {
	tests := []struct {
		page, pages         int
		wantFirst, wantLast int
	}{
		{1, 20, 1, 7},
		{7, 20, 2, 13},
		{6, 20, 1, 12},
		{10, 20, 5, 16},
		{20, 20, 15, 20},
		{3, 4, 1, 4},
		{1, 1, 1, 1},
	}

	for _, tt := range tests {
		first, last := WindowBounds(tt.page, tt.pages)
		if first != tt.wantFirst || last != tt.wantLast {
			t.Errorf("WindowBounds(%d, %d) = [%d, %d], want [%d, %d]",
				tt.page, tt.pages, first, last, tt.wantFirst, tt.wantLast)
		}
	}

	if links := window("/x", url.Values{}, 1, 0); len(links) != 0 {
		t.Errorf("Expected empty window without pages, got %v", links)
	}
}

func TestNavigationBoundaries(t *testing.T) {
	first := navigation("/x", url.Values{}, 1, 3)
	if first.First != "" || first.Previous != "" {
		t.Errorf("Expected no first/previous on page 1, got %+v", first)
	}
	if first.Next != "/x?page=2" || first.Last != "/x?page=3" {
		t.Errorf("Unexpected next/last %+v", first)
	}

	last := navigation("/x", url.Values{"name": {"a"}}, 3, 3)
	if last.Next != "" || last.Last != "" {
		t.Errorf("Expected no next/last on the last page, got %+v", last)
	}
	if last.First != "/x?name=a&page=1" || last.Previous != "/x?name=a&page=2" {
		t.Errorf("Unexpected first/previous %+v", last)
	}

	if single := navigation("/x", url.Values{}, 1, 1); single != (Links{}) {
		t.Errorf("Expected no links for a single page, got %+v", single)
	}
}

func TestTotalPages(t *testing.T) {
	tests := map[[2]int]int{
		{0, 150}:   0,
		{1, 150}:   1,
		{150, 150}: 1,
		{151, 150}: 2,
		{320, 150}: 3,
	}
	for in, want := range tests {
		if got := TotalPages(in[0], in[1]); got != want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", in[0], in[1], got, want)
		}
	}
}

func TestFormatLinks(t *testing.T) {
	links := FormatLinks("/weather/stations", url.Values{"name": {"dijon"}}, true)
	want := []FormatLink{
		{"html", "/weather/stations?name=dijon"},
		{"json", "/weather/stations.json?name=dijon"},
		{"csv", "/weather/stations.csv?name=dijon"},
		{"geojson", "/weather/stations.geojson?name=dijon"},
	}
	if len(links) != len(want) {
		t.Fatalf("Expected %d links, got %d", len(want), len(links))
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("Link %d: expected %+v, got %+v", i, want[i], links[i])
		}
	}

	if plain := FormatLinks("/vine/varieties", url.Values{}, false); len(plain) != 3 || plain[1].Href != "/vine/varieties.json" {
		t.Errorf("Unexpected links without geometry %+v", plain)
	}
}

func TestPaginate_SecondPage(t *testing.T) {
	q, engine := setup(t)
	req, err := ParseRequest("/vine/varieties", url.Values{"page": {"2"}})
	if err != nil {
		t.Fatalf("ParseRequest failed: %v", err)
	}

	data := NewPaginator(150).Paginate(context.Background(), varietyListing(engine), req)
	if data.Err != nil {
		t.Fatalf("Unexpected error: %v", data.Err)
	}

	rows, ok := q.find("SELECT varieties.*")
	if !ok {
		t.Fatal("Expected a row query")
	}
	if !strings.HasSuffix(rows.statement, "ORDER BY varieties.code ASC LIMIT 150 OFFSET 150") {
		t.Errorf("Expected LIMIT 150 OFFSET 150, got %q", rows.statement)
	}

	count, ok := q.find("SELECT COUNT(*)")
	if !ok {
		t.Fatal("Expected a count query")
	}
	if strings.Contains(count.statement, "LIMIT") || strings.Contains(count.statement, "OFFSET") {
		t.Errorf("Count query must not be paginated: %q", count.statement)
	}

	if data.Total != 320 || data.Pages != 3 || data.Page != 2 {
		t.Errorf("Expected total 320 on 3 pages at page 2, got %d/%d/%d", data.Total, data.Pages, data.Page)
	}
	if len(data.Items) != 150 {
		t.Errorf("Expected 150 items, got %d", len(data.Items))
	}
	if data.Links.First == "" || data.Links.Previous == "" || data.Links.Next == "" || data.Links.Last == "" {
		t.Errorf("Expected all navigation links on a middle page, got %+v", data.Links)
	}
	if len(data.Window) != 3 || !data.Window[1].Current {
		t.Errorf("Unexpected window %+v", data.Window)
	}
	if data.Credit == nil || data.Credit["source"].Display() != "Plant catalogue" {
		t.Errorf("Expected credit row, got %v", data.Credit)
	}
}

func TestPaginate_Filters(t *testing.T) {
	q, engine := setup(t)
	req, _ := ParseRequest("/vine/varieties", url.Values{
		"name":       {"Variety 1"},
		"color":      {"rouge"},
		"min_weight": {"10"},
	})

	data := NewPaginator(150).Paginate(context.Background(), varietyListing(engine), req)
	if data.Err != nil {
		t.Fatalf("Unexpected error: %v", data.Err)
	}

	count, ok := q.find("SELECT COUNT(*)")
	if !ok {
		t.Fatal("Expected a count query")
	}
	if !strings.Contains(count.statement, "varieties.name LIKE $1 AND varieties.color = $2 AND varieties.weight >= $3") {
		t.Errorf("Unexpected filter rendering %q", count.statement)
	}
	if count.args[0] != "%Variety 1%" {
		t.Errorf("Expected LIKE value wrapped in %%, got %v", count.args[0])
	}
	if count.args[1] != "rouge" {
		t.Errorf("Expected exact value unchanged, got %v", count.args[1])
	}
	if count.args[2] != 10.0 {
		t.Errorf("Expected numeric minimum, got %v", count.args[2])
	}

	// Even codes 100..198 are rouge with weight >= 10 and start with "Variety 1"
	if data.Total != 50 {
		t.Errorf("Expected 50 matching rows, got %d", data.Total)
	}
	for _, in := range data.Form {
		if in.Name == "color" && in.Value != "rouge" {
			t.Errorf("Expected form to echo submitted value, got %q", in.Value)
		}
	}
}

func TestPaginate_InvalidFilterDegrades(t *testing.T) {
	q, engine := setup(t)
	req, _ := ParseRequest("/vine/varieties", url.Values{"min_weight": {"heavy"}})

	data := NewPaginator(150).Paginate(context.Background(), varietyListing(engine), req)
	if !errors.Is(data.Err, failure.ErrBadRequest) {
		t.Fatalf("Expected BadRequest, got %v", data.Err)
	}
	if data.Title != "Vine varieties" || len(data.Breadcrumbs) != 2 || len(data.Form) != 3 {
		t.Errorf("Degraded page must keep its chrome, got %+v", data)
	}
	if len(q.seen) != 0 {
		t.Errorf("Expected no queries, got %d", len(q.seen))
	}
}

func TestPaginate_PageOutOfRange(t *testing.T) {
	q, engine := setup(t)
	req := Request{Path: "/vine/varieties", Query: url.Values{}, Page: math.MaxInt / 100}

	data := NewPaginator(150).Paginate(context.Background(), varietyListing(engine), req)
	if !errors.Is(data.Err, failure.ErrBadRequest) {
		t.Fatalf("Expected BadRequest, got %v", data.Err)
	}
	if len(q.seen) != 0 {
		t.Errorf("Expected no queries, got %d", len(q.seen))
	}

	req.Page = MaxPage
	data = NewPaginator(10000).Paginate(context.Background(), varietyListing(engine), req)
	if data.Err != nil {
		t.Fatalf("Unexpected error on the last accepted page: %v", data.Err)
	}
	rows, ok := q.find("SELECT varieties.*")
	if !ok || !strings.HasSuffix(rows.statement, "LIMIT 10000 OFFSET 21474836460000") {
		t.Errorf("Unexpected row query %q", rows.statement)
	}
	if len(data.Items) != 0 {
		t.Errorf("Expected an empty page, got %d items", len(data.Items))
	}
}

func TestPaginate_NumericExactFilter(t *testing.T) {
	q, engine := setup(t)
	l := varietyListing(engine)
	l.Fields = append(l.Fields, Field{Name: "weight", Label: "Weight", Match: MatchExact, Numeric: true})

	req, _ := ParseRequest("/vine/varieties", url.Values{"weight": {"1.5"}})
	data := NewPaginator(150).Paginate(context.Background(), l, req)
	if data.Err != nil {
		t.Fatalf("Unexpected error: %v", data.Err)
	}
	count, ok := q.find("SELECT COUNT(*)")
	if !ok || count.args[0] != 1.5 {
		t.Errorf("Expected numeric exact value, got %+v", count)
	}
	if data.Total != 1 {
		t.Errorf("Expected 1 matching row, got %d", data.Total)
	}

	q.seen = nil
	req, _ = ParseRequest("/vine/varieties", url.Values{"weight": {"abc"}})
	data = NewPaginator(150).Paginate(context.Background(), l, req)
	if !errors.Is(data.Err, failure.ErrBadRequest) {
		t.Fatalf("Expected BadRequest, got %v", data.Err)
	}
	if len(q.seen) != 0 {
		t.Errorf("Expected no queries, got %d", len(q.seen))
	}
}

func TestPaginate_QueryFailureDegrades(t *testing.T) {
	_, engine := setup(t)
	l := varietyListing(engine)
	l.Query = engine.From(query.Table{Name: "missing", PrimaryKey: "id"})

	req, _ := ParseRequest("/vine/varieties", nil)
	data := NewPaginator(150).Paginate(context.Background(), l, req)

	if !errors.Is(data.Err, failure.ErrQuery) {
		t.Fatalf("Expected query error, got %v", data.Err)
	}
	if data.Items != nil {
		t.Errorf("Expected no items on failure, got %d", len(data.Items))
	}

	doc := data.Document()
	if _, ok := doc[hypermedia.ResultKey].(error); !ok {
		t.Errorf("Expected error result in document, got %T", doc[hypermedia.ResultKey])
	}
}

func TestPaginate_NoCreditQuery(t *testing.T) {
	_, engine := setup(t)
	l := varietyListing(engine)
	l.Credit = nil

	req, _ := ParseRequest("/vine/varieties", nil)
	data := NewPaginator(150).Paginate(context.Background(), l, req)
	if data.Err != nil {
		t.Fatalf("Unexpected error: %v", data.Err)
	}
	if data.Credit != nil {
		t.Errorf("Expected no credit, got %v", data.Credit)
	}
	if data.Links.First != "" || data.Links.Next != "/vine/varieties?page=2" {
		t.Errorf("Unexpected links %+v", data.Links)
	}
}

func TestFeatures(t *testing.T) {
	rows := []query.Row{
		{"id": "1", "position": geom.NewPointFlat(geom.XY, []float64{5.04, 47.32})},
		{"id": "2", "position": nil},
	}
	items := []hypermedia.Record{
		{"id": hypermedia.Text{Label: "Id", Value: "1"}},
		{"id": hypermedia.Text{Label: "Id", Value: "2"}},
	}
	columns := []hypermedia.Column{{Key: "id", Label: "Id"}}

	fc := Features(rows, items, columns, "position")
	if len(fc.Features) != 1 {
		t.Fatalf("Expected 1 feature, got %d", len(fc.Features))
	}
	if fc.Features[0].Properties["id"] != "1" {
		t.Errorf("Unexpected properties %v", fc.Features[0].Properties)
	}
}

func TestDocumentAndTable(t *testing.T) {
	data := &PageData{
		Title:   "Vine varieties",
		Columns: []hypermedia.Column{{Key: "name", Label: "Name"}},
		Items: []hypermedia.Record{
			{"name": hypermedia.Text{Label: "Name", Value: "A"}},
			{},
		},
		Total: 2,
		Page:  1,
		Pages: 1,
	}

	if got := hypermedia.EncodeCSV(data.Table()); got != "Name\n\"A\"\n" {
		t.Errorf("Unexpected CSV %q", got)
	}

	doc := data.Document()
	result, ok := doc[hypermedia.ResultKey].(Result)
	if !ok {
		t.Fatalf("Expected Result, got %T", doc[hypermedia.ResultKey])
	}
	if result.Total != 2 || len(result.Items) != 2 {
		t.Errorf("Unexpected result %+v", result)
	}
	if doc["title"] != "Vine varieties" {
		t.Errorf("Unexpected title %v", doc["title"])
	}
}
