// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package datasets

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/terroir/internal/database"
	"github.com/tomtom215/terroir/internal/database/query"
	"github.com/tomtom215/terroir/internal/failure"
	"github.com/tomtom215/terroir/internal/hypermedia"
	"github.com/tomtom215/terroir/internal/listing"
)

// failingQuerier records statements and fails every query.
type failingQuerier struct {
	mu   sync.Mutex
	seen []string
}

func (f *failingQuerier) QueryContext(_ context.Context, q string, _ ...any) (*sql.Rows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, q)
	return nil, errors.New("connection refused")
}

func (f *failingQuerier) statements() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seen...)
}

func setupCatalog(t *testing.T) *Catalog {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("Failed to open DuckDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range []string{
		`CREATE TABLE vine_varieties (code VARCHAR PRIMARY KEY, name VARCHAR, color VARCHAR, origin VARCHAR, clones INTEGER, picture VARCHAR)`,
		`INSERT INTO vine_varieties VALUES
			('CHA', 'Chardonnay', 'blanc', 'Bourgogne', 34, NULL),
			('PNO', 'Pinot noir', 'rouge', 'Bourgogne', 47, 'https://example.org/pinot.jpg'),
			('SYR', 'Syrah', 'rouge', 'Rhône', 12, NULL)`,
		`CREATE TABLE phytosanitary_products (amm VARCHAR PRIMARY KEY, name VARCHAR, holder VARCHAR, status VARCHAR, functions VARCHAR, authorized_on DATE, withdrawn_on DATE)`,
		`INSERT INTO phytosanitary_products VALUES
			('2010001', 'Bouillie bordelaise', 'Cuprex SA', 'authorized', 'Fongicide|Bactéricide', DATE '2010-03-01', NULL)`,
		`CREATE TABLE credits (dataset VARCHAR PRIMARY KEY, source VARCHAR, licence VARCHAR, url VARCHAR, updated_at TIMESTAMP)`,
		`INSERT INTO credits VALUES ('vine-varieties', 'Plant catalogue', 'Licence Ouverte 2.0', 'https://example.org', TIMESTAMP '2026-01-15 00:00:00')`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Failed to prepare fixture: %v", err)
		}
	}

	engine := query.NewEngine(db, nil, database.DialectDuckDB, query.Options{})
	return NewCatalog(engine, listing.NewPaginator(0))
}

func failingCatalog(dialect database.Dialect) (*Catalog, *failingQuerier) {
	q := &failingQuerier{}
	engine := query.NewEngine(q, nil, dialect, query.Options{})
	return NewCatalog(engine, listing.NewPaginator(0)), q
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		name      string
		values    url.Values
		wantErr   bool
		wantLimit int
	}{
		{"valid with default limit", url.Values{"lon": {"4.84"}, "lat": {"47.02"}}, false, DefaultNearestLimit},
		{"valid with limit", url.Values{"lon": {"4.84"}, "lat": {"47.02"}, "limit": {"50"}}, false, 50},
		{"missing lon", url.Values{"lat": {"47.02"}}, true, 0},
		{"missing lat", url.Values{"lon": {"4.84"}}, true, 0},
		{"non-numeric lon", url.Values{"lon": {"east"}, "lat": {"47.02"}}, true, 0},
		{"latitude out of range", url.Values{"lon": {"4.84"}, "lat": {"95"}}, true, 0},
		{"limit above maximum", url.Values{"lon": {"4.84"}, "lat": {"47.02"}, "limit": {"51"}}, true, 0},
		{"non-numeric limit", url.Values{"lon": {"4.84"}, "lat": {"47.02"}, "limit": {"ten"}}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePoint(tt.values)
			if tt.wantErr {
				if !errors.Is(err, failure.ErrBadRequest) {
					t.Errorf("Expected BadRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if p.Limit != tt.wantLimit {
				t.Errorf("Expected limit %d, got %d", tt.wantLimit, p.Limit)
			}
			if p.Point().SRID() != 4326 {
				t.Errorf("Expected SRID 4326, got %d", p.Point().SRID())
			}
		})
	}
}

func TestMapProduct(t *testing.T) {
	record := mapProduct(query.Row{
		"amm":           "2010001",
		"name":          "Bouillie bordelaise",
		"status":        "Authorized",
		"functions":     "Fongicide| Bactéricide|",
		"authorized_on": time.Date(2010, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	link, ok := record["amm"].(hypermedia.Link)
	if !ok || link.Href != "/phytosanitary/products/2010001" {
		t.Errorf("Unexpected amm link %#v", record["amm"])
	}
	if got := record["functions"].Display(); got != "Fongicide, Bactéricide" {
		t.Errorf("Expected two functions, got %q", got)
	}
	if b, ok := record["authorized"].(hypermedia.Boolean); !ok || !b.Value {
		t.Errorf("Expected authorized true, got %#v", record["authorized"])
	}
	if record["holder"].Type() != hypermedia.TypeUndefined {
		t.Errorf("Expected undefined holder, got %s", record["holder"].Type())
	}
	if got := record["authorized_on"].Display(); got != "2010-03-01" {
		t.Errorf("Expected 2010-03-01, got %q", got)
	}
}

func TestMapStation(t *testing.T) {
	tests := []struct {
		altitude  any
		wantType  hypermedia.Type
		wantColor string
	}{
		{120.0, hypermedia.TypeGauge, "green"},
		{845.0, hypermedia.TypeGauge, "orange"},
		{2877.0, hypermedia.TypeGauge, "purple"},
		{nil, hypermedia.TypeUndefined, ""},
	}

	for _, tt := range tests {
		record := mapStation(query.Row{"id": "21473001", "name": "Dijon-Longvic", "altitude": tt.altitude})
		if record["altitude"].Type() != tt.wantType {
			t.Errorf("Expected %s, got %s", tt.wantType, record["altitude"].Type())
			continue
		}
		if g, ok := record["altitude"].(hypermedia.Gauge); ok && g.Color != tt.wantColor {
			t.Errorf("Expected color %s, got %s", tt.wantColor, g.Color)
		}
	}
}

func TestMapParcelLocality(t *testing.T) {
	record := mapParcel(query.Row{
		"id":                      "21054000AB0012",
		"municipality":            "21054",
		"municipality_name":       "Beaune",
		"municipality_department": "21",
		"area":                    1250.0,
	})

	if got := record["locality"].Display(); got != "department: 21; name: Beaune" {
		t.Errorf("Unexpected locality %q", got)
	}
	if link := record["municipality"].(hypermedia.Link); link.Href != "/municipalities/21054" {
		t.Errorf("Unexpected municipality href %q", link.Href)
	}
}

func TestCatalogDatasets(t *testing.T) {
	c, _ := failingCatalog(database.DialectDuckDB)

	if len(c.Datasets()) != 5 {
		t.Fatalf("Expected 5 datasets, got %d", len(c.Datasets()))
	}
	for _, d := range c.Datasets() {
		if d.Listing.Credit == nil || d.Listing.CreditMapper == nil {
			t.Errorf("Dataset %s has no credit query", d.Slug)
		}
		if got, ok := c.Dataset(d.Slug); !ok || got != d {
			t.Errorf("Dataset(%q) lookup failed", d.Slug)
		}
	}
	if _, ok := c.Dataset("unknown"); ok {
		t.Error("Expected unknown slug to be absent")
	}
}

func TestListVarieties(t *testing.T) {
	c := setupCatalog(t)
	d, _ := c.Dataset("vine-varieties")

	req, err := listing.ParseRequest(PathVarieties, url.Values{"color": {"rouge"}})
	if err != nil {
		t.Fatalf("ParseRequest failed: %v", err)
	}
	data := c.List(context.Background(), d, req)
	if data.Failed() {
		t.Fatalf("Listing failed: %v", data.Err)
	}

	if data.Total != 2 {
		t.Errorf("Expected 2 red varieties, got %d", data.Total)
	}
	if len(data.Items) != 2 || data.Items[0]["name"].Display() != "Pinot noir" {
		t.Errorf("Unexpected items %v", data.Items)
	}
	if _, ok := data.Items[0]["picture"].(hypermedia.Image); !ok {
		t.Errorf("Expected picture image, got %#v", data.Items[0]["picture"])
	}
	if data.Credit == nil || data.Credit["source"].Display() != "Plant catalogue" {
		t.Errorf("Unexpected credit %v", data.Credit)
	}
	if len(data.Formats) != 3 {
		t.Errorf("Expected html, json and csv formats, got %d", len(data.Formats))
	}
}

func TestShow(t *testing.T) {
	c := setupCatalog(t)
	d, _ := c.Dataset("phytosanitary-products")

	res, err := c.Show(context.Background(), d, "2010001")
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if res.Title != "Bouillie bordelaise" {
		t.Errorf("Expected product name as title, got %q", res.Title)
	}
	if len(res.Breadcrumbs) != 3 || res.Breadcrumbs[1].Href != PathProducts {
		t.Errorf("Unexpected breadcrumbs %v", res.Breadcrumbs)
	}
	if res.Record["withdrawn_on"].Type() != hypermedia.TypeUndefined {
		t.Errorf("Expected undefined withdrawal date, got %s", res.Record["withdrawn_on"].Type())
	}

	_, err = c.Show(context.Background(), d, "9999999")
	if !errors.Is(err, failure.ErrNotFound) {
		t.Errorf("Expected NotFound, got %v", err)
	}
}

func TestLocateRequiresPoint(t *testing.T) {
	c, q := failingCatalog(database.DialectDuckDB)

	req, _ := listing.ParseRequest(PathLocate, url.Values{"lon": {"4.84"}})
	data := c.Locate(context.Background(), req)
	if !errors.Is(data.Err, failure.ErrBadRequest) {
		t.Errorf("Expected BadRequest, got %v", data.Err)
	}
	if n := len(q.statements()); n != 0 {
		t.Errorf("Expected no queries, got %d", n)
	}
}

func TestLocateRendersContains(t *testing.T) {
	c, q := failingCatalog(database.DialectDuckDB)

	req, _ := listing.ParseRequest(PathLocate, url.Values{"lon": {"4.84"}, "lat": {"47.02"}, "limit": {"500"}})
	data := c.Locate(context.Background(), req)
	if !errors.Is(data.Err, failure.ErrQuery) {
		t.Fatalf("Expected query failure, got %v", data.Err)
	}

	var found bool
	for _, stmt := range q.statements() {
		if strings.Contains(stmt, "WHERE ST_Contains(parcels.geometry, ST_GeomFromGeoJSON($1))") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a containment query, got %v", q.statements())
	}
}

func TestNearest(t *testing.T) {
	tests := []struct {
		dialect database.Dialect
		want    string
	}{
		{database.DialectDuckDB, "ORDER BY ST_Distance_Sphere(ST_FlipCoordinates(ST_Centroid(weather_stations.position)), ST_Point($1, $2)) ASC LIMIT 3"},
		{database.DialectPostgres, "ORDER BY weather_stations.position <-> ST_SetSRID(ST_MakePoint($1, $2), 4326) ASC LIMIT 3"},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			c, q := failingCatalog(tt.dialect)
			req, _ := listing.ParseRequest(PathNearest, url.Values{"lon": {"5.04"}, "lat": {"47.27"}, "limit": {"3"}})

			data := c.Nearest(context.Background(), req)
			if !data.Failed() {
				t.Fatal("Expected degraded page")
			}
			stmts := q.statements()
			if len(stmts) != 1 || !strings.HasSuffix(stmts[0], tt.want) {
				t.Errorf("Unexpected statements %v", stmts)
			}
			if len(data.Formats) != 4 {
				t.Errorf("Expected geojson format link, got %v", data.Formats)
			}
		})
	}
}

func TestNearestRejectsMissingPoint(t *testing.T) {
	c, q := failingCatalog(database.DialectDuckDB)
	req, _ := listing.ParseRequest(PathNearest, url.Values{})

	data := c.Nearest(context.Background(), req)
	if failure.StatusOf(data.Err) != 400 {
		t.Errorf("Expected 400, got %d", failure.StatusOf(data.Err))
	}
	if len(q.statements()) != 0 {
		t.Errorf("Expected no queries, got %v", q.statements())
	}
}
