// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package datasets

import (
	"context"
	"net/url"
	"time"

	"github.com/twpayne/go-geom"

	"github.com/tomtom215/terroir/internal/database/query"
	"github.com/tomtom215/terroir/internal/failure"
	"github.com/tomtom215/terroir/internal/hypermedia"
	"github.com/tomtom215/terroir/internal/listing"
	"github.com/tomtom215/terroir/internal/logging"
	"github.com/tomtom215/terroir/internal/metrics"
)

// Resource paths.
const (
	PathMunicipalities = "/municipalities"
	PathParcels        = "/cadastre/parcels"
	PathLocate         = "/cadastre/locate"
	PathStations       = "/weather/stations"
	PathNearest        = "/weather/nearest"
	PathProducts       = "/phytosanitary/products"
	PathVarieties      = "/vine/varieties"
)

// Dataset is a browsable table with a listing and a single-resource view.
type Dataset struct {
	Slug        string
	Path        string
	Title       string
	Description string

	Table   query.Table
	Listing *listing.Listing
}

// Resource is a single record with its page chrome.
type Resource struct {
	Title       string
	Breadcrumbs []listing.Breadcrumb
	Record      hypermedia.Record
	Columns     []hypermedia.Column
	Geometry    geom.T
}

// Document returns the JSON body of the resource.
func (r *Resource) Document() hypermedia.Document {
	return hypermedia.Document{
		"@type":              "Resource",
		"title":              r.Title,
		"breadcrumbs":        r.Breadcrumbs,
		hypermedia.ResultKey: r.Record,
	}
}

// Table returns the resource as a single-row table.
func (r *Resource) Table() hypermedia.Table {
	return hypermedia.Table{Columns: r.Columns, Rows: []hypermedia.Record{r.Record}}
}

// Catalog holds every dataset and the point-based views.
type Catalog struct {
	engine    *query.Engine
	paginator *listing.Paginator

	datasets []*Dataset
	bySlug   map[string]*Dataset

	locate  *listing.Listing
	nearest *listing.Listing
}

// NewCatalog declares the datasets against engine.
func NewCatalog(engine *query.Engine, paginator *listing.Paginator) *Catalog {
	c := &Catalog{
		engine:    engine,
		paginator: paginator,
		bySlug:    make(map[string]*Dataset),
	}

	c.add(&Dataset{
		Slug:        "municipalities",
		Path:        PathMunicipalities,
		Title:       "Municipalities",
		Description: "Administrative municipalities with population and contour.",
		Table:       Municipalities,
		Listing: &listing.Listing{
			Fields: []listing.Field{
				{Name: "name", Label: "Name", Match: listing.MatchLike},
				{Name: "department", Label: "Department", Match: listing.MatchExact},
			},
			Query:    engine.From(Municipalities).OrderBy("code", query.Asc),
			Columns:  municipalityColumns,
			Mapper:   mapMunicipality,
			Geometry: "contour",
		},
	})

	c.add(&Dataset{
		Slug:        "parcels",
		Path:        PathParcels,
		Title:       "Cadastral parcels",
		Description: "Land registry parcels by municipality and section.",
		Table:       Parcels,
		Listing: &listing.Listing{
			Fields: []listing.Field{
				{Name: "municipality", Label: "Municipality", Match: listing.MatchExact},
				{Name: "section", Label: "Section", Match: listing.MatchExact},
				{Name: "number", Label: "Number", Match: listing.MatchExact, Numeric: true},
				{Name: "min_area", Label: "Minimum area", Match: listing.MatchMin, Column: "area"},
			},
			Query:    engine.From(Parcels).OrderBy("id", query.Asc),
			Columns:  parcelColumns,
			Mapper:   mapParcel,
			Geometry: "geometry",
		},
	})

	c.add(&Dataset{
		Slug:        "weather-stations",
		Path:        PathStations,
		Title:       "Weather stations",
		Description: "Synoptic and climatological stations with altitude.",
		Table:       WeatherStations,
		Listing: &listing.Listing{
			Fields: []listing.Field{
				{Name: "name", Label: "Name", Match: listing.MatchLike},
				{Name: "department", Label: "Department", Match: listing.MatchExact},
				{Name: "min_altitude", Label: "Minimum altitude", Match: listing.MatchMin, Column: "altitude"},
			},
			Query:    engine.From(WeatherStations).OrderBy("id", query.Asc),
			Columns:  stationColumns,
			Mapper:   mapStation,
			Geometry: "position",
		},
	})

	c.add(&Dataset{
		Slug:        "phytosanitary-products",
		Path:        PathProducts,
		Title:       "Phytosanitary products",
		Description: "Plant protection products and their marketing authorizations.",
		Table:       PhytosanitaryProducts,
		Listing: &listing.Listing{
			Fields: []listing.Field{
				{Name: "name", Label: "Name", Match: listing.MatchLike},
				{Name: "holder", Label: "Holder", Match: listing.MatchLike},
				{Name: "status", Label: "Status", Match: listing.MatchExact},
			},
			Query:   engine.From(PhytosanitaryProducts).OrderBy("name", query.Asc),
			Columns: productColumns,
			Mapper:  mapProduct,
		},
	})

	c.add(&Dataset{
		Slug:        "vine-varieties",
		Path:        PathVarieties,
		Title:       "Vine varieties",
		Description: "Grape varieties with color and certified clones.",
		Table:       VineVarieties,
		Listing: &listing.Listing{
			Fields: []listing.Field{
				{Name: "name", Label: "Name", Match: listing.MatchLike},
				{Name: "color", Label: "Color", Match: listing.MatchExact},
			},
			Query:   engine.From(VineVarieties).OrderBy("name", query.Asc),
			Columns: varietyColumns,
			Mapper:  mapVariety,
		},
	})

	c.locate = &listing.Listing{
		Name:  "locate",
		Title: "Parcels at a location",
		Breadcrumbs: crumbs(
			listing.Breadcrumb{Label: "Cadastral parcels", Href: PathParcels},
			listing.Breadcrumb{Label: "Parcels at a location"},
		),
		Fields: []listing.Field{
			{Name: "lon", Label: "Longitude"},
			{Name: "lat", Label: "Latitude"},
		},
		Filter:       locateFilter,
		Query:        engine.From(Parcels).OrderBy("id", query.Asc),
		Credit:       c.credit("parcels"),
		Columns:      parcelColumns,
		Mapper:       mapParcel,
		CreditMapper: mapCredit,
		Geometry:     "geometry",
	}

	c.nearest = &listing.Listing{
		Name:  "nearest",
		Title: "Nearest weather stations",
		Breadcrumbs: crumbs(
			listing.Breadcrumb{Label: "Weather stations", Href: PathStations},
			listing.Breadcrumb{Label: "Nearest weather stations"},
		),
		Fields: []listing.Field{
			{Name: "lon", Label: "Longitude"},
			{Name: "lat", Label: "Latitude"},
			{Name: "limit", Label: "Limit"},
		},
		Credit:       c.credit("weather-stations"),
		Columns:      stationColumns,
		Mapper:       mapStation,
		CreditMapper: mapCredit,
		Geometry:     "position",
	}

	return c
}

func (c *Catalog) add(d *Dataset) {
	l := d.Listing
	l.Name = d.Slug
	l.Title = d.Title
	l.Breadcrumbs = crumbs(listing.Breadcrumb{Label: d.Title})
	l.Credit = c.credit(d.Slug)
	l.CreditMapper = mapCredit

	c.datasets = append(c.datasets, d)
	c.bySlug[d.Slug] = d
}

func (c *Catalog) credit(slug string) *query.Select {
	return c.engine.From(Credits).Where("dataset", query.Eq, slug)
}

// Datasets returns the datasets in declaration order.
func (c *Catalog) Datasets() []*Dataset {
	return c.datasets
}

// Dataset returns the dataset registered under slug.
func (c *Catalog) Dataset(slug string) (*Dataset, bool) {
	d, ok := c.bySlug[slug]
	return d, ok
}

// List runs the dataset listing for req.
func (c *Catalog) List(ctx context.Context, d *Dataset, req listing.Request) *listing.PageData {
	return c.paginator.Paginate(ctx, d.Listing, req)
}

// Show reads one record by primary key.
func (c *Catalog) Show(ctx context.Context, d *Dataset, key string) (*Resource, error) {
	row, err := c.engine.Read(ctx, d.Table, key)
	if err != nil {
		return nil, err
	}

	record := d.Listing.Mapper(row)
	title := key
	if v, ok := record["name"]; ok && v.Display() != "" {
		title = v.Display()
	}

	res := &Resource{
		Title:       title,
		Breadcrumbs: crumbs(listing.Breadcrumb{Label: d.Title, Href: d.Path}, listing.Breadcrumb{Label: title}),
		Record:      record,
		Columns:     d.Listing.Columns,
	}
	if d.Listing.Geometry != "" {
		res.Geometry = row.Geometry(d.Listing.Geometry)
	}
	return res, nil
}

// Locate lists the parcels whose geometry contains the lon/lat point.
func (c *Catalog) Locate(ctx context.Context, req listing.Request) *listing.PageData {
	return c.paginator.Paginate(ctx, c.locate, req)
}

func locateFilter(values url.Values, s *query.Select) error {
	p, err := ParsePoint(url.Values{"lon": values["lon"], "lat": values["lat"]})
	if err != nil {
		return err
	}
	s.Where("geometry", query.Contains, p.Point())
	return nil
}

// Nearest returns the stations closest to the lon/lat point in a single page.
func (c *Catalog) Nearest(ctx context.Context, req listing.Request) *listing.PageData {
	start := time.Now()
	l := c.nearest
	data := &listing.PageData{
		Title:       l.Title,
		Breadcrumbs: l.Breadcrumbs,
		Form:        listing.FormInputs(l.Fields, req.Query),
		Columns:     l.Columns,
		Page:        1,
		Pages:       1,
		Formats:     listing.FormatLinks(req.Path, req.Query, true),
	}

	fail := func(err error) *listing.PageData {
		metrics.RecordListing(l.Name, time.Since(start), string(failure.KindOf(err)))
		logging.Ctx(ctx).Warn().Err(err).Str("listing", l.Name).Msg("Nearest stations failed")
		data.Err = err
		return data
	}

	p, err := ParsePoint(req.Query)
	if err != nil {
		return fail(err)
	}

	rows, err := c.engine.From(WeatherStations).
		OrderByNearest("position", p.Lon, p.Lat).
		Limit(uint64(p.Limit)).
		Run(ctx)
	if err != nil {
		return fail(err)
	}

	credits, err := l.Credit.Clone().Limit(1).Run(ctx)
	if err != nil {
		return fail(err)
	}

	data.Items = make([]hypermedia.Record, len(rows))
	for i, row := range rows {
		data.Items[i] = l.Mapper(row)
	}
	data.Total = len(rows)
	if len(credits) > 0 {
		data.Credit = l.CreditMapper(credits[0])
	}
	data.Features = listing.Features(rows, data.Items, l.Columns, l.Geometry)

	metrics.RecordListing(l.Name, time.Since(start), "")
	return data
}

func crumbs(trail ...listing.Breadcrumb) []listing.Breadcrumb {
	return append([]listing.Breadcrumb{{Label: "Home", Href: "/"}}, trail...)
}
