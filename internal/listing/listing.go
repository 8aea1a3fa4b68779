// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package listing

import (
	"net/url"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/tomtom215/terroir/internal/database/query"
	"github.com/tomtom215/terroir/internal/hypermedia"
)

// DefaultPageSize is the number of rows per page when none is configured.
const DefaultPageSize = 150

// windowRadius is the number of page links shown on each side of the current page.
const windowRadius = 6

// Filter applies request parameters to the base query.
type Filter func(values url.Values, s *query.Select) error

// Mapper turns a result row into a record of display values.
type Mapper func(row query.Row) hypermedia.Record

// Breadcrumb is one step of the navigation trail.
type Breadcrumb struct {
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`
}

// Listing declares a paginated dataset view. Listings are built once at
// startup and shared by all requests; Query and Credit are cloned before use.
type Listing struct {
	// Name identifies the listing in logs and metrics.
	Name        string
	Title       string
	Breadcrumbs []Breadcrumb

	// Fields are the form inputs. Without an explicit Filter they are
	// applied to the query by ApplyFields.
	Fields []Field
	Filter Filter

	Query  *query.Select
	Credit *query.Select

	Columns      []hypermedia.Column
	Mapper       Mapper
	CreditMapper Mapper

	// Geometry names the row column rendered as GeoJSON features.
	Geometry string
}

func (l *Listing) filter() Filter {
	if l.Filter != nil {
		return l.Filter
	}
	if len(l.Fields) > 0 {
		return ApplyFields(l.Fields)
	}
	return nil
}

// Links holds the navigation links. Empty members are omitted.
type Links struct {
	First    string `json:"first,omitempty"`
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
	Last     string `json:"last,omitempty"`
}

// PageLink is one entry of the page window.
type PageLink struct {
	Number  int    `json:"number"`
	Href    string `json:"href"`
	Current bool   `json:"current,omitempty"`
}

// FormatLink points to the same page in another representation.
type FormatLink struct {
	Format string `json:"format"`
	Href   string `json:"href"`
}

// FormInput is a form field with the value submitted in the request.
type FormInput struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
	Value string `json:"value,omitempty"`
}

// PageData is the format-agnostic result of a listing request. When Err is
// set the table members are empty and only the page chrome is meaningful.
type PageData struct {
	Title       string
	Breadcrumbs []Breadcrumb
	Form        []FormInput

	Columns []hypermedia.Column
	Items   []hypermedia.Record
	Total   int
	Page    int
	Pages   int
	Credit  hypermedia.Record

	Links   Links
	Window  []PageLink
	Formats []FormatLink

	Features *geojson.FeatureCollection

	Err error
}

// Failed reports whether the page is degraded.
func (p *PageData) Failed() bool {
	return p.Err != nil
}
