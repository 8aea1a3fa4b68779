// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package listing

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/twpayne/go-geom/encoding/geojson"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/terroir/internal/database/query"
	"github.com/tomtom215/terroir/internal/failure"
	"github.com/tomtom215/terroir/internal/hypermedia"
	"github.com/tomtom215/terroir/internal/logging"
	"github.com/tomtom215/terroir/internal/metrics"
)

// Paginator runs listings with a fixed page size.
type Paginator struct {
	pageSize int
}

// NewPaginator creates a paginator. A non-positive size uses DefaultPageSize.
func NewPaginator(pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Paginator{pageSize: pageSize}
}

// PageSize returns the number of rows per page.
func (p *Paginator) PageSize() int {
	return p.pageSize
}

// Paginate filters the listing query with the request parameters, then
// fetches the page rows, the total count and the credit row concurrently.
// The first failure cancels the other queries; the returned page is then
// degraded and carries the error.
func (p *Paginator) Paginate(ctx context.Context, l *Listing, req Request) *PageData {
	start := time.Now()
	ctx = logging.ContextWithNewCorrelationID(ctx)

	data := &PageData{
		Title:       l.Title,
		Breadcrumbs: l.Breadcrumbs,
		Form:        FormInputs(l.Fields, req.Query),
		Columns:     l.Columns,
		Page:        req.Page,
		Formats:     FormatLinks(req.Path, req.Query, l.Geometry != ""),
	}

	if req.Page < 1 || req.Page > math.MaxInt/p.pageSize {
		return p.fail(ctx, l, data, failure.BadRequest("page %d is out of range", req.Page), start)
	}

	base := l.Query.Clone()
	if filter := l.filter(); filter != nil {
		if err := filter(req.Query, base); err != nil {
			return p.fail(ctx, l, data, err, start)
		}
	}

	var (
		rows   []query.Row
		total  int
		credit query.Row
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = base.Clone().
			Limit(uint64(p.pageSize)).
			Offset(uint64((req.Page - 1) * p.pageSize)).
			Run(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = base.Clone().Count(gctx)
		return err
	})
	if l.Credit != nil {
		g.Go(func() error {
			found, err := l.Credit.Clone().Limit(1).Run(gctx)
			if len(found) > 0 {
				credit = found[0]
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return p.fail(ctx, l, data, err, start)
	}

	data.Total = total
	data.Pages = TotalPages(total, p.pageSize)
	data.Items = make([]hypermedia.Record, len(rows))
	for i, row := range rows {
		data.Items[i] = l.Mapper(row)
	}
	if credit != nil && l.CreditMapper != nil {
		data.Credit = l.CreditMapper(credit)
	}
	if l.Geometry != "" {
		data.Features = Features(rows, data.Items, l.Columns, l.Geometry)
	}

	data.Links = navigation(req.Path, req.Query, req.Page, data.Pages)
	data.Window = window(req.Path, req.Query, req.Page, data.Pages)

	metrics.RecordListing(l.Name, time.Since(start), "")
	logging.Ctx(ctx).Debug().
		Str("listing", l.Name).
		Int("page", req.Page).
		Int("total", total).
		Dur("duration", time.Since(start)).
		Msg("Listing page assembled")
	return data
}

func (p *Paginator) fail(ctx context.Context, l *Listing, data *PageData, err error, start time.Time) *PageData {
	kind := failure.KindOf(err)
	metrics.RecordListing(l.Name, time.Since(start), string(kind))
	logging.Ctx(ctx).Warn().Err(err).Str("listing", l.Name).Str("kind", string(kind)).Msg("Listing failed")

	data.Err = err
	return data
}

// Features converts rows into GeoJSON features. Properties are the display
// values of the mapped records; rows without geometry are skipped.
func Features(rows []query.Row, items []hypermedia.Record, columns []hypermedia.Column, geometry string) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(rows))}
	for i, row := range rows {
		g := row.Geometry(geometry)
		if g == nil {
			continue
		}
		props := make(map[string]any, len(columns))
		for _, col := range columns {
			if v, ok := items[i][col.Key]; ok && v != nil {
				props[col.Key] = v.Display()
			}
		}
		fc.Features = append(fc.Features, &geojson.Feature{Geometry: g, Properties: props})
	}
	return fc
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
