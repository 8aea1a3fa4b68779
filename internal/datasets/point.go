// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package datasets

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"

	"github.com/tomtom215/terroir/internal/failure"
	"github.com/tomtom215/terroir/internal/validation"
)

const (
	// DefaultNearestLimit is the number of stations returned without a limit parameter.
	DefaultNearestLimit = 10
	// MaxNearestLimit caps the limit parameter.
	MaxNearestLimit = 50
)

// PointQuery is a WGS84 location with a result limit.
type PointQuery struct {
	Lon   float64 `validate:"longitude"`
	Lat   float64 `validate:"latitude"`
	Limit int     `validate:"min=1,max=50"`
}

// Point returns the location as a geometry.
func (p PointQuery) Point() *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{p.Lon, p.Lat}).SetSRID(4326)
}

// ParsePoint reads lon, lat and limit. lon and lat are required.
func ParsePoint(values url.Values) (PointQuery, error) {
	rawLon := strings.TrimSpace(values.Get("lon"))
	rawLat := strings.TrimSpace(values.Get("lat"))
	if rawLon == "" || rawLat == "" {
		return PointQuery{}, failure.BadRequest("lon and lat are required")
	}

	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil {
		return PointQuery{}, failure.BadRequest("lon must be a number, got %q", rawLon)
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return PointQuery{}, failure.BadRequest("lat must be a number, got %q", rawLat)
	}

	p := PointQuery{Lon: lon, Lat: lat, Limit: DefaultNearestLimit}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return PointQuery{}, failure.BadRequest("limit must be an integer, got %q", raw)
		}
		p.Limit = n
	}

	if verr := validation.ValidateStruct(&p); verr != nil {
		return PointQuery{}, verr.ToFailure()
	}
	return p, nil
}
