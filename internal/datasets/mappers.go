// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package datasets

import (
	"net/url"
	"strings"

	"github.com/tomtom215/terroir/internal/database/query"
	"github.com/tomtom215/terroir/internal/hypermedia"
)

var (
	municipalityColumns = []hypermedia.Column{
		{Key: "code", Label: "Code"},
		{Key: "name", Label: "Name"},
		{Key: "department", Label: "Department"},
		{Key: "population", Label: "Population"},
		{Key: "area", Label: "Area"},
	}
	parcelColumns = []hypermedia.Column{
		{Key: "id", Label: "Identifier"},
		{Key: "municipality", Label: "Municipality"},
		{Key: "section", Label: "Section"},
		{Key: "number", Label: "Number"},
		{Key: "area", Label: "Area"},
		{Key: "locality", Label: "Locality"},
	}
	stationColumns = []hypermedia.Column{
		{Key: "id", Label: "Identifier"},
		{Key: "name", Label: "Name"},
		{Key: "department", Label: "Department"},
		{Key: "altitude", Label: "Altitude"},
		{Key: "opened_on", Label: "Opened"},
	}
	productColumns = []hypermedia.Column{
		{Key: "amm", Label: "AMM"},
		{Key: "name", Label: "Name"},
		{Key: "holder", Label: "Holder"},
		{Key: "status", Label: "Status"},
		{Key: "functions", Label: "Functions"},
		{Key: "authorized_on", Label: "Authorized on"},
	}
	varietyColumns = []hypermedia.Column{
		{Key: "code", Label: "Code"},
		{Key: "name", Label: "Name"},
		{Key: "color", Label: "Color"},
		{Key: "origin", Label: "Origin"},
		{Key: "clones", Label: "Certified clones"},
	}
)

func text(row query.Row, col, label string) hypermedia.Value {
	if row[col] == nil {
		return hypermedia.Undefined{Label: label}
	}
	return hypermedia.Text{Label: label, Value: row.String(col)}
}

func number(row query.Row, col, label, unit string) hypermedia.Value {
	n, ok := row.Float(col)
	if !ok {
		return hypermedia.Undefined{Label: label}
	}
	return hypermedia.Number{Label: label, Value: n, Unit: unit}
}

func datum(row query.Row, col, label string) hypermedia.Value {
	t, ok := row.Time(col)
	if !ok {
		return hypermedia.Undefined{Label: label}
	}
	return hypermedia.Datum{Label: label, Value: t}
}

func link(label, value, href string) hypermedia.Value {
	if value == "" {
		return hypermedia.Undefined{Label: label}
	}
	return hypermedia.Link{Label: label, Value: value, Href: href}
}

func resourceHref(base, key string) string {
	return base + "/" + url.PathEscape(key)
}

func mapMunicipality(row query.Row) hypermedia.Record {
	code := row.String("code")
	return hypermedia.Record{
		"code":       link("Code", code, resourceHref(PathMunicipalities, code)),
		"name":       text(row, "name", "Name"),
		"department": text(row, "department", "Department"),
		"population": number(row, "population", "Population", ""),
		"area":       number(row, "area", "Area", "km²"),
	}
}

func mapParcel(row query.Row) hypermedia.Record {
	id := row.String("id")
	municipality := row.String("municipality")
	return hypermedia.Record{
		"id":           link("Identifier", id, resourceHref(PathParcels, id)),
		"municipality": link("Municipality", municipality, resourceHref(PathMunicipalities, municipality)),
		"section":      text(row, "section", "Section"),
		"number":       text(row, "number", "Number"),
		"area":         number(row, "area", "Area", "m²"),
		"locality": hypermedia.Map{Label: "Locality", Value: map[string]hypermedia.Value{
			"name":       text(row, "municipality_name", "Municipality name"),
			"department": text(row, "municipality_department", "Department"),
		}},
	}
}

// Altitudes of mainland stations fall within this range.
const (
	minAltitude = 0
	maxAltitude = 4810
)

func mapStation(row query.Row) hypermedia.Record {
	id := row.String("id")
	record := hypermedia.Record{
		"id":         link("Identifier", id, resourceHref(PathStations, id)),
		"name":       text(row, "name", "Name"),
		"department": text(row, "department", "Department"),
		"opened_on":  datum(row, "opened_on", "Opened"),
	}
	if alt, ok := row.Float("altitude"); ok {
		record["altitude"] = hypermedia.Gauge{
			Label: "Altitude", Value: alt, Min: minAltitude, Max: maxAltitude, Unit: "m", Color: altitudeColor(alt),
		}
	} else {
		record["altitude"] = hypermedia.Undefined{Label: "Altitude"}
	}
	return record
}

func altitudeColor(alt float64) string {
	switch {
	case alt >= 1500:
		return "purple"
	case alt >= 500:
		return "orange"
	default:
		return "green"
	}
}

func mapProduct(row query.Row) hypermedia.Record {
	amm := row.String("amm")

	var functions []hypermedia.Value
	for _, f := range strings.Split(row.String("functions"), "|") {
		if f = strings.TrimSpace(f); f != "" {
			functions = append(functions, hypermedia.Text{Label: "Function", Value: f})
		}
	}

	authorized := hypermedia.Value(hypermedia.Undefined{Label: "Authorized"})
	if status := row.String("status"); status != "" {
		authorized = hypermedia.Boolean{Label: "Authorized", Value: strings.EqualFold(status, "authorized")}
	}

	return hypermedia.Record{
		"amm":           link("AMM", amm, resourceHref(PathProducts, amm)),
		"name":          text(row, "name", "Name"),
		"holder":        text(row, "holder", "Holder"),
		"status":        text(row, "status", "Status"),
		"authorized":    authorized,
		"functions":     hypermedia.List{Label: "Functions", Value: functions},
		"authorized_on": datum(row, "authorized_on", "Authorized on"),
		"withdrawn_on":  datum(row, "withdrawn_on", "Withdrawn on"),
	}
}

func mapVariety(row query.Row) hypermedia.Record {
	code := row.String("code")
	record := hypermedia.Record{
		"code":   link("Code", code, resourceHref(PathVarieties, code)),
		"name":   text(row, "name", "Name"),
		"color":  text(row, "color", "Color"),
		"origin": text(row, "origin", "Origin"),
		"clones": number(row, "clones", "Certified clones", ""),
	}
	if picture := row.String("picture"); picture != "" {
		record["picture"] = hypermedia.Image{Label: "Picture", Value: picture, Alt: row.String("name")}
	}
	return record
}

func mapCredit(row query.Row) hypermedia.Record {
	return hypermedia.Record{
		"source":     text(row, "source", "Source"),
		"licence":    text(row, "licence", "Licence"),
		"url":        link("Website", row.String("url"), row.String("url")),
		"updated_at": datum(row, "updated_at", "Last update"),
	}
}
