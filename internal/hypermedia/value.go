// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package hypermedia

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Type is the "@type" tag carried by every serialized value.
type Type string

const (
	TypeText      Type = "Text"
	TypeNumber    Type = "Number"
	TypeBoolean   Type = "Boolean"
	TypeDatum     Type = "Datum"
	TypeGauge     Type = "Gauge"
	TypeImage     Type = "Image"
	TypeLink      Type = "Link"
	TypeList      Type = "List"
	TypeMap       Type = "Map"
	TypeUndefined Type = "Undefined"
)

// Value is a labelled, typed cell of a hypermedia document.
// The set of implementations is closed to this package.
type Value interface {
	// Type returns the variant tag.
	Type() Type
	// Caption returns the human label.
	Caption() string
	// Display returns the plain-text rendering used by CSV and HTML.
	Display() string

	sealed()
}

// Text is a string value, optionally decorated with an icon name.
type Text struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Icon  string `json:"icon,omitempty"`
}

// Number is a numeric value with an optional unit.
type Number struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Boolean is a yes/no value.
type Boolean struct {
	Label string `json:"label"`
	Value bool   `json:"value"`
}

// Datum is a date or timestamp.
type Datum struct {
	Label string    `json:"label"`
	Value time.Time `json:"value"`
}

// Gauge is a number bounded by Min and Max, rendered as a meter.
type Gauge struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Unit  string  `json:"unit,omitempty"`
	Color string  `json:"color,omitempty"`
}

// Image is a picture reference.
type Image struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Alt   string `json:"alt,omitempty"`
}

// Link points to another resource. Value is the link text.
type Link struct {
	Label   string            `json:"label"`
	Value   string            `json:"value"`
	Href    string            `json:"href"`
	Method  string            `json:"method,omitempty"`
	Payload map[string]string `json:"payload,omitempty"`
	Icon    string            `json:"icon,omitempty"`
}

// List is an ordered collection of values.
type List struct {
	Label string  `json:"label"`
	Value []Value `json:"value"`
}

// Map is a keyed collection of values.
type Map struct {
	Label string           `json:"label"`
	Value map[string]Value `json:"value"`
}

// Undefined marks a missing value. It serializes with a null value.
type Undefined struct {
	Label string `json:"label"`
}

func (Text) Type() Type      { return TypeText }
func (Number) Type() Type    { return TypeNumber }
func (Boolean) Type() Type   { return TypeBoolean }
func (Datum) Type() Type     { return TypeDatum }
func (Gauge) Type() Type     { return TypeGauge }
func (Image) Type() Type     { return TypeImage }
func (Link) Type() Type      { return TypeLink }
func (List) Type() Type      { return TypeList }
func (Map) Type() Type       { return TypeMap }
func (Undefined) Type() Type { return TypeUndefined }

func (v Text) Caption() string      { return v.Label }
func (v Number) Caption() string    { return v.Label }
func (v Boolean) Caption() string   { return v.Label }
func (v Datum) Caption() string     { return v.Label }
func (v Gauge) Caption() string     { return v.Label }
func (v Image) Caption() string     { return v.Label }
func (v Link) Caption() string      { return v.Label }
func (v List) Caption() string      { return v.Label }
func (v Map) Caption() string       { return v.Label }
func (v Undefined) Caption() string { return v.Label }

func (Text) sealed()      {}
func (Number) sealed()    {}
func (Boolean) sealed()   {}
func (Datum) sealed()     {}
func (Gauge) sealed()     {}
func (Image) sealed()     {}
func (Link) sealed()      {}
func (List) sealed()      {}
func (Map) sealed()       {}
func (Undefined) sealed() {}

func (v Text) Display() string   { return v.Value }
func (v Number) Display() string { return formatFloat(v.Value) }
func (v Gauge) Display() string  { return formatFloat(v.Value) }
func (v Image) Display() string  { return v.Value }
func (v Link) Display() string   { return v.Value }
func (Undefined) Display() string {
	return ""
}

func (v Boolean) Display() string {
	return strconv.FormatBool(v.Value)
}

// Display renders dates without a clock part when the time is midnight UTC.
func (v Datum) Display() string {
	if v.Value.IsZero() {
		return ""
	}
	t := v.Value.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

func (v List) Display() string {
	parts := make([]string, 0, len(v.Value))
	for _, item := range v.Value {
		if item != nil {
			parts = append(parts, item.Display())
		}
	}
	return strings.Join(parts, ", ")
}

func (v Map) Display() string {
	keys := make([]string, 0, len(v.Value))
	for k := range v.Value {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if item := v.Value[k]; item != nil {
			parts = append(parts, k+": "+item.Display())
		}
	}
	return strings.Join(parts, "; ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
