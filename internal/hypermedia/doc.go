// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

/*
Package hypermedia models the typed, labelled values served by every endpoint
and encodes them as JSON documents or CSV tables.

A Value is one of Text, Number, Boolean, Datum, Gauge, Image, Link, List, Map
or Undefined. In JSON each value is an object tagged with "@type":

	{"@type":"Number","label":"Area","value":1234.5,"unit":"m²"}

Documents are wrapped with the request URL under "@id". Errors become
{"@type":"Failed","error":"NotFound","message":"..."}.
*/
package hypermedia
