// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package hypermedia

import (
	"strings"

	"github.com/tomtom215/terroir/internal/failure"
)

// Column is a listing column: Key selects the record member, Label is the header.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Table is the CSV projection of a listing page.
type Table struct {
	Columns []Column
	Rows    []Record
}

// EncodeCSV renders t with one header line of column labels followed by one
// line per row. Every hypermedia cell is written as its quoted display value;
// a missing cell is left empty. Lines are joined with "\n".
func EncodeCSV(t Table) string {
	lines := make([]string, 0, len(t.Rows)+1)

	header := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col.Label
	}
	lines = append(lines, strings.Join(header, ","))

	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			if v, ok := row[col.Key]; ok && v != nil {
				cells[i] = quote(v.Display())
			}
		}
		lines = append(lines, strings.Join(cells, ","))
	}

	return strings.Join(lines, "\n")
}

// EncodeCSVError renders a top-level error as a plain-text body with its status.
func EncodeCSVError(err error) (int, string) {
	return failure.StatusOf(err), failure.MessageOf(err)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
