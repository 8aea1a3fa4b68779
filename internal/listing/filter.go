// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package listing

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/terroir/internal/database/query"
	"github.com/tomtom215/terroir/internal/failure"
	"github.com/tomtom215/terroir/internal/validation"
)

// Match selects how a form field constrains its column.
type Match int

const (
	// MatchExact binds the raw value with "=".
	MatchExact Match = iota
	// MatchLike wraps the value in %...% and binds it with LIKE.
	MatchLike
	// MatchMin binds a number with ">=".
	MatchMin
	// MatchMax binds a number with "<=".
	MatchMax
)

func (m Match) String() string {
	switch m {
	case MatchLike:
		return "like"
	case MatchMin:
		return "min"
	case MatchMax:
		return "max"
	default:
		return "exact"
	}
}

// Field is a filter form input bound to a column.
type Field struct {
	Name  string
	Label string
	Match Match

	// Column defaults to Name.
	Column string

	// Numeric marks an exact field bound to a number column. Its value
	// must parse as a number.
	Numeric bool
}

func (f Field) column() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// ApplyFields builds a Filter from form fields. Empty inputs are skipped.
func ApplyFields(fields []Field) Filter {
	return func(values url.Values, s *query.Select) error {
		for _, f := range fields {
			raw := strings.TrimSpace(values.Get(f.Name))
			if raw == "" {
				continue
			}
			if err := validation.GetValidator().Var(raw, "max=200,filtertext"); err != nil {
				return failure.BadRequest("%s contains invalid characters or is too long", f.Label)
			}

			switch f.Match {
			case MatchLike:
				s.Where(f.column(), query.Like, "%"+raw+"%")
			case MatchMin, MatchMax:
				n, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return failure.BadRequest("%s must be a number, got %q", f.Label, raw)
				}
				op := query.Gte
				if f.Match == MatchMax {
					op = query.Lte
				}
				s.Where(f.column(), op, n)
			default:
				if !f.Numeric {
					s.Where(f.column(), query.Eq, raw)
					continue
				}
				n, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return failure.BadRequest("%s must be a number, got %q", f.Label, raw)
				}
				s.Where(f.column(), query.Eq, n)
			}
		}
		return nil
	}
}

// FormInputs echoes the submitted values into the form fields.
func FormInputs(fields []Field, values url.Values) []FormInput {
	inputs := make([]FormInput, len(fields))
	for i, f := range fields {
		inputs[i] = FormInput{
			Name:  f.Name,
			Label: f.Label,
			Kind:  f.Match.String(),
			Value: values.Get(f.Name),
		}
	}
	return inputs
}
