// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package hypermedia

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Each variant marshals its own fields next to the "@type" tag. The alias
// types drop the MarshalJSON method so the embedded fields are flattened
// without recursion.
type (
	textFields    Text
	numberFields  Number
	booleanFields Boolean
	datumFields   Datum
	gaugeFields   Gauge
	imageFields   Image
	linkFields    Link
	listFields    List
	mapFields     Map
)

func (v Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type Type `json:"@type"`
		textFields
	}{TypeText, textFields(v)})
}

func (v Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type Type `json:"@type"`
		numberFields
	}{TypeNumber, numberFields(v)})
}

func (v Boolean) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type Type `json:"@type"`
		booleanFields
	}{TypeBoolean, booleanFields(v)})
}

func (v Datum) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type Type `json:"@type"`
		datumFields
	}{TypeDatum, datumFields(v)})
}

func (v Gauge) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type Type `json:"@type"`
		gaugeFields
	}{TypeGauge, gaugeFields(v)})
}

func (v Image) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type Type `json:"@type"`
		imageFields
	}{TypeImage, imageFields(v)})
}

func (v Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type Type `json:"@type"`
		linkFields
	}{TypeLink, linkFields(v)})
}

func (v List) MarshalJSON() ([]byte, error) {
	items := v.Value
	if items == nil {
		items = []Value{}
	}
	return json.Marshal(struct {
		Type Type `json:"@type"`
		listFields
	}{TypeList, listFields{Label: v.Label, Value: items}})
}

func (v Map) MarshalJSON() ([]byte, error) {
	entries := v.Value
	if entries == nil {
		entries = map[string]Value{}
	}
	return json.Marshal(struct {
		Type Type `json:"@type"`
		mapFields
	}{TypeMap, mapFields{Label: v.Label, Value: entries}})
}

func (v Undefined) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  Type   `json:"@type"`
		Label string `json:"label"`
		Value any    `json:"value"`
	}{TypeUndefined, v.Label, nil})
}

// envelope is the raw shape shared by every serialized value.
type envelope struct {
	Type  Type            `json:"@type"`
	Value json.RawMessage `json:"value"`
}

// Decode parses a tagged value produced by json.Marshal back into its variant.
func Decode(data []byte) (Value, error) {
	var head envelope
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decoding hypermedia value: %w", err)
	}

	switch head.Type {
	case TypeText:
		var v Text
		return v, unmarshalFields(data, (*textFields)(&v))
	case TypeNumber:
		var v Number
		return v, unmarshalFields(data, (*numberFields)(&v))
	case TypeBoolean:
		var v Boolean
		return v, unmarshalFields(data, (*booleanFields)(&v))
	case TypeDatum:
		var v Datum
		return v, unmarshalFields(data, (*datumFields)(&v))
	case TypeGauge:
		var v Gauge
		return v, unmarshalFields(data, (*gaugeFields)(&v))
	case TypeImage:
		var v Image
		return v, unmarshalFields(data, (*imageFields)(&v))
	case TypeLink:
		var v Link
		return v, unmarshalFields(data, (*linkFields)(&v))
	case TypeList:
		return decodeList(data)
	case TypeMap:
		return decodeMap(data)
	case TypeUndefined:
		var v struct {
			Label string `json:"label"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decoding Undefined: %w", err)
		}
		return Undefined{Label: v.Label}, nil
	default:
		return nil, fmt.Errorf("decoding hypermedia value: unknown @type %q", head.Type)
	}
}

// DecodeRecord parses an object of tagged values keyed by column.
func DecodeRecord(data []byte) (Record, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	rec := make(Record, len(raw))
	for key, item := range raw {
		v, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("decoding record field %q: %w", key, err)
		}
		rec[key] = v
	}
	return rec, nil
}

func unmarshalFields(data []byte, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding hypermedia value: %w", err)
	}
	return nil
}

func decodeList(data []byte) (Value, error) {
	var raw struct {
		Label string            `json:"label"`
		Value []json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding List: %w", err)
	}

	items := make([]Value, 0, len(raw.Value))
	for i, item := range raw.Value {
		v, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("decoding List item %d: %w", i, err)
		}
		items = append(items, v)
	}
	return List{Label: raw.Label, Value: items}, nil
}

func decodeMap(data []byte) (Value, error) {
	var raw struct {
		Label string                     `json:"label"`
		Value map[string]json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding Map: %w", err)
	}

	entries := make(map[string]Value, len(raw.Value))
	for key, item := range raw.Value {
		v, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("decoding Map entry %q: %w", key, err)
		}
		entries[key] = v
	}
	return Map{Label: raw.Label, Value: entries}, nil
}
