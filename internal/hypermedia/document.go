// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package hypermedia

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/terroir/internal/failure"
)

// Record is one row of a listing, keyed by column.
type Record map[string]Value

// Document is a JSON object payload. The "@id" key is added on encoding.
type Document map[string]any

// ResultKey names the nested member whose failure turns into a Failed object.
const ResultKey = "result"

// Failed is the serialized form of an error.
type Failed struct {
	Type    Type   `json:"@type"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// TypeFailed tags serialized errors.
const TypeFailed Type = "Failed"

// NewFailed converts err into its public serialized form.
func NewFailed(err error) Failed {
	return Failed{
		Type:    TypeFailed,
		Error:   string(failure.KindOf(err)),
		Message: failure.MessageOf(err),
	}
}

// EncodeJSON wraps payload into a {"@id": id, ...} document and returns the
// HTTP status it should be served with.
//
// A payload that is itself an error is served as a Failed object with the
// error's mapped status. A Document whose "result" member is an error keeps
// its other members, gets a Failed result and status 400. Any other object
// payload gets "@id" merged into it; non-object payloads are nested under
// "result".
func EncodeJSON(id string, payload any) (int, []byte, error) {
	if err, ok := payload.(error); ok {
		body, mErr := json.Marshal(struct {
			ID string `json:"@id"`
			Failed
		}{id, NewFailed(err)})
		return failure.StatusOf(err), body, mErr
	}

	status := http.StatusOK
	if doc, ok := payload.(Document); ok {
		if err, isErr := doc[ResultKey].(error); isErr {
			merged := make(Document, len(doc))
			for k, v := range doc {
				merged[k] = v
			}
			merged[ResultKey] = NewFailed(err)
			payload = merged
			status = http.StatusBadRequest
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return http.StatusInternalServerError, nil, fmt.Errorf("encoding document: %w", err)
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil || members == nil {
		members = map[string]json.RawMessage{ResultKey: raw}
	}
	idRaw, err := json.Marshal(id)
	if err != nil {
		return http.StatusInternalServerError, nil, fmt.Errorf("encoding document id: %w", err)
	}
	members["@id"] = idRaw

	body, err := json.Marshal(members)
	if err != nil {
		return http.StatusInternalServerError, nil, fmt.Errorf("encoding document: %w", err)
	}
	return status, body, nil
}
