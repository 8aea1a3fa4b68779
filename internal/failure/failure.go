// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

// Package failure defines the public error taxonomy of the API.
//
// Inner layers return a *Error carrying a Kind; only the renderers turn the
// Kind into an HTTP status. Wrapped causes stay available through errors.As
// and errors.Unwrap but are never shown to clients.
package failure

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the public name of an error category.
type Kind string

const (
	KindBadRequest   Kind = "BadRequest"
	KindUnauthorized Kind = "Unauthorized"
	KindForbidden    Kind = "Forbidden"
	KindNotFound     Kind = "NotFound"
	KindConflict     Kind = "Conflict"
	KindError        Kind = "Error"
)

// Error is a categorized error. Message is safe to expose; Err is not.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, failure.ErrNotFound)
// holds for every not-found error regardless of its message.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind && other.Message == "" && other.Err == nil
}

// Sentinels for errors.Is comparisons.
var (
	ErrBadRequest = &Error{Kind: KindBadRequest}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrQuery      = &Error{Kind: KindError}
)

// BadRequest reports malformed client input.
func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a lookup with no matching record.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Query wraps a database failure. The cause is kept for logs only.
func Query(err error) *Error {
	return &Error{Kind: KindError, Message: "query failed", Err: err}
}

// Wrap categorizes err under kind with a public message.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindError.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindError
}

// MessageOf returns the public message of err. Uncategorized errors get a
// generic message so internal details never reach a client.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal error"
}

// statusByKind maps error names to HTTP statuses. Unknown kinds are 500.
var statusByKind = map[Kind]int{
	KindBadRequest:   http.StatusBadRequest,
	KindUnauthorized: http.StatusUnauthorized,
	KindForbidden:    http.StatusForbidden,
	KindNotFound:     http.StatusNotFound,
	KindConflict:     http.StatusConflict,
}

// Status maps an error kind to its HTTP status code.
func Status(kind Kind) int {
	if code, ok := statusByKind[kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// StatusOf maps err to its HTTP status code.
func StatusOf(err error) int {
	return Status(KindOf(err))
}
