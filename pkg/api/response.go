// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-identity.
//
// go-identity is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package api

import (
	"encoding/json"
	"net/http"
)

// Status is the closed classification of a backend response. Every call
// through the pipeline resolves to exactly one of these; transport and
// parse failures are classified, never surfaced as Go errors.
type Status string

const (
	// StatusOK is any 2xx response.
	StatusOK Status = "ok"

	// StatusClientError is a 4xx response other than 401, 403 and 404,
	// carrying field-level problems when the backend supplied them.
	StatusClientError Status = "clientError"

	// StatusUnauthorized is a 401 or 403 response.
	StatusUnauthorized Status = "unauthorized"

	// StatusNotFound is a 404 response.
	StatusNotFound Status = "notFound"

	// StatusServerError is a 5xx response or a failed/unparseable exchange.
	StatusServerError Status = "serverError"
)

// Problem is a single structured validation error from the backend.
// A Problem without a Pointer applies to the whole request; one without a
// Detail is a field error of unspecified cause.
type Problem struct {
	// Pointer is a path to the offending field, e.g. "/username".
	Pointer *string `json:"pointer"`

	// Detail is human-readable text describing the problem.
	Detail *string `json:"detail"`
}

// genericProblemMessage is shown for problems the backend did not describe.
const genericProblemMessage = "Something went wrong, try again later."

// Message returns the problem's human-readable text, falling back to a
// generic message when the backend supplied none.
func (p Problem) Message() string {
	if p.Detail != nil && *p.Detail != "" {
		return *p.Detail
	}
	return genericProblemMessage
}

// Response is the classified outcome of one pipeline call.
type Response struct {
	// Status classifies the response.
	Status Status

	// Body is the response body for StatusOK. A missing or unparseable
	// body decodes as an empty JSON object.
	Body json.RawMessage

	// Problems lists field-level validation errors for StatusClientError.
	Problems []Problem

	// Header holds the response headers when an HTTP exchange completed.
	Header http.Header

	// Err records the underlying fault for StatusServerError responses
	// that never produced an HTTP status. Diagnostic only.
	Err error
}

// OK reports whether the call succeeded.
func (r *Response) OK() bool {
	return r.Status == StatusOK
}

// DecodeBody unmarshals a successful response body into T.
func DecodeBody[T any](r *Response) (*T, error) {
	var value T
	if err := json.Unmarshal(r.Body, &value); err != nil {
		return nil, err
	}
	return &value, nil
}

// classify maps an HTTP status code to a response classification.
func classify(code int) Status {
	switch {
	case code >= 200 && code < 300:
		return StatusOK
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return StatusUnauthorized
	case code == http.StatusNotFound:
		return StatusNotFound
	case code >= 400 && code < 500:
		return StatusClientError
	default:
		return StatusServerError
	}
}

// decodeProblems extracts the problem list from a client-error body.
// A missing or invalid body yields an empty list.
func decodeProblems(body []byte) []Problem {
	var envelope struct {
		Problems []Problem `json:"problems"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Problems == nil {
		return []Problem{}
	}
	return envelope.Problems
}
