// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package response defines the canonical value describing the outcome of a
// request at any point in its lifecycle.
//
// A Response is immutable by convention: every transition returns a new
// value derived from a previous one, so data and errors carry forward
// across status changes until explicitly overwritten. This lets a consumer
// keep showing the last payload while a retry is in flight.
//
//	r := response.New()                          // uninitialized
//	r = response.WithStatus(response.StatusLoading, r)
//	r = response.WithData(payload, response.WithStatus(response.StatusSuccess, r))
package response

import (
	"encoding/json"
)

// Status is the lifecycle state of a Response.
type Status string

const (
	// StatusUnknown is the zero state of the empty base response.
	StatusUnknown Status = "unknown"
	// StatusUninitialized means no request has been issued yet.
	StatusUninitialized Status = "uninitialized"
	// StatusLoading means a request is in flight.
	StatusLoading Status = "loading"
	// StatusErrored means the exchange could not be completed or decoded.
	StatusErrored Status = "errored"
	// StatusFailure means the server answered with a failure.
	StatusFailure Status = "failure"
	// StatusSuccess means the server answered with a success.
	StatusSuccess Status = "success"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusUnknown, StatusUninitialized, StatusLoading,
		StatusErrored, StatusFailure, StatusSuccess:
		return true
	}
	return false
}

// Settled reports whether s is a terminal outcome of a request.
func (s Status) Settled() bool {
	return s == StatusSuccess || s == StatusFailure || s == StatusErrored
}

// Meta is a side channel for facts about a response that are not part of
// the payload.
type Meta struct {
	// Alerted is set once a failure has been surfaced to the user, so
	// downstream layers do not alert again.
	Alerted bool `json:"alerted,omitempty"`

	// RequestID identifies the exchange that produced the response.
	RequestID string `json:"requestId,omitempty"`

	// HTTPStatus is the status code of the reply, 0 when none was read.
	HTTPStatus int `json:"httpStatus,omitempty"`
}

// Response is the outcome of a request.
//
// The Is* and Has* accessors are derived from Status, Data and Error and
// cannot be set independently.
type Response struct {
	Status Status
	Data   any
	Error  *APIError
	Meta   Meta
}

var empty = Response{Status: StatusUnknown}

// New returns a fresh uninitialized response.
func New() *Response {
	return WithStatus(StatusUninitialized, nil)
}

// Empty returns the base response: status unknown, no data, no error.
func Empty() *Response {
	r := empty
	return &r
}

// derive copies prev, or the empty base when prev is nil.
func derive(prev *Response) *Response {
	if prev == nil {
		return Empty()
	}
	next := *prev
	return &next
}

// WithStatus returns a copy of prev with the given status. Data and Error
// are carried over untouched.
func WithStatus(status Status, prev *Response) *Response {
	next := derive(prev)
	next.Status = status
	return next
}

// WithData returns a copy of prev carrying data. A nil data clears it.
func WithData(data any, prev *Response) *Response {
	next := derive(prev)
	next.Data = data
	return next
}

// WithError returns a copy of prev carrying err. A nil err clears it.
func WithError(err *APIError, prev *Response) *Response {
	next := derive(prev)
	next.Error = err
	return next
}

// WithMeta returns a copy of prev with its side channel replaced.
func WithMeta(meta Meta, prev *Response) *Response {
	next := derive(prev)
	next.Meta = meta
	return next
}

// IsUninitialized reports whether no request has been issued.
func (r *Response) IsUninitialized() bool { return r.Status == StatusUninitialized }

// IsLoading reports whether a request is in flight.
func (r *Response) IsLoading() bool { return r.Status == StatusLoading }

// IsErrored reports whether the exchange could not be completed.
func (r *Response) IsErrored() bool { return r.Status == StatusErrored }

// IsFailure reports whether the server answered with a failure.
func (r *Response) IsFailure() bool { return r.Status == StatusFailure }

// IsSuccess reports whether the server answered with a success.
func (r *Response) IsSuccess() bool { return r.Status == StatusSuccess }

// HasData reports whether a payload is present.
func (r *Response) HasData() bool { return r.Data != nil }

// HasError reports whether an error is present.
func (r *Response) HasError() bool { return r.Error != nil }

// ErrorType returns the classification of the error, or "".
func (r *Response) ErrorType() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Type
}

type wireResponse struct {
	Status          Status    `json:"status"`
	IsUninitialized bool      `json:"isUninitialized"`
	IsLoading       bool      `json:"isLoading"`
	IsErrored       bool      `json:"isErrored"`
	IsFailure       bool      `json:"isFailure"`
	IsSuccess       bool      `json:"isSuccess"`
	HasData         bool      `json:"hasData"`
	HasError        bool      `json:"hasError"`
	Data            any       `json:"data,omitempty"`
	Error           *APIError `json:"error,omitempty"`
	ErrorType       string    `json:"errorType,omitempty"`
	Meta            Meta      `json:"meta"`
}

// MarshalJSON includes the derived flags alongside the stored fields.
func (r Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireResponse{
		Status:          r.Status,
		IsUninitialized: r.IsUninitialized(),
		IsLoading:       r.IsLoading(),
		IsErrored:       r.IsErrored(),
		IsFailure:       r.IsFailure(),
		IsSuccess:       r.IsSuccess(),
		HasData:         r.HasData(),
		HasError:        r.HasError(),
		Data:            r.Data,
		Error:           r.Error,
		ErrorType:       r.ErrorType(),
		Meta:            r.Meta,
	})
}

// UnmarshalJSON reads the stored fields; derived flags are ignored.
func (r *Response) UnmarshalJSON(b []byte) error {
	var w wireResponse
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.Status == "" {
		w.Status = StatusUnknown
	}
	*r = Response{Status: w.Status, Data: w.Data, Error: w.Error, Meta: w.Meta}
	return nil
}
