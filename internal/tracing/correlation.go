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

package tracing

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// ID identifies a request or a group of related requests.
// It uses RFC 4122 UUID format.
type ID string

type requestKeyType struct{}
type correlationKeyType struct{}

var (
	requestKey     = requestKeyType{}
	correlationKey = correlationKeyType{}
)

// HTTP header names used for propagation.
const (
	// HeaderCorrelationID groups every request issued for one operation.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID identifies a single exchange.
	HeaderRequestID = "X-Request-ID"
)

// NewID generates a new unique identifier.
func NewID() ID {
	return ID(uuid.New().String())
}

// String returns the string representation of the ID.
func (id ID) String() string {
	return string(id)
}

// IsValid checks if the ID parses as a UUID.
func (id ID) IsValid() bool {
	_, err := uuid.Parse(string(id))
	return err == nil && len(id) == 36
}

// WithRequestID stores a request ID in the context.
func WithRequestID(ctx context.Context, id ID) context.Context {
	return context.WithValue(ctx, requestKey, id)
}

// RequestIDFrom returns the request ID stored in ctx, or "".
func RequestIDFrom(ctx context.Context) ID {
	if id, ok := ctx.Value(requestKey).(ID); ok {
		return id
	}
	return ""
}

// WithCorrelationID stores a correlation ID in the context.
func WithCorrelationID(ctx context.Context, id ID) context.Context {
	return context.WithValue(ctx, correlationKey, id)
}

// CorrelationIDFrom returns the correlation ID stored in ctx, or "".
func CorrelationIDFrom(ctx context.Context) ID {
	if id, ok := ctx.Value(correlationKey).(ID); ok {
		return id
	}
	return ""
}

// EnsureRequestID returns ctx carrying a request ID, generating one when
// none is present.
func EnsureRequestID(ctx context.Context) (context.Context, ID) {
	if id := RequestIDFrom(ctx); id != "" {
		return ctx, id
	}
	id := NewID()
	return WithRequestID(ctx, id), id
}

// InjectIntoRequest copies the IDs found in ctx onto the request headers.
// Headers already set by the caller are left alone.
func InjectIntoRequest(ctx context.Context, req *http.Request) {
	if id := RequestIDFrom(ctx); id != "" && req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, id.String())
	}
	if id := CorrelationIDFrom(ctx); id != "" && req.Header.Get(HeaderCorrelationID) == "" {
		req.Header.Set(HeaderCorrelationID, id.String())
	}
}
