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

package fetch

import (
	"maps"
	"net/http"
	"strings"
)

// ContentType selects how bodies are encoded and replies decoded.
type ContentType string

const (
	// ContentTypeJSON encodes and decodes JSON. It is the default.
	ContentTypeJSON ContentType = "json"

	// ContentTypeText sends and reads plain text.
	ContentTypeText ContentType = "text"
)

// MIME returns the Content-Type header value for c.
func (c ContentType) MIME() string {
	if c == "" || c == ContentTypeJSON {
		return "application/json"
	}
	return "text/plain"
}

// Options describe a single request.
//
// Options are treated as values: middleware clone before changing anything
// and pass the clone to the next Transport.
type Options struct {
	// Method is the HTTP method. Empty means GET.
	Method string

	// Body is the request payload. Nil, "", empty maps, empty slices and
	// zero-length raw JSON are sent as no body.
	Body any

	// Headers are sent as-is and win over derived headers.
	Headers map[string]string

	// Params are appended as the query string. Slice values repeat the key.
	Params map[string]any

	// Wildcards substitute ":name" segments in the URL.
	Wildcards map[string]string

	// ContentType defaults to JSON.
	ContentType ContentType
}

// Clone returns a copy of o whose maps can be modified freely.
func (o Options) Clone() Options {
	o.Headers = maps.Clone(o.Headers)
	o.Params = maps.Clone(o.Params)
	o.Wildcards = maps.Clone(o.Wildcards)
	return o
}

// WithHeader returns a copy of o with the header set.
func (o Options) WithHeader(key, value string) Options {
	next := o.Clone()
	if next.Headers == nil {
		next.Headers = make(map[string]string, 1)
	}
	next.Headers[key] = value
	return next
}

// HTTPMethod returns the upper-cased method, GET when unset.
func (o Options) HTTPMethod() string {
	if o.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(o.Method)
}

// IsJSON reports whether the exchange uses JSON.
func (o Options) IsJSON() bool {
	return o.ContentType == "" || o.ContentType == ContentTypeJSON
}
