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

// Package middleware provides cross-cutting fetch middleware: request IDs,
// logging, metrics, tracing, client-side rate limiting and jq projection
// of successful payloads.
//
// Each constructor returns a fetch.Middleware that can be placed anywhere in
// a chain. The usual order puts RequestID outermost so every inner layer
// sees the same ID:
//
//	chain := fetch.NewChain(
//	    middleware.RequestID(),
//	    middleware.Logging(),
//	    metrics.Middleware(),
//	    wire.WireFormat(),
//	)
package middleware
