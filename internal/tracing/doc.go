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

/*
Package tracing provides request identity and OpenTelemetry setup for
fetchwire.

# Request IDs

Every exchange carries a request ID in its context. The HTTP boundary sends
it as X-Request-ID, and the Response records it in Meta.RequestID:

	ctx, id := tracing.EnsureRequestID(ctx)

A correlation ID, when set, is forwarded as X-Correlation-ID so a group of
requests can be tied together.

# Tracer provider

NewProvider builds an SDK tracer provider with the configured exporter:

	provider, err := tracing.NewProvider(ctx, tracing.Config{
	    Exporter:    tracing.ExporterStdout,
	    ServiceName: "fetchwire",
	    SampleRate:  1.0,
	})
	if err != nil {
	    return err
	}
	defer provider.Shutdown(ctx)

	tracer := provider.Tracer("fetchwire")

Outgoing requests carry W3C trace context through InjectHeaders.
*/
package tracing
