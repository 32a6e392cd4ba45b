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

package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/fetchwire/internal/tracing"
	"github.com/tombee/fetchwire/pkg/fetch"
	"github.com/tombee/fetchwire/pkg/httpclient"
	"github.com/tombee/fetchwire/pkg/response"
)

const instrumentationName = "github.com/tombee/fetchwire/pkg/middleware"

// Tracing starts a client span per exchange and propagates its context in
// the request headers. Failure and errored responses mark the span as an
// error. A nil tp uses the global tracer provider.
func Tracing(tp trace.TracerProvider) fetch.Middleware {
	return func(next fetch.Transport, _ fetch.Env) fetch.Transport {
		provider := tp
		if provider == nil {
			provider = otel.GetTracerProvider()
		}
		tracer := provider.Tracer(instrumentationName)

		return func(ctx context.Context, url string, opts fetch.Options) (*response.Response, error) {
			method := opts.HTTPMethod()
			ctx, span := tracer.Start(ctx, method,
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String("http.request.method", method),
					attribute.String("url.full", httpclient.SanitizeRawURL(url)),
				),
			)
			defer span.End()

			if id := tracing.RequestIDFrom(ctx); id != "" {
				span.SetAttributes(attribute.String("fetchwire.request_id", id.String()))
			}

			traced := opts.Clone()
			if traced.Headers == nil {
				traced.Headers = make(map[string]string, 2)
			}
			tracing.InjectHeaders(ctx, traced.Headers)

			resp, err := next(ctx, url, traced)

			span.SetAttributes(attribute.String("fetchwire.status", string(resp.Status)))
			if resp.Meta.HTTPStatus != 0 {
				span.SetAttributes(attribute.Int("http.response.status_code", resp.Meta.HTTPStatus))
			}
			if err != nil {
				span.RecordError(err)
			}
			if resp.IsFailure() || resp.IsErrored() {
				span.SetAttributes(attribute.String("error.type", resp.ErrorType()))
				span.SetStatus(codes.Error, errorMessage(resp))
			}
			return resp, err
		}
	}
}

func errorMessage(resp *response.Response) string {
	if resp.Error == nil {
		return string(resp.Status)
	}
	return resp.Error.Message
}
