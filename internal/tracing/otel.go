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
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/tombee/fetchwire/internal/tracing/export"
)

// Provider owns the SDK tracer provider, or a no-op one when export is
// disabled.
type Provider struct {
	tp  trace.TracerProvider
	sdk *sdktrace.TracerProvider
}

// ProviderOption adjusts provider construction.
type ProviderOption func(*providerOptions)

type providerOptions struct {
	stdout io.Writer
	extra  []sdktrace.TracerProviderOption
}

// WithStdoutWriter redirects the stdout exporter.
func WithStdoutWriter(w io.Writer) ProviderOption {
	return func(o *providerOptions) { o.stdout = w }
}

// WithSDKOptions passes extra options to the SDK tracer provider.
func WithSDKOptions(opts ...sdktrace.TracerProviderOption) ProviderOption {
	return func(o *providerOptions) { o.extra = append(o.extra, opts...) }
}

// NewProvider builds a tracer provider for cfg and installs it, with the
// W3C propagator, as the global provider.
func NewProvider(ctx context.Context, cfg Config, opts ...ProviderOption) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o providerOptions
	for _, opt := range opts {
		opt(&o)
	}

	otel.SetTextMapPropagator(W3CPropagator())

	if !cfg.Enabled() && len(o.extra) == 0 {
		return &Provider{tp: noop.NewTracerProvider()}, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	allOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(NewSampler(cfg.SampleRate)),
	}

	exporter, err := newExporter(ctx, cfg, o)
	if err != nil {
		return nil, err
	}
	if exporter != nil {
		allOpts = append(allOpts, sdktrace.WithBatcher(exporter))
	}
	allOpts = append(allOpts, o.extra...)

	tp := sdktrace.NewTracerProvider(allOpts...)
	otel.SetTracerProvider(tp)

	return &Provider{tp: tp, sdk: tp}, nil
}

func newExporter(ctx context.Context, cfg Config, o providerOptions) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case ExporterStdout:
		return export.Console(o.stdout)
	case ExporterOTLP:
		return export.OTLP(ctx, cfg.Endpoint, cfg.Insecure, cfg.Headers)
	default:
		return nil, nil
	}
}

// Tracer returns a tracer for the given instrumentation scope.
func (p *Provider) Tracer(name string) trace.Tracer {
	return p.tp.Tracer(name)
}

// TracerProvider returns the underlying provider.
func (p *Provider) TracerProvider() trace.TracerProvider {
	return p.tp
}

// Shutdown flushes and stops span export.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.sdk == nil {
		return nil
	}
	return p.sdk.Shutdown(ctx)
}
