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
	"fmt"

	fwerrors "github.com/tombee/fetchwire/pkg/errors"
)

// Exporter names where spans are sent.
type Exporter string

const (
	// ExporterNone disables span export.
	ExporterNone Exporter = "none"

	// ExporterStdout writes spans as JSON to a writer (stderr by default).
	ExporterStdout Exporter = "stdout"

	// ExporterOTLP sends spans to an OTLP/HTTP collector.
	ExporterOTLP Exporter = "otlp"
)

// Config configures the tracer provider.
type Config struct {
	// Exporter selects the span destination. Empty means none.
	Exporter Exporter `yaml:"exporter,omitempty"`

	// Endpoint is the OTLP collector, as host:port or an http(s) URL.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure disables TLS for the OTLP exporter.
	Insecure bool `yaml:"insecure,omitempty"`

	// Headers are sent with every OTLP export.
	Headers map[string]string `yaml:"headers,omitempty"`

	// SampleRate is the fraction of new traces recorded, 0.0 to 1.0.
	// Zero means 1.0.
	SampleRate float64 `yaml:"sample_rate,omitempty"`

	// ServiceName identifies this process in exported spans.
	ServiceName string `yaml:"-"`

	// ServiceVersion is the reported service version.
	ServiceVersion string `yaml:"-"`
}

// Enabled reports whether spans are exported.
func (c Config) Enabled() bool {
	return c.Exporter != "" && c.Exporter != ExporterNone
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Exporter {
	case "", ExporterNone, ExporterStdout:
	case ExporterOTLP:
		if c.Endpoint == "" {
			return &fwerrors.ConfigError{Key: "tracing.endpoint", Reason: "is required for the otlp exporter"}
		}
	default:
		return &fwerrors.ConfigError{
			Key:    "tracing.exporter",
			Reason: fmt.Sprintf("unknown exporter %q (valid: none, stdout, otlp)", c.Exporter),
		}
	}

	if c.SampleRate < 0 || c.SampleRate > 1 {
		return &fwerrors.ConfigError{
			Key:    "tracing.sample_rate",
			Reason: fmt.Sprintf("must be between 0 and 1, got %v", c.SampleRate),
		}
	}
	return nil
}
