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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tombee/fetchwire/pkg/auth"
	fwerrors "github.com/tombee/fetchwire/pkg/errors"
	"github.com/tombee/fetchwire/pkg/fetch"
	"github.com/tombee/fetchwire/pkg/response"
)

// otherErrorType labels error types reported by the server that were not
// named up front.
const otherErrorType = "other"

// Metrics holds the Prometheus collectors fed by its middleware.
type Metrics struct {
	// requests counts settled exchanges by method, status and error type
	requests *prometheus.CounterVec

	// duration observes exchange latency by method and status
	duration *prometheus.HistogramVec

	// inFlight tracks exchanges awaiting a reply
	inFlight prometheus.Gauge

	// errorTypes are reported by name; any other type is "other"
	errorTypes map[string]struct{}
}

// NewMetrics registers the collectors with reg. A nil reg uses the default
// registerer. Client error types and session expiry are always labelled
// by name, as are any errorTypes given here.
func NewMetrics(reg prometheus.Registerer, errorTypes ...string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	known := map[string]struct{}{
		fwerrors.TypeClient:         {},
		fwerrors.TypeDecode:         {},
		fwerrors.TypeNetwork:        {},
		fwerrors.TypeInvalidRequest: {},
		auth.SessionExpired:         {},
	}
	for _, t := range errorTypes {
		known[t] = struct{}{}
	}

	return &Metrics{
		errorTypes: known,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetchwire_requests_total",
				Help: "Total settled requests by method, status and error type",
			},
			[]string{"method", "status", "error_type"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fetchwire_request_duration_seconds",
				Help:    "Request latency by method and status",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fetchwire_requests_in_flight",
				Help: "Number of requests awaiting a reply",
			},
		),
	}
}

// Middleware returns a fetch.Middleware that records every exchange.
func (m *Metrics) Middleware() fetch.Middleware {
	return func(next fetch.Transport, _ fetch.Env) fetch.Transport {
		return func(ctx context.Context, url string, opts fetch.Options) (*response.Response, error) {
			m.inFlight.Inc()
			start := time.Now()

			resp, err := next(ctx, url, opts)

			m.inFlight.Dec()
			method := opts.HTTPMethod()
			status := string(resp.Status)
			m.requests.WithLabelValues(method, status, m.errorTypeLabel(resp.ErrorType())).Inc()
			m.duration.WithLabelValues(method, status).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}

func (m *Metrics) errorTypeLabel(t string) string {
	if t == "" {
		return ""
	}
	if _, ok := m.errorTypes[t]; ok {
		return t
	}
	return otherErrorType
}
