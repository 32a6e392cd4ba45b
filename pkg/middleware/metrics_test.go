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
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/tombee/fetchwire/internal/testing/mock"
	fwerrors "github.com/tombee/fetchwire/pkg/errors"
	"github.com/tombee/fetchwire/pkg/fetch"
)

func TestMetrics_CountsByStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "user.notFound")

	tr := mock.NewTransport(
		mock.Success(nil),
		mock.Success(nil),
		mock.Failure("user.notFound", "missing"),
	)
	send := fetch.Compose(tr.Perform, fetch.Env{}, m.Middleware())

	for i := 0; i < 3; i++ {
		_, _ = send(context.Background(), "https://api.example.com", fetch.Options{})
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "success", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "failure", "user.notFound")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestMetrics_BucketsUnnamedErrorTypes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "user.notFound")

	tr := mock.NewTransport(
		mock.Failure("user.notFound", "missing"),
		mock.Failure("server.shard42Exploded", "boom"),
		mock.Failure("server.shard43Exploded", "boom"),
		mock.Failure(fwerrors.TypeNetwork, "down"),
	)
	send := fetch.Compose(tr.Perform, fetch.Env{}, m.Middleware())

	for i := 0; i < 4; i++ {
		_, _ = send(context.Background(), "https://api.example.com", fetch.Options{})
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "failure", "user.notFound")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "failure", "other")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "failure", fwerrors.TypeNetwork)))
	assert.Equal(t, 3, testutil.CollectAndCount(m.requests))
}

func TestNewMetrics_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	assert.Panics(t, func() { NewMetrics(reg) }, "second registration on the same registry must conflict")
}
