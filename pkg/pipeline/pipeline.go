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

// Package pipeline assembles the standard fetchwire middleware chain and
// binds it to a Transport and its collaborators.
//
// The standard chain, outermost first, is:
//
//	RequestID, Logging, [extra...], [Alerts], Authentication, WireFormat
//
// Extra middleware (metrics, tracing, rate limiting, projection) sit
// outside the alert layer so they observe the final, unwrapped Response.
package pipeline

import (
	"context"

	"github.com/tombee/fetchwire/pkg/alert"
	"github.com/tombee/fetchwire/pkg/auth"
	"github.com/tombee/fetchwire/pkg/fetch"
	"github.com/tombee/fetchwire/pkg/middleware"
	"github.com/tombee/fetchwire/pkg/request"
	"github.com/tombee/fetchwire/pkg/response"
	"github.com/tombee/fetchwire/pkg/wire"
)

// Option configures the standard chain.
type Option func(*settings)

type settings struct {
	directives []alert.Directive
	extra      []fetch.Middleware
}

// WithAlerts adds the alert layer with the given directives. Without it
// the chain has no alert layer.
func WithAlerts(directives ...alert.Directive) Option {
	return func(s *settings) { s.directives = append(s.directives, directives...) }
}

// WithMiddleware inserts mws, in order, between Logging and the alert
// layer.
func WithMiddleware(mws ...fetch.Middleware) Option {
	return func(s *settings) { s.extra = append(s.extra, mws...) }
}

// Standard returns the standard chain. It fails only when an alert
// directive is invalid.
func Standard(opts ...Option) (fetch.Chain, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	chain := fetch.NewChain(middleware.RequestID(), middleware.Logging())
	chain = chain.Append(s.extra...)

	if len(s.directives) > 0 {
		alerts, err := alert.New(s.directives...)
		if err != nil {
			return nil, err
		}
		chain = chain.Append(alerts)
	}

	return chain.Append(auth.Authentication(), wire.WireFormat()), nil
}

// Pipeline is a composed Transport ready to issue requests.
type Pipeline struct {
	send fetch.Transport
}

// New composes the standard chain around base with env.
func New(base fetch.Transport, env fetch.Env, opts ...Option) (*Pipeline, error) {
	chain, err := Standard(opts...)
	if err != nil {
		return nil, err
	}
	return &Pipeline{send: chain.Then(base, env)}, nil
}

// Transport returns the composed Transport.
func (p *Pipeline) Transport() fetch.Transport {
	return p.send
}

// Fetch issues one request through the chain.
func (p *Pipeline) Fetch(ctx context.Context, url string, opts fetch.Options) (*response.Response, error) {
	return p.send(ctx, url, opts)
}

// NewDriver returns a Driver that issues url through the chain.
func (p *Pipeline) NewDriver(url string, opts fetch.Options, options ...request.Option) *request.Driver {
	return request.New(p.send, url, opts, options...)
}
