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

// Package request drives a single logical call site: it holds the current
// Response, guards against overlapping requests, and notifies effects when
// the status changes.
package request

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tombee/fetchwire/internal/log"
	"github.com/tombee/fetchwire/pkg/fetch"
	"github.com/tombee/fetchwire/pkg/response"
)

// Effect runs once for each status change, with the status it changed
// from. Effects run outside the driver's lock and may call back into it.
type Effect func(ctx context.Context, resp *response.Response, prev response.Status)

// Option configures a Driver.
type Option func(*Driver)

// WithInitial starts the driver from a previously held response, as when
// a view is re-created over existing state.
func WithInitial(resp *response.Response) Option {
	return func(d *Driver) {
		if resp != nil {
			d.current = resp
		}
	}
}

// WithEffects registers status-change hooks.
func WithEffects(effects ...Effect) Option {
	return func(d *Driver) {
		d.effects = append(d.effects, effects...)
	}
}

// WithLogger sets the driver's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithStaleDrop discards results of requests superseded by Reset. Without
// it the last result to arrive wins.
func WithStaleDrop() Option {
	return func(d *Driver) {
		d.staleDrop = true
	}
}

// Driver holds the state of one call site. It is safe for concurrent use.
type Driver struct {
	send      fetch.Transport
	effects   []Effect
	logger    *slog.Logger
	staleDrop bool

	mu       sync.Mutex
	url      string
	opts     fetch.Options
	current  *response.Response
	observed response.Status
	seq      uint64

	// sawLoading is set once a request has started in this driver's
	// lifetime; autoRetried once the reload retry has been spent.
	sawLoading  bool
	autoRetried bool
}

// New creates a Driver that sends url and opts through send.
func New(send fetch.Transport, url string, opts fetch.Options, options ...Option) *Driver {
	d := &Driver{
		send:    send,
		url:     url,
		opts:    opts.Clone(),
		current: response.New(),
	}
	for _, opt := range options {
		opt(d)
	}
	d.logger = log.WithComponent(log.OrDefault(d.logger), "request")
	d.observed = d.current.Status
	return d
}

// Current returns the current response.
func (d *Driver) Current() *response.Response {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Retry sends the request. While a request is in flight it returns the
// in-flight response without sending again. A restored loading response
// has no request behind it and does not count as in flight.
//
// The returned error is non-nil only when no reply was received.
func (d *Driver) Retry(ctx context.Context) (*response.Response, error) {
	d.mu.Lock()
	if d.current.IsLoading() && d.sawLoading {
		current, url := d.current, d.url
		d.mu.Unlock()
		log.Trace(ctx, d.logger, "retry ignored while loading", slog.String(log.URLKey, url))
		return current, nil
	}

	loading := response.WithStatus(response.StatusLoading, d.current)
	d.current = loading
	d.sawLoading = true
	d.seq++
	seq := d.seq
	url, opts := d.url, d.opts.Clone()
	pending := d.observe(loading)
	d.mu.Unlock()

	d.run(ctx, pending)

	result, err := d.send(ctx, url, opts)
	if result == nil {
		result = response.Errored(err, nil)
	}

	d.mu.Lock()
	if d.staleDrop && seq != d.seq {
		current := d.current
		d.mu.Unlock()
		d.logger.DebugContext(ctx, "dropping superseded result",
			slog.String(log.URLKey, url),
			slog.String(log.StatusKey, string(result.Status)),
		)
		return current, err
	}

	settled := settle(d.current, result)
	d.current = settled
	pending = d.observe(settled)
	d.mu.Unlock()

	d.run(ctx, pending)
	return settled, err
}

// Mount starts the driver. A fresh driver sends its first request, as
// does one restored onto a loading response it did not start. A driver
// restored onto a failure it never saw loading retries once, without the
// stale failure reaching effects. Otherwise the current response is
// returned unchanged.
func (d *Driver) Mount(ctx context.Context) (*response.Response, error) {
	d.mu.Lock()
	switch {
	case d.current.IsUninitialized():
		d.mu.Unlock()
		return d.Retry(ctx)

	case d.current.IsLoading() && !d.sawLoading:
		url := d.url
		d.mu.Unlock()
		d.logger.DebugContext(ctx, "resending restored request", slog.String(log.URLKey, url))
		return d.Retry(ctx)

	case d.current.IsFailure() && !d.sawLoading && !d.autoRetried:
		d.autoRetried = true
		url := d.url
		d.mu.Unlock()
		d.logger.DebugContext(ctx, "retrying restored failure", slog.String(log.URLKey, url))
		return d.Retry(ctx)
	}
	current := d.current
	d.mu.Unlock()
	return current, nil
}

// Reset points the driver at a new request and returns it to
// uninitialized. A request already in flight is not cancelled.
func (d *Driver) Reset(url string, opts fetch.Options) {
	d.mu.Lock()
	d.url = url
	d.opts = opts.Clone()
	d.seq++
	d.current = response.New()
	pending := d.observe(d.current)
	d.mu.Unlock()

	d.run(context.Background(), pending)
}

// transition is an effect invocation captured under the lock.
type transition struct {
	resp *response.Response
	prev response.Status
}

// observe records resp as seen and reports a transition when its status
// differs from the last one seen. Must hold d.mu.
func (d *Driver) observe(resp *response.Response) *transition {
	if resp.Status == d.observed {
		return nil
	}
	t := &transition{resp: resp, prev: d.observed}
	d.observed = resp.Status
	return t
}

func (d *Driver) run(ctx context.Context, t *transition) {
	if t == nil {
		return
	}
	for _, effect := range d.effects {
		effect(ctx, t.resp, t.prev)
	}
}

// settle overlays a transport result onto the loading response: status
// from the result, and data and error taken when present, cleared when not.
func settle(loading, result *response.Response) *response.Response {
	next := response.WithStatus(result.Status, loading)
	next.Data = result.Data
	next.Error = result.Error
	next.Meta = result.Meta
	return next
}
