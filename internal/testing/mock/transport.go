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

// Package mock provides recording and scripted stand-ins for the
// collaborators fetchwire's middleware talk to.
package mock

import (
	"context"
	"sync"

	"github.com/tombee/fetchwire/pkg/fetch"
	"github.com/tombee/fetchwire/pkg/response"
)

// Reply is one scripted Transport outcome.
type Reply struct {
	Response *response.Response
	Err      error
}

// Call records one Transport invocation.
type Call struct {
	URL  string
	Opts fetch.Options
}

// Transport replays scripted replies in order, repeating the last one once
// the script runs out. When Gate is set each call blocks until a value is
// received from it or the context ends.
type Transport struct {
	mu      sync.Mutex
	replies []Reply
	calls   []Call

	// Gate, when non-nil, holds every call until it is signalled.
	Gate chan struct{}

	// Started, when non-nil, receives a value as each call begins.
	Started chan struct{}
}

// NewTransport returns a Transport scripted with replies.
func NewTransport(replies ...Reply) *Transport {
	return &Transport{replies: replies}
}

// Respond appends replies to the script.
func (t *Transport) Respond(replies ...Reply) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replies = append(t.replies, replies...)
}

// Perform implements fetch.Transport.
func (t *Transport) Perform(ctx context.Context, url string, opts fetch.Options) (*response.Response, error) {
	t.mu.Lock()
	index := len(t.calls)
	t.calls = append(t.calls, Call{URL: url, Opts: opts})
	t.mu.Unlock()

	if t.Started != nil {
		t.Started <- struct{}{}
	}
	if t.Gate != nil {
		select {
		case <-t.Gate:
		case <-ctx.Done():
			return response.Errored(ctx.Err(), nil), ctx.Err()
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.replies) == 0 {
		return response.WithStatus(response.StatusSuccess, nil), nil
	}
	if index >= len(t.replies) {
		index = len(t.replies) - 1
	}
	r := t.replies[index]
	return r.Response, r.Err
}

// Calls returns the recorded invocations.
func (t *Transport) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Call(nil), t.calls...)
}

// CallCount returns the number of invocations so far.
func (t *Transport) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

// Success builds a settled success reply carrying data.
func Success(data any) Reply {
	return Reply{Response: response.WithStatus(response.StatusSuccess, response.WithData(data, nil))}
}

// Failure builds a settled failure reply with the given error type.
func Failure(errorType, message string) Reply {
	return Reply{Response: response.WithStatus(response.StatusFailure,
		response.WithError(&response.APIError{Type: errorType, Message: message}, nil))}
}
