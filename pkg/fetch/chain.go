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

package fetch

import (
	"context"

	"github.com/tombee/fetchwire/pkg/response"
)

// Transport performs one request and returns its outcome.
//
// The returned Response is never nil. A non-nil error accompanies it only
// when no reply was received at all.
type Transport func(ctx context.Context, url string, opts Options) (*response.Response, error)

// Middleware wraps a Transport. It may change the Options it passes on and
// the Response it hands back, and must not keep state beyond what it
// closed over when it was built.
type Middleware func(next Transport, env Env) Transport

// Compose wraps t in mws. The first middleware is outermost: it sees the
// request first and the response last. Nil entries are skipped.
func Compose(t Transport, env Env, mws ...Middleware) Transport {
	env = env.withDefaults()
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		t = mws[i](t, env)
	}
	return t
}

// Chain is an ordered middleware list.
type Chain []Middleware

// NewChain returns a chain of the given middleware, outermost first.
func NewChain(mws ...Middleware) Chain {
	return append(Chain(nil), mws...)
}

// Then composes the chain around t.
func (c Chain) Then(t Transport, env Env) Transport {
	return Compose(t, env, c...)
}

// Append returns a new chain with mws added innermost. c is not modified.
func (c Chain) Append(mws ...Middleware) Chain {
	next := make(Chain, 0, len(c)+len(mws))
	next = append(next, c...)
	return append(next, mws...)
}
