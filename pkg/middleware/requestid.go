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

	"github.com/tombee/fetchwire/internal/tracing"
	"github.com/tombee/fetchwire/pkg/fetch"
	"github.com/tombee/fetchwire/pkg/response"
)

// RequestID ensures the context carries a request ID, sends it as the
// X-Request-ID header and records it in Meta.RequestID.
//
// A caller-supplied X-Request-ID header is left alone.
func RequestID() fetch.Middleware {
	return func(next fetch.Transport, _ fetch.Env) fetch.Transport {
		return func(ctx context.Context, url string, opts fetch.Options) (*response.Response, error) {
			ctx, id := tracing.EnsureRequestID(ctx)
			if _, ok := opts.Headers[tracing.HeaderRequestID]; !ok {
				opts = opts.WithHeader(tracing.HeaderRequestID, id.String())
			}

			resp, err := next(ctx, url, opts)
			if resp.Meta.RequestID == id.String() {
				return resp, err
			}
			meta := resp.Meta
			meta.RequestID = id.String()
			return response.WithMeta(meta, resp), err
		}
	}
}
