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

	"golang.org/x/time/rate"

	"github.com/tombee/fetchwire/internal/log"
	fwerrors "github.com/tombee/fetchwire/pkg/errors"
	"github.com/tombee/fetchwire/pkg/fetch"
	"github.com/tombee/fetchwire/pkg/httpclient"
	"github.com/tombee/fetchwire/pkg/response"
)

// RateLimit waits for a token from limiter before passing the request on.
// The limiter is shared by every transport the middleware wraps.
//
// When the wait fails (context done, or a deadline too close to ever get a
// token) the request is not sent: an errored Response is returned together
// with a *errors.TransportError.
func RateLimit(limiter *rate.Limiter) fetch.Middleware {
	return func(next fetch.Transport, env fetch.Env) fetch.Transport {
		return func(ctx context.Context, url string, opts fetch.Options) (*response.Response, error) {
			if err := limiter.Wait(ctx); err != nil {
				te := &fwerrors.TransportError{
					Method: opts.HTTPMethod(),
					URL:    httpclient.SanitizeRawURL(url),
					Cause:  err,
				}
				env.Logger.DebugContext(ctx, "rate limit wait failed", log.Error(err))
				return response.Errored(te, nil), te
			}
			return next(ctx, url, opts)
		}
	}
}

// NewLimiter returns a token bucket refilled at rps with the given burst.
// A burst below one is raised to one.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
