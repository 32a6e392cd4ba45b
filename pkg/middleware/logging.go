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

	"github.com/tombee/fetchwire/internal/log"
	"github.com/tombee/fetchwire/pkg/fetch"
	"github.com/tombee/fetchwire/pkg/httpclient"
	"github.com/tombee/fetchwire/pkg/response"
)

// Logging writes one structured line per settled exchange to env.Logger.
func Logging() fetch.Middleware {
	return func(next fetch.Transport, env fetch.Env) fetch.Transport {
		logger := log.WithComponent(env.Logger, "request")

		return func(ctx context.Context, url string, opts fetch.Options) (*response.Response, error) {
			start := time.Now()
			resp, err := next(ctx, url, opts)

			log.LogExchange(ctx, logger, &log.Exchange{
				RequestID:  resp.Meta.RequestID,
				Method:     opts.HTTPMethod(),
				URL:        httpclient.SanitizeRawURL(url),
				Status:     string(resp.Status),
				HTTPStatus: resp.Meta.HTTPStatus,
				ErrorType:  resp.ErrorType(),
				DurationMs: time.Since(start).Milliseconds(),
				Err:        err,
			})
			return resp, err
		}
	}
}
