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

// Package wire converts between the snake_case wire format and the
// camelCase caller format, and unwraps the {"ok", "data", "error"}
// envelope into a Response.
package wire

import (
	"context"
	"log/slog"

	"github.com/tombee/fetchwire/internal/log"
	fwerrors "github.com/tombee/fetchwire/pkg/errors"
	"github.com/tombee/fetchwire/pkg/fetch"
	"github.com/tombee/fetchwire/pkg/response"
)

// WireFormat snake_cases outgoing body and param keys, and unwraps the
// reply envelope with data re-keyed to camelCase.
//
// Errored responses and non-JSON exchanges pass through untouched.
func WireFormat() fetch.Middleware {
	return func(next fetch.Transport, env fetch.Env) fetch.Transport {
		logger := log.WithComponent(env.Logger, "wire")

		return func(ctx context.Context, url string, opts fetch.Options) (*response.Response, error) {
			resp, err := next(ctx, url, outgoing(ctx, logger, opts))
			if err != nil || resp == nil || resp.IsErrored() || !opts.IsJSON() {
				return resp, err
			}
			return Unwrap(resp), nil
		}
	}
}

func outgoing(ctx context.Context, logger *slog.Logger, opts fetch.Options) fetch.Options {
	next := opts.Clone()

	if len(next.Params) > 0 {
		next.Params = snakeParams(next.Params)
	}

	if next.Body != nil && next.IsJSON() {
		body, err := normalize(next.Body)
		if err != nil {
			// Left as-is; the transport reports it as an invalid request.
			log.Trace(ctx, logger, "body not normalizable", log.Error(err))
			return next
		}
		next.Body = ToSnake(body)
	}
	return next
}

func snakeParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[snakeKey(k)] = ToSnake(v)
	}
	return out
}

// Unwrap applies the reply envelope to resp. The status settled by the
// transport is kept; the envelope only supplies data and error, except
// that an ambiguous envelope makes the response errored.
func Unwrap(resp *response.Response) *response.Response {
	switch env := ParseEnvelope(resp.Data).(type) {
	case Success:
		out := response.WithStatus(resp.Status, resp)
		out.Data = ToCamel(env.Data)
		out.Error = nil
		return out

	case Failure:
		out := response.WithStatus(resp.Status, resp)
		out.Error = ExtractError(env.Error)
		out.Data = nil
		if env.HasData {
			out.Data = ToCamel(env.Data)
		}
		return out

	case Ambiguous:
		out := response.WithStatus(response.StatusErrored, resp)
		out.Data = nil
		out.Error = &response.APIError{Type: fwerrors.TypeClient, Message: env.Reason}
		return out

	default:
		out := response.WithData(nil, resp)
		out.Error = nil
		return out
	}
}
