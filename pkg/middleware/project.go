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
	"fmt"
	"log/slog"

	"github.com/tombee/fetchwire/internal/jq"
	"github.com/tombee/fetchwire/internal/log"
	fwerrors "github.com/tombee/fetchwire/pkg/errors"
	"github.com/tombee/fetchwire/pkg/fetch"
	"github.com/tombee/fetchwire/pkg/response"
)

// Project replaces the Data of successful responses with the result of the
// jq expression. Other responses pass through untouched. A runtime jq error
// turns the response into an errored one classified as client.decodeError.
//
// Project must sit outside WireFormat so it sees unwrapped, camelCased data.
func Project(expression string) (fetch.Middleware, error) {
	program, err := jq.Compile(expression, 0, 0)
	if err != nil {
		return nil, &fwerrors.ValidationError{
			Field:   "select",
			Message: fmt.Sprintf("invalid jq expression %q: %v", expression, err),
		}
	}

	return func(next fetch.Transport, env fetch.Env) fetch.Transport {
		return func(ctx context.Context, url string, opts fetch.Options) (*response.Response, error) {
			resp, err := next(ctx, url, opts)
			if !resp.IsSuccess() || !resp.HasData() {
				return resp, err
			}

			projected, runErr := program.Run(ctx, resp.Data)
			if runErr != nil {
				env.Logger.WarnContext(ctx, "projection failed",
					slog.String("expression", program.String()),
					log.Error(runErr),
				)
				return response.Errored(&fwerrors.DecodeError{ContentType: "jq", Cause: runErr}, resp), err
			}
			return response.WithData(projected, resp), err
		}
	}, nil
}
