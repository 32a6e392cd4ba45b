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

package alert

import (
	"context"
	"log/slog"

	"github.com/tombee/fetchwire/internal/log"
	"github.com/tombee/fetchwire/pkg/fetch"
	"github.com/tombee/fetchwire/pkg/response"
)

// New validates and compiles directives into a middleware. The response
// is never modified.
func New(directives ...Directive) (fetch.Middleware, error) {
	rules := make([]compiled, 0, len(directives))
	for i, d := range directives {
		c, err := compile(i, d)
		if err != nil {
			return nil, err
		}
		rules = append(rules, c)
	}

	return func(next fetch.Transport, env fetch.Env) fetch.Transport {
		logger := log.WithComponent(env.Logger, "alert")

		return func(ctx context.Context, url string, opts fetch.Options) (*response.Response, error) {
			resp, err := next(ctx, url, opts)
			if resp != nil && resp.Status.Settled() && !resp.Meta.Alerted {
				apply(ctx, logger, env.Alerts, rules, resp)
			}
			return resp, err
		}
	}, nil
}

// apply fires the first directive that matches resp.
func apply(ctx context.Context, logger *slog.Logger, sink fetch.AlertSink, rules []compiled, resp *response.Response) {
	for i, rule := range rules {
		ok, err := rule.matches(resp)
		if err != nil {
			logger.WarnContext(ctx, "alert condition failed",
				slog.Int("directive", i),
				slog.String("when", rule.Match.When),
				log.Error(err),
			)
			continue
		}
		if !ok {
			continue
		}

		if rule.Display != nil {
			sink.DisplayAlert(*rule.Display)
		} else {
			sink.DismissAlert(rule.Dismiss)
		}
		return
	}
}
