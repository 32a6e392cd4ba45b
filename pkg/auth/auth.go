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

// Package auth attaches session credentials to outgoing requests and
// tears the session down when the server reports it expired.
package auth

import (
	"context"
	"log/slog"

	"github.com/tombee/fetchwire/internal/log"
	"github.com/tombee/fetchwire/pkg/fetch"
	"github.com/tombee/fetchwire/pkg/response"
)

// SessionExpired is the error type servers use for an expired session.
const SessionExpired = "authentication.sessionExpired"

// AlertContext is the alert context key used for session notices.
const AlertContext = "session"

// ExpiredAlert is shown once when an expired session is torn down.
var ExpiredAlert = fetch.Alert{
	Message: "Your session has expired. Please sign in again.",
	Type:    "warning",
	Context: AlertContext,
	Icon:    "lock",
}

// Authentication sends "Authorization: Bearer <token>" for authenticated
// sessions. When an authenticated call comes back with SessionExpired it
// destroys the session, clears the stored copy, shows ExpiredAlert and
// marks the response alerted.
func Authentication() fetch.Middleware {
	return func(next fetch.Transport, env fetch.Env) fetch.Transport {
		logger := log.WithComponent(env.Logger, "auth")

		return func(ctx context.Context, url string, opts fetch.Options) (*response.Response, error) {
			session := env.Session.Current()
			if session.Authenticated && session.Token != "" {
				opts = opts.WithHeader("Authorization", "Bearer "+session.Token)
			}

			resp, err := next(ctx, url, opts)
			if resp == nil || !session.Authenticated {
				return resp, err
			}
			if resp.ErrorType() != SessionExpired || resp.Meta.Alerted {
				return resp, err
			}

			return expire(ctx, logger, env, session, resp), err
		}
	}
}

func expire(ctx context.Context, logger *slog.Logger, env fetch.Env, session fetch.Session, resp *response.Response) *response.Response {
	logger.InfoContext(ctx, "session expired, signing out",
		slog.String(log.RequestIDKey, resp.Meta.RequestID),
		slog.String("token", log.SanitizeToken(session.Token)),
	)

	env.Dispatch.Dispatch(fetch.Action{Type: fetch.ActionDestroySession})

	if err := env.Session.ClearStoredSession(ctx); err != nil {
		logger.WarnContext(ctx, "failed to clear stored session", log.Error(err))
	}

	env.Alerts.DisplayAlert(ExpiredAlert)

	meta := resp.Meta
	meta.Alerted = true
	return response.WithMeta(meta, resp)
}
