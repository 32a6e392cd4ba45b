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

package log

import (
	"context"
	"log/slog"
)

// Exchange describes one settled request for logging purposes.
type Exchange struct {
	// RequestID identifies the exchange.
	RequestID string

	// Method is the HTTP method.
	Method string

	// URL is the request URL; callers must sanitize it.
	URL string

	// Status is the response lifecycle status (success, failure, errored).
	Status string

	// HTTPStatus is the reply status code, 0 when no reply was read.
	HTTPStatus int

	// ErrorType is the response error classification, if any.
	ErrorType string

	// DurationMs is the duration of the exchange in milliseconds.
	DurationMs int64

	// Err is a transport-level error, if the exchange produced one.
	Err error
}

// LogExchange logs a settled exchange. Successes log at debug, failures at
// info, and errored exchanges at warn.
func LogExchange(ctx context.Context, logger *slog.Logger, ex *Exchange) {
	attrs := []slog.Attr{
		slog.String("event", "request_settled"),
		slog.String(MethodKey, ex.Method),
		slog.String(URLKey, ex.URL),
		slog.String(StatusKey, ex.Status),
		slog.Int64(DurationKey, ex.DurationMs),
	}

	if ex.RequestID != "" {
		attrs = append(attrs, slog.String(RequestIDKey, ex.RequestID))
	}
	if ex.HTTPStatus != 0 {
		attrs = append(attrs, slog.Int(HTTPStatusKey, ex.HTTPStatus))
	}
	if ex.ErrorType != "" {
		attrs = append(attrs, slog.String(ErrorTypeKey, ex.ErrorType))
	}
	if ex.Err != nil {
		attrs = append(attrs, Error(ex.Err))
	}

	level := slog.LevelDebug
	switch ex.Status {
	case "failure":
		level = slog.LevelInfo
	case "errored":
		level = slog.LevelWarn
	}

	logger.LogAttrs(ctx, level, "request settled", attrs...)
}
