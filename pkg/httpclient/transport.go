package httpclient

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tombee/fetchwire/internal/log"
	"github.com/tombee/fetchwire/internal/tracing"
)

// observedTransport sets identifying headers and logs every attempt.
type observedTransport struct {
	base      http.RoundTripper
	userAgent string
	logger    *slog.Logger
}

func newObservedTransport(base http.RoundTripper, userAgent string, logger *slog.Logger) *observedTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &observedTransport{base: base, userAgent: userAgent, logger: logger}
}

// RoundTrip implements http.RoundTripper. The caller's request is cloned
// before headers are added.
func (t *observedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	ctx := req.Context()

	req = req.Clone(ctx)
	if req.Header.Get("User-Agent") == "" && t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	tracing.InjectIntoRequest(ctx, req)

	resp, err := t.base.RoundTrip(req)

	attrs := []slog.Attr{
		slog.String(log.MethodKey, req.Method),
		slog.String(log.URLKey, SanitizeURL(req.URL)),
		slog.Int64(log.DurationKey, time.Since(start).Milliseconds()),
	}
	if id := tracing.RequestIDFrom(ctx); id != "" {
		attrs = append(attrs, slog.String(log.RequestIDKey, id.String()))
	}

	if err != nil {
		t.logger.LogAttrs(ctx, slog.LevelWarn, "http request failed", append(attrs, log.Error(err))...)
		return nil, err
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	t.logger.LogAttrs(ctx, level, "http request", append(attrs, slog.Int(log.HTTPStatusKey, resp.StatusCode))...)

	return resp, nil
}
