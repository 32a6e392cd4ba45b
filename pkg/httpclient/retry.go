package httpclient

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// retryTransport sends idempotent requests through a retrying client and
// everything else straight to base.
type retryTransport struct {
	base                    http.RoundTripper
	retrying                http.RoundTripper
	allowNonIdempotentRetry bool
}

func newRetryTransport(base http.RoundTripper, cfg Config, logger *slog.Logger) *retryTransport {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Transport: base}
	rc.RetryMax = cfg.RetryAttempts
	rc.RetryWaitMin = cfg.RetryWaitMin
	rc.RetryWaitMax = cfg.RetryWaitMax
	rc.CheckRetry = retryPolicy
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			logger.DebugContext(req.Context(), "retrying http request",
				"method", req.Method,
				"url", SanitizeURL(req.URL),
				"attempt", attempt,
			)
		}
	}

	return &retryTransport{
		base:                    base,
		retrying:                &retryablehttp.RoundTripper{Client: rc},
		allowNonIdempotentRetry: cfg.AllowNonIdempotentRetry,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.allowNonIdempotentRetry && !isIdempotentMethod(req.Method) {
		return t.base.RoundTrip(req)
	}
	return t.retrying.RoundTrip(req)
}

// isIdempotentMethod reports whether a method is safe to retry blindly.
// PUT and DELETE are idempotent by contract but not always in practice.
func isIdempotentMethod(method string) bool {
	switch strings.ToUpper(method) {
	case "", http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// retryPolicy extends the library policy with 408 Request Timeout.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil && resp != nil && resp.StatusCode == http.StatusRequestTimeout {
		return true, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}
