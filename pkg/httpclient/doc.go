// Package httpclient builds the HTTP boundary that fetchwire's Transport
// dispatches through.
//
// The returned *http.Client layers, outermost first:
//   - Retries with exponential backoff and jitter (go-retryablehttp),
//     honoring Retry-After on 429/503
//   - Request logging with sanitized URLs (sensitive parameters redacted)
//   - User-Agent header injection
//   - Request and correlation ID propagation from the request context
//
// # Usage
//
//	client, err := httpclient.New(httpclient.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	c := fetch.NewClient(fetch.WithDoer(client))
//
// # Retry Behavior
//
// Transient faults are retried:
//   - HTTP 5xx server errors (except 501)
//   - HTTP 429 and 408
//   - Network errors other than TLS and redirect failures
//
// Only idempotent methods (GET, HEAD, OPTIONS) are retried unless
// Config.AllowNonIdempotentRetry is set. When retries are exhausted the
// last reply is returned as-is, so a failure envelope in a 5xx body still
// reaches the wire-format layer.
//
// # Security
//
//   - Sensitive query parameters (token, api_key, password, ...) and URL
//     passwords are redacted from logs
//   - Authorization headers are never logged
//   - TLS 1.2 minimum with certificate validation enabled
package httpclient
