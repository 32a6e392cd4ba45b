package httpclient

import (
	"crypto/tls"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/tombee/fetchwire/internal/log"
)

// New creates the HTTP boundary with the given configuration.
// A nil logger uses slog.Default().
//
// Returns an error if the configuration is invalid.
func New(cfg Config, logger *slog.Logger) (*http.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = log.WithComponent(log.OrDefault(logger), "httpclient")

	return &http.Client{
		Transport: newLayeredTransport(newBaseTransport(cfg), cfg, logger),
		Timeout:   cfg.Timeout,
	}, nil
}

// newLayeredTransport stacks the custom layers over base. Retries wrap
// logging so every attempt is logged.
func newLayeredTransport(base http.RoundTripper, cfg Config, logger *slog.Logger) http.RoundTripper {
	var rt http.RoundTripper = newObservedTransport(base, cfg.UserAgent, logger)
	if cfg.RetryAttempts > 0 {
		rt = newRetryTransport(rt, cfg, logger)
	}
	return rt
}

func newBaseTransport(cfg Config) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
