package httpclient

import (
	"fmt"
	"time"

	fwerrors "github.com/tombee/fetchwire/pkg/errors"
)

// Config configures the HTTP boundary.
type Config struct {
	// Timeout is the total request timeout (includes retries).
	// Default: 30s. Must be > 0.
	Timeout time.Duration

	// RetryAttempts is the maximum number of retries after the first try
	// (0 = no retries). Default: 3.
	RetryAttempts int

	// RetryWaitMin is the minimum delay between attempts.
	// Default: 100ms. Must be > 0 if RetryAttempts > 0.
	RetryWaitMin time.Duration

	// RetryWaitMax caps the delay between attempts.
	// Default: 10s. Must be >= RetryWaitMin.
	RetryWaitMax time.Duration

	// UserAgent is the User-Agent header value. Required.
	UserAgent string

	// AllowNonIdempotentRetry enables retry for POST, PUT, PATCH and DELETE.
	// Only set this when the server deduplicates with Idempotency-Key headers.
	AllowNonIdempotentRetry bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:       30 * time.Second,
		RetryAttempts: 3,
		RetryWaitMin:  100 * time.Millisecond,
		RetryWaitMax:  10 * time.Second,
		UserAgent:     "fetchwire/1.0",
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return &fwerrors.ConfigError{Key: "timeout", Reason: fmt.Sprintf("must be > 0, got %v", c.Timeout)}
	}

	if c.RetryAttempts < 0 {
		return &fwerrors.ConfigError{Key: "retry.attempts", Reason: fmt.Sprintf("must be >= 0, got %d", c.RetryAttempts)}
	}

	if c.RetryAttempts > 0 {
		if c.RetryWaitMin <= 0 {
			return &fwerrors.ConfigError{
				Key:    "retry.wait_min",
				Reason: fmt.Sprintf("must be > 0 when retries are enabled, got %v", c.RetryWaitMin),
			}
		}
		if c.RetryWaitMax < c.RetryWaitMin {
			return &fwerrors.ConfigError{
				Key:    "retry.wait_max",
				Reason: fmt.Sprintf("(%v) must be >= wait_min (%v)", c.RetryWaitMax, c.RetryWaitMin),
			}
		}
	}

	if c.UserAgent == "" {
		return &fwerrors.ConfigError{Key: "user_agent", Reason: "is required and must be non-empty"}
	}

	return nil
}
