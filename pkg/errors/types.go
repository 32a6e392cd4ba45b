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

package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Error type classifications attached to responses built from Go errors.
// Application errors decoded from a failure envelope carry their own type.
const (
	// TypeClient classifies malformed or ambiguous application error payloads.
	TypeClient = "client.error"

	// TypeDecode classifies response bodies that could not be decoded.
	TypeDecode = "client.decodeError"

	// TypeNetwork classifies exchanges where no reply was received.
	TypeNetwork = "client.networkError"

	// TypeInvalidRequest classifies requests that could not be constructed.
	TypeInvalidRequest = "client.invalidRequest"
)

// ValidationError represents invalid caller input, such as a malformed
// alert directive or request option.
type ValidationError struct {
	// Field identifies which input failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Suggestion provides actionable guidance for fixing the error
	Suggestion string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// ErrorType implements ErrorClassifier.
func (e *ValidationError) ErrorType() string { return TypeInvalidRequest }

// IsRetryable implements ErrorClassifier.
func (e *ValidationError) IsRetryable() bool { return false }

// ConfigError represents configuration problems.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "base_url", "retry.attempts")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// WildcardError is returned when a URL template references a ":name"
// wildcard that has no substitution.
type WildcardError struct {
	// Wildcard is the unmatched name, without the leading colon
	Wildcard string

	// URL is the template that was being expanded
	URL string

	// Candidates are the substitution keys that were supplied
	Candidates []string
}

// Error implements the error interface.
func (e *WildcardError) Error() string {
	candidates := append([]string(nil), e.Candidates...)
	sort.Strings(candidates)
	valid := "none"
	if len(candidates) > 0 {
		valid = ":" + strings.Join(candidates, ", :")
	}
	return fmt.Sprintf("no substitution for wildcard :%s in url %q (valid wildcards: %s)",
		e.Wildcard, e.URL, valid)
}

// ErrorType implements ErrorClassifier.
func (e *WildcardError) ErrorType() string { return TypeInvalidRequest }

// IsRetryable implements ErrorClassifier.
func (e *WildcardError) IsRetryable() bool { return false }

// TransportError represents a failed exchange: the request left the client
// but no reply was read back.
type TransportError struct {
	// Method is the HTTP method of the failed request
	Method string

	// URL is the sanitized request URL
	URL string

	// Retryable reports whether the fault looks transient
	Retryable bool

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("transport error: %v", e.Cause)
	}
	return fmt.Sprintf("transport error: %s %s: %v", e.Method, e.URL, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ErrorType implements ErrorClassifier.
func (e *TransportError) ErrorType() string { return TypeNetwork }

// IsRetryable implements ErrorClassifier.
func (e *TransportError) IsRetryable() bool { return e.Retryable }

// DecodeError represents a response body that did not match its declared
// content type.
type DecodeError struct {
	// ContentType is the content type the body was decoded as
	ContentType string

	// Cause is the parser error
	Cause error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s body: %v", e.ContentType, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// ErrorType implements ErrorClassifier.
func (e *DecodeError) ErrorType() string { return TypeDecode }

// IsRetryable implements ErrorClassifier.
func (e *DecodeError) IsRetryable() bool { return false }
