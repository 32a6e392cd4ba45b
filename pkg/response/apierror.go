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

package response

import (
	"fmt"

	fwerrors "github.com/tombee/fetchwire/pkg/errors"
)

// APIError is a structured application error.
type APIError struct {
	// Type is a dot-delimited classification, each segment camelCased
	// (e.g. "authentication.sessionExpired").
	Type string `json:"type"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// Data carries any structured detail supplied with the error.
	Data any `json:"data,omitempty"`
}

var _ fwerrors.ErrorClassifier = (*APIError)(nil)

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Type == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorType implements errors.ErrorClassifier.
func (e *APIError) ErrorType() string { return e.Type }

// IsRetryable implements errors.ErrorClassifier. Only faults where no reply
// was received are worth retrying.
func (e *APIError) IsRetryable() bool { return e.Type == fwerrors.TypeNetwork }

// FromError builds an APIError from a Go error, using the error's
// classification when it has one. The message is the stringified error.
func FromError(err error) *APIError {
	if err == nil {
		return nil
	}
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}
	return &APIError{
		Type:    fwerrors.Classify(err),
		Message: err.Error(),
	}
}

// Errored returns a new errored response describing err, with no data.
func Errored(err error, prev *Response) *Response {
	next := WithStatus(StatusErrored, prev)
	next.Data = nil
	next.Error = FromError(err)
	return next
}
