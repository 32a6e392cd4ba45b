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

package shared

import (
	"errors"
	"fmt"
	"io"
	"os"

	fwerrors "github.com/tombee/fetchwire/pkg/errors"
)

// Exit codes for fetchwire commands
const (
	ExitSuccess       = 0
	ExitRequestFailed = 1 // the server answered with a failure
	ExitUsage         = 2
	ExitConfig        = 3
	ExitErrored       = 4 // no usable reply: network, decode or construction error
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates an error for configuration problems
func NewConfigError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitConfig, Message: msg, Cause: cause}
}

// NewUsageError creates an error for invalid arguments or input files
func NewUsageError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitUsage, Message: msg, Cause: cause}
}

// NewRequestFailedError creates an error for requests the server rejected
func NewRequestFailedError(msg string) *ExitError {
	return &ExitError{Code: ExitRequestFailed, Message: msg}
}

// NewErroredError creates an error for requests that got no usable reply
func NewErroredError(msg string) *ExitError {
	return &ExitError{Code: ExitErrored, Message: msg}
}

// HandleExitError prints err and exits with its code.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	os.Exit(ReportError(os.Stderr, err))
}

// ReportError writes err, and any suggestion it carries, to w and returns
// the exit code it maps to.
func ReportError(w io.Writer, err error) int {
	fmt.Fprintln(w, "Error:", err.Error())
	printSuggestion(w, err)

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var cfgErr *fwerrors.ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfig
	}
	return ExitRequestFailed
}

func printSuggestion(w io.Writer, err error) {
	var validation *fwerrors.ValidationError
	if errors.As(err, &validation) && validation.Suggestion != "" {
		fmt.Fprintf(w, "\nSuggestion: %s\n", validation.Suggestion)
	}
}
