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

package alert

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	fwerrors "github.com/tombee/fetchwire/pkg/errors"
	"github.com/tombee/fetchwire/pkg/fetch"
	"github.com/tombee/fetchwire/pkg/response"
)

// Match selects responses by status or by error type, never both.
type Match struct {
	Status    response.Status `yaml:"status,omitempty" json:"status,omitempty"`
	ErrorType string          `yaml:"error_type,omitempty" json:"errorType,omitempty"`

	// When is an optional boolean expression that must also hold.
	When string `yaml:"when,omitempty" json:"when,omitempty"`
}

// Directive is a match and the single action it triggers.
type Directive struct {
	Match   Match        `yaml:"match" json:"match"`
	Display *fetch.Alert `yaml:"display,omitempty" json:"display,omitempty"`
	Dismiss string       `yaml:"dismiss,omitempty" json:"dismiss,omitempty"`
}

// Validate checks the directive's shape.
func (d Directive) Validate() error {
	hasStatus := d.Match.Status != ""
	hasType := d.Match.ErrorType != ""
	switch {
	case hasStatus && hasType:
		return &fwerrors.ValidationError{
			Field:      "match",
			Message:    "status and error_type are mutually exclusive",
			Suggestion: "split into two directives, or use when to combine conditions",
		}
	case !hasStatus && !hasType:
		return &fwerrors.ValidationError{Field: "match", Message: "one of status or error_type is required"}
	case hasStatus && !d.Match.Status.Valid():
		return &fwerrors.ValidationError{
			Field:      "match.status",
			Message:    fmt.Sprintf("unknown status %q", d.Match.Status),
			Suggestion: "use one of errored, failure, success",
		}
	case hasStatus && !d.Match.Status.Settled():
		return &fwerrors.ValidationError{
			Field:      "match.status",
			Message:    fmt.Sprintf("status %q never reaches alerts", d.Match.Status),
			Suggestion: "use one of errored, failure, success",
		}
	}

	hasDisplay := d.Display != nil
	hasDismiss := d.Dismiss != ""
	if hasDisplay == hasDismiss {
		return &fwerrors.ValidationError{Field: "action", Message: "exactly one of display or dismiss is required"}
	}
	if hasDisplay && d.Display.Message == "" {
		return &fwerrors.ValidationError{Field: "display.message", Message: "is required"}
	}
	return nil
}

// compiled is a validated directive with its When expression compiled.
type compiled struct {
	Directive
	when *vm.Program
}

func compile(index int, d Directive) (compiled, error) {
	if err := d.Validate(); err != nil {
		return compiled{}, fmt.Errorf("directive %d: %w", index, err)
	}

	c := compiled{Directive: d}
	if d.Match.When == "" {
		return c, nil
	}

	prog, err := expr.Compile(d.Match.When,
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return compiled{}, fmt.Errorf("directive %d: %w", index, &fwerrors.ValidationError{
			Field:      "match.when",
			Message:    fmt.Sprintf("failed to compile expression: %s", err.Error()),
			Suggestion: "check expression syntax; available variables are status, errorType, message, data, httpStatus",
		})
	}
	c.when = prog
	return c, nil
}

// matches reports whether the directive selects resp. A When expression
// that fails at runtime does not match.
func (c compiled) matches(resp *response.Response) (bool, error) {
	if c.Match.Status != "" && resp.Status != c.Match.Status {
		return false, nil
	}
	if c.Match.ErrorType != "" && resp.ErrorType() != c.Match.ErrorType {
		return false, nil
	}
	if c.when == nil {
		return true, nil
	}

	message := ""
	if resp.Error != nil {
		message = resp.Error.Message
	}
	out, err := expr.Run(c.when, whenEnv(resp, message))
	if err != nil {
		return false, err
	}
	ok, _ := out.(bool)
	return ok, nil
}

// whenEnv exposes a response to When expressions.
func whenEnv(resp *response.Response, message string) map[string]any {
	return map[string]any{
		"status":     string(resp.Status),
		"errorType":  resp.ErrorType(),
		"message":    message,
		"data":       resp.Data,
		"httpStatus": resp.Meta.HTTPStatus,
	}
}
