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

// Package alerts implements the "fetchwire alerts" commands.
package alerts

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/fetchwire/internal/commands/shared"
	"github.com/tombee/fetchwire/pkg/alert"
)

// ValidationResult is the JSON output of alerts validate.
type ValidationResult struct {
	File       string `json:"file"`
	Valid      bool   `json:"valid"`
	Directives int    `json:"directives"`
	Error      string `json:"error,omitempty"`
}

// NewCommand creates the alerts command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Work with alert directive files",
	}
	cmd.AddCommand(newValidateCommand())
	return cmd
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check an alert directive file",
		Long: `Parse and compile every directive in an alert file.

A directive matches on exactly one of status or error_type, may add a
when expression, and either displays an alert or dismisses a context:

  alerts:
    - match:
        error_type: payment.cardDeclined
        when: httpStatus == 402
      display:
        message: Your card was declined
        type: error
        context: billing
    - match:
        status: success
      dismiss: billing`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			directives, err := alert.Load(path)

			result := ValidationResult{File: path, Valid: err == nil, Directives: len(directives)}
			if err != nil {
				result.Error = err.Error()
			}

			if shared.GetJSON() {
				data, mErr := json.MarshalIndent(result, "", "  ")
				if mErr != nil {
					return fmt.Errorf("failed to marshal result: %w", mErr)
				}
				cmd.Println(string(data))
			} else if err == nil {
				cmd.Println(shared.RenderOK(fmt.Sprintf("%s: %d directives", path, len(directives))))
			}

			if err != nil {
				return shared.NewUsageError(fmt.Sprintf("invalid alert file %s", path), err)
			}
			return nil
		},
	}
}
