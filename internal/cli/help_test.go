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

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/fetchwire/internal/commands/shared"
)

func newTestRoot() *cobra.Command {
	rootCmd := &cobra.Command{Use: "test", Short: "Test command"}
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output")

	sampleCmd := &cobra.Command{
		Use:     "sample",
		Short:   "Sample subcommand",
		Long:    "This is a sample subcommand for testing",
		Example: "  test sample --flag value",
		Run:     func(*cobra.Command, []string) {},
	}
	sampleCmd.Flags().String("flag", "", "A sample flag")
	rootCmd.AddCommand(sampleCmd)

	rootCmd.SetHelpCommand(NewHelpCommand(rootCmd))
	return rootCmd
}

func runHelp(t *testing.T, rootCmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append([]string{"help"}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestHelpCommandJSON_AllCommands(t *testing.T) {
	out, err := runHelp(t, newTestRoot(), "--json")
	require.NoError(t, err)

	var resp HelpResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)

	assert.Nil(t, resp.Command)
	names := make([]string, 0, len(resp.Commands))
	for _, c := range resp.Commands {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "sample")
	require.NotEmpty(t, resp.GlobalFlags)
	assert.Equal(t, "verbose", resp.GlobalFlags[0].Name)
	assert.Len(t, resp.ExitCodes, 5)
}

func TestHelpCommandJSON_SingleCommand(t *testing.T) {
	out, err := runHelp(t, newTestRoot(), "sample", "--json")
	require.NoError(t, err)

	var resp HelpResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)

	require.NotNil(t, resp.Command)
	assert.Equal(t, "sample", resp.Command.Name)
	assert.NotEmpty(t, resp.Command.Examples)
	assert.Empty(t, resp.Commands)

	var found bool
	for _, f := range resp.Command.Flags {
		if f.Name == "flag" {
			found = true
			assert.Equal(t, "string", f.Type)
		}
	}
	assert.True(t, found, "expected --flag in metadata")
}

func TestHelpCommandHumanOutput(t *testing.T) {
	out, err := runHelp(t, newTestRoot())
	require.NoError(t, err)
	assert.Contains(t, out, "sample")
}

func TestHelpCommandUnknown(t *testing.T) {
	_, err := runHelp(t, newTestRoot(), "nope")

	var exitErr *shared.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, shared.ExitUsage, exitErr.Code)
}
