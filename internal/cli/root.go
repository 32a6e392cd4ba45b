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
	"github.com/spf13/cobra"

	"github.com/tombee/fetchwire/internal/commands/alerts"
	"github.com/tombee/fetchwire/internal/commands/config"
	"github.com/tombee/fetchwire/internal/commands/request"
	"github.com/tombee/fetchwire/internal/commands/session"
	"github.com/tombee/fetchwire/internal/commands/shared"
	versioncmd "github.com/tombee/fetchwire/internal/commands/version"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command with global flags and no
// subcommands.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetchwire",
		Short: "fetchwire - JSON API client with middleware",
		Long: `fetchwire sends requests to a JSON API through a middleware chain that
handles authentication, snake_case/camelCase conversion, the {"ok", "data",
"error"} reply envelope, session expiry and user-facing alerts.

Run 'fetchwire config init' to write a starter configuration.
Run 'fetchwire login --token <token>' to store a session.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	shared.BindGlobalFlags(cmd.PersistentFlags())

	return cmd
}

// NewApp returns the root command with every fetchwire command attached.
func NewApp() *cobra.Command {
	rootCmd := NewRootCommand()

	rootCmd.AddCommand(request.NewCommand())

	rootCmd.AddCommand(session.NewLoginCommand())
	rootCmd.AddCommand(session.NewLogoutCommand())
	rootCmd.AddCommand(session.NewWhoamiCommand())

	rootCmd.AddCommand(alerts.NewCommand())
	rootCmd.AddCommand(config.NewConfigCommand())
	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	rootCmd.SetHelpCommand(NewHelpCommand(rootCmd))
	return rootCmd
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
