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

/*
Package cli provides the root command for the fetchwire CLI.

This package creates the Cobra command tree and handles global concerns like
version information, persistent flags, and error handling. Individual
commands are implemented in the internal/commands subpackages.

# Command Tree

	fetchwire
	├── request          Send requests through the middleware chain
	├── login            Store a session token
	├── logout           Destroy the session
	├── whoami           Show the current session
	├── alerts validate  Check an alert directives file
	├── config           Show, locate, initialize or validate configuration
	├── version          Show version
	└── help             Show help

# Usage

From main.go:

	cli.SetVersion(version, commit, date)
	if err := cli.NewApp().Execute(); err != nil {
	    cli.HandleExitError(err)
	}

# Global Flags

	--verbose, -v    Enable debug logging
	--quiet, -q      Only log errors
	--json           Output in JSON format
	--config         Path to config file
	--trace          Span exporter: none, stdout or otlp

# Exit Codes

  - 0: every request succeeded
  - 1: the server answered with a failure
  - 2: invalid usage
  - 3: invalid configuration
  - 4: no usable reply (network, decode or request construction error)
*/
package cli
