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

import "github.com/spf13/pflag"

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	verbose bool
	quiet   bool
	json    bool
	config  string
	trace   string
}

type buildInfo struct {
	version   string
	commit    string
	buildDate string
}

var (
	globals globalFlags
	build   = buildInfo{version: "dev", commit: "unknown", buildDate: "unknown"}
)

// BindGlobalFlags registers -v, -q, --json, --config and --trace on fs.
func BindGlobalFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&globals.verbose, "verbose", "v", false, "Enable verbose output")
	fs.BoolVarP(&globals.quiet, "quiet", "q", false, "Suppress non-error output")
	fs.BoolVar(&globals.json, "json", false, "Output in JSON format")
	fs.StringVar(&globals.config, "config", "", "Path to config file (default: ~/.config/fetchwire/config.yaml)")
	fs.StringVar(&globals.trace, "trace", "", "Export spans: none, stdout or otlp")
}

// SetVersion records build metadata injected by main.
func SetVersion(v, c, b string) {
	build = buildInfo{version: v, commit: c, buildDate: b}
}

// GetVersion returns version, commit and build date.
func GetVersion() (string, string, string) {
	return build.version, build.commit, build.buildDate
}

func GetVerbose() bool { return globals.verbose }

func GetQuiet() bool { return globals.quiet }

// GetJSON reports whether output should be machine-readable.
func GetJSON() bool { return globals.json }

// GetConfigPath returns --config, or "" for the default location.
func GetConfigPath() string { return globals.config }

// GetTraceExporter returns the --trace exporter override, or "".
func GetTraceExporter() string { return globals.trace }

// SetConfigPathForTest overrides --config.
func SetConfigPathForTest(path string) { globals.config = path }

// SetJSONForTest overrides --json until the test ends.
func SetJSONForTest(t interface{ Cleanup(func()) }, on bool) {
	prev := globals.json
	globals.json = on
	t.Cleanup(func() { globals.json = prev })
}
