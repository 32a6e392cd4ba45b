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

// Package format renders command output for terminals and pipes.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
)

// maxJSONSize caps rendered output.
const maxJSONSize = 10 * 1024 * 1024

// ansiEscapeRegex matches ANSI escape sequences.
var ansiEscapeRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes ANSI escape sequences, so server-provided text cannot
// drive the terminal.
func StripANSI(s string) string {
	return ansiEscapeRegex.ReplaceAllString(s, "")
}

// JSON pretty-prints v with 2-space indentation, highlighted when color is
// set. Highlighting failures fall back to plain output.
func JSON(v any, color bool) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format JSON: %w", err)
	}
	if len(data) > maxJSONSize {
		return "", fmt.Errorf("output size (%d bytes) exceeds maximum for json format (%d bytes)", len(data), maxJSONSize)
	}

	if !color {
		return string(data), nil
	}
	return Highlight(string(data), "json"), nil
}

// Highlight applies terminal syntax highlighting for language. Unknown
// languages are returned unchanged.
func Highlight(content, language string) string {
	if lexers.Get(language) == nil {
		return content
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, content, language, "terminal256", "monokai"); err != nil {
		return content
	}
	return buf.String()
}
