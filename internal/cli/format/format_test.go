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

package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		color    bool
		contains string
	}{
		{
			name:     "plain object",
			value:    map[string]any{"key": "value"},
			contains: `"key": "value"`,
		},
		{
			name:     "nested indent",
			value:    map[string]any{"outer": map[string]any{"inner": 1}},
			contains: "    \"inner\": 1",
		},
		{
			name:     "colored keeps content",
			value:    map[string]any{"key": "value"},
			color:    true,
			contains: "key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JSON(tt.value, tt.color)
			require.NoError(t, err)
			assert.Contains(t, got, tt.contains)
			if !tt.color {
				assert.NotContains(t, got, "\x1b[")
			}
		})
	}
}

func TestJSON_Colored(t *testing.T) {
	got, err := JSON(map[string]any{"ok": true}, true)
	require.NoError(t, err)
	assert.Contains(t, got, "\x1b[")
	assert.Equal(t, "{\n  \"ok\": true\n}", strings.TrimSpace(StripANSI(got)))
}

func TestJSON_Unencodable(t *testing.T) {
	_, err := JSON(map[string]any{"ch": make(chan int)}, false)
	assert.Error(t, err)
}

func TestJSON_SizeLimit(t *testing.T) {
	_, err := JSON(strings.Repeat("x", maxJSONSize+1), false)
	assert.ErrorContains(t, err, "exceeds maximum")
}

func TestHighlight_UnknownLanguage(t *testing.T) {
	assert.Equal(t, "plain", Highlight("plain", "no-such-language"))
}

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "red text", StripANSI("\x1b[31mred\x1b[0m text"))
	assert.Equal(t, "clean", StripANSI("clean"))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
