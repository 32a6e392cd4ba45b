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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/fetchwire/pkg/response"
)

const sampleAlerts = `
alerts:
  - match: {status: success}
    dismiss: form
  - match:
      error_type: record.notFound
      when: httpStatus == 404
    display:
      message: Not found
      type: error
      context: form
      icon: search
`

func TestParse(t *testing.T) {
	directives, err := Parse([]byte(sampleAlerts))
	require.NoError(t, err)
	require.Len(t, directives, 2)

	assert.Equal(t, response.StatusSuccess, directives[0].Match.Status)
	assert.Equal(t, "form", directives[0].Dismiss)

	assert.Equal(t, "record.notFound", directives[1].Match.ErrorType)
	assert.Equal(t, "httpStatus == 404", directives[1].Match.When)
	require.NotNil(t, directives[1].Display)
	assert.Equal(t, "Not found", directives[1].Display.Message)
	assert.Equal(t, "search", directives[1].Display.Icon)
}

func TestParse_Empty(t *testing.T) {
	directives, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, directives)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("alerts:\n  - match: {status: success}\n    dismis: form\n"))
	assert.Error(t, err)
}

func TestParse_InvalidDirective(t *testing.T) {
	_, err := Parse([]byte("alerts:\n  - match: {status: success}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directive 0")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleAlerts), 0o600))

	directives, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, directives, 2)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "team", "billing"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(sampleAlerts), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "team", "billing", "b.yaml"),
		[]byte("alerts:\n  - match: {status: errored}\n    dismiss: billing\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	directives, err := LoadGlob(filepath.Join(dir, "**", "*.yaml"))
	require.NoError(t, err)
	require.Len(t, directives, 3)
	assert.Equal(t, "form", directives[0].Dismiss)
	assert.Equal(t, "billing", directives[2].Dismiss)
}

func TestLoadGlob_NoMatches(t *testing.T) {
	directives, err := LoadGlob(filepath.Join(t.TempDir(), "*.yaml"))
	require.NoError(t, err)
	assert.Empty(t, directives)
}

func TestLoadGlob_LiteralMissing(t *testing.T) {
	_, err := LoadGlob(filepath.Join(t.TempDir(), "alerts.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadGlob_InvalidPattern(t *testing.T) {
	_, err := LoadGlob(filepath.Join(t.TempDir(), "[.yaml"))
	assert.Error(t, err)
}
