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

package session

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/tombee/fetchwire/internal/commands/shared"
)

func setup(t *testing.T) {
	t.Helper()
	keyring.MockInit()
	for _, key := range []string{"FETCHWIRE_TOKEN", "FETCHWIRE_BASE_URL", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	shared.SetConfigPathForTest("")
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestLoginWhoamiLogout(t *testing.T) {
	setup(t)
	token := signed(t, time.Now().Add(time.Hour))

	out, err := execute(t, NewLoginCommand(), "--token", token)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in")

	stored, err := keyring.Get("fetchwire", "session")
	require.NoError(t, err)
	assert.Equal(t, token, stored)

	out, err = execute(t, NewWhoamiCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in")
	assert.Contains(t, out, token[len(token)-4:])
	assert.NotContains(t, out, token)
	assert.Contains(t, out, "expires:")

	out, err = execute(t, NewLogoutCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, err = keyring.Get("fetchwire", "session")
	assert.ErrorIs(t, err, keyring.ErrNotFound)

	out, err = execute(t, NewWhoamiCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
}

func TestLogin_RequiresToken(t *testing.T) {
	setup(t)

	_, err := execute(t, NewLoginCommand())
	var exitErr *shared.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, shared.ExitUsage, exitErr.Code)
}

func TestLogin_RejectsExpiredToken(t *testing.T) {
	setup(t)

	_, err := execute(t, NewLoginCommand(), "--token", signed(t, time.Now().Add(-time.Minute)))
	var exitErr *shared.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Contains(t, exitErr.Message, "expired")

	_, getErr := keyring.Get("fetchwire", "session")
	assert.ErrorIs(t, getErr, keyring.ErrNotFound)
}

func TestLogout_WithoutSession(t *testing.T) {
	setup(t)

	_, err := execute(t, NewLogoutCommand())
	assert.NoError(t, err)
}

func TestWhoami_EnvToken(t *testing.T) {
	setup(t)
	t.Setenv("FETCHWIRE_TOKEN", "env-token-abcdef")

	out, err := execute(t, NewWhoamiCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "...cdef")
}
