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

package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/fetchwire/internal/commands/shared"
	fwerrors "github.com/tombee/fetchwire/pkg/errors"
	"github.com/tombee/fetchwire/pkg/fetch"
	fwrequest "github.com/tombee/fetchwire/pkg/request"
	"github.com/tombee/fetchwire/pkg/response"
)

func setup(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	for _, key := range []string{"FETCHWIRE_BASE_URL", "FETCHWIRE_TOKEN", "FETCHWIRE_TIMEOUT", "FETCHWIRE_TRACE_EXPORTER", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "base_url: " + srv.URL + "\nsession:\n  store: memory\nretry:\n  attempts: 0\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	shared.SetConfigPathForTest(path)
	t.Cleanup(func() { shared.SetConfigPathForTest("") })
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRequestCommand_Success(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/42", r.URL.Path)
		assert.Equal(t, "active", r.URL.Query().Get("user_status"))
		_, _ = io.WriteString(w, `{"ok": true, "data": {"display_name": "Ada"}}`)
	})

	stdout, _, err := execute(t, "/users/:id", "-w", "id=42", "-p", "userStatus=active")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "success", got["status"])
	assert.Equal(t, map[string]any{"displayName": "Ada"}, got["data"])
}

func TestRequestCommand_Select(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok": true, "data": [{"first_name": "Ada"}, {"first_name": "Grace"}]}`)
	})

	stdout, _, err := execute(t, "/users", "-s", ".[].firstName")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, []any{"Ada", "Grace"}, got["data"])
}

func TestRequestCommand_FailureExitCode(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"ok": false, "error": {"type": "user.not_found", "message": "no such user"}}`)
	})

	stdout, _, err := execute(t, "/users/1")

	var exitErr *shared.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, shared.ExitRequestFailed, exitErr.Code)
	assert.Contains(t, stdout, `"errorType": "user.notFound"`)
}

func TestRequestCommand_MultipleURLs(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			_, _ = io.WriteString(w, `not json`)
			return
		}
		_, _ = io.WriteString(w, `{"ok": true, "data": "`+r.URL.Path+`"}`)
	})

	stdout, _, err := execute(t, "/a", "/b", "/broken", "--metrics")

	var exitErr *shared.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, shared.ExitErrored, exitErr.Code)

	var results []struct {
		URL      string         `json:"url"`
		Response map[string]any `json:"response"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 3)
	assert.Equal(t, "/a", results[0].URL)
	assert.Equal(t, "/a", results[0].Response["data"])
	assert.Equal(t, "/b", results[1].Response["data"])
	assert.Equal(t, "errored", results[2].Response["status"])
	assert.Equal(t, "client.decodeError", results[2].Response["errorType"])
}

func TestRequestCommand_InvalidData(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, _, err := execute(t, "/users", "-X", "POST", "-d", "{nope")
	var exitErr *shared.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, shared.ExitUsage, exitErr.Code)
}

func TestBuildOptions(t *testing.T) {
	opts, err := buildOptions(flags{
		method:    "post",
		data:      `{"displayName": "Ada"}`,
		params:    []string{"tag=a", "tag=b", "page=2"},
		wildcards: []string{"id=7"},
		headers:   []string{"X-Trace: on", "Accept:  application/json "},
	})
	require.NoError(t, err)

	assert.Equal(t, "POST", opts.HTTPMethod())
	assert.Equal(t, map[string]any{"displayName": "Ada"}, opts.Body)
	assert.Equal(t, map[string]any{"tag": []string{"a", "b"}, "page": "2"}, opts.Params)
	assert.Equal(t, map[string]string{"id": "7"}, opts.Wildcards)
	assert.Equal(t, map[string]string{"X-Trace": "on", "Accept": "application/json"}, opts.Headers)
	assert.True(t, opts.IsJSON())
}

func TestBuildOptions_Text(t *testing.T) {
	opts, err := buildOptions(flags{method: "PUT", data: "hello", text: true})
	require.NoError(t, err)
	assert.Equal(t, fetch.ContentTypeText, opts.ContentType)
	assert.Equal(t, "hello", opts.Body)
}

func TestBuildOptions_DataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1, 2]`), 0600))

	opts, err := buildOptions(flags{data: "@" + path})
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2)}, opts.Body)
}

func TestBuildOptions_Invalid(t *testing.T) {
	tests := []struct {
		name string
		f    flags
	}{
		{name: "param without equals", f: flags{params: []string{"page"}}},
		{name: "wildcard without key", f: flags{wildcards: []string{"=7"}}},
		{name: "header without colon", f: flags{headers: []string{"X-Trace on"}}},
		{name: "missing data file", f: flags{data: "@/does/not/exist.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildOptions(tt.f)
			var exitErr *shared.ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, shared.ExitUsage, exitErr.Code)
		})
	}
}

func TestFetchAll_LogsMissingReply(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	down := func(_ context.Context, url string, _ fetch.Options) (*response.Response, error) {
		err := &fwerrors.TransportError{Method: "GET", URL: url, Cause: errors.New("connection refused")}
		return response.Errored(err, nil), err
	}
	up := func(context.Context, string, fetch.Options) (*response.Response, error) {
		return response.WithStatus(response.StatusSuccess, response.WithData("ok", nil)), nil
	}

	results := fetchAll(context.Background(), logger, []string{"/down", "/up"}, 2, func(url string) *fwrequest.Driver {
		if url == "/down" {
			return fwrequest.New(down, url, fetch.Options{})
		}
		return fwrequest.New(up, url, fetch.Options{})
	})

	require.Len(t, results, 2)
	assert.True(t, results[0].Response.IsErrored())
	assert.True(t, results[1].Response.IsSuccess())
	assert.Contains(t, logs.String(), "no reply received")
	assert.Contains(t, logs.String(), "connection refused")
	assert.Equal(t, 1, strings.Count(logs.String(), "no reply received"))
}
