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

package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/fetchwire/internal/testing/mock"
	"github.com/tombee/fetchwire/pkg/alert"
	"github.com/tombee/fetchwire/pkg/auth"
	"github.com/tombee/fetchwire/pkg/fetch"
)

type harness struct {
	transport *mock.Transport
	session   *mock.SessionStore
	dispatch  *mock.Dispatcher
	alerts    *mock.AlertSink
}

func newHarness(session fetch.Session, replies ...mock.Reply) *harness {
	return &harness{
		transport: mock.NewTransport(replies...),
		session:   mock.NewSessionStore(session),
		dispatch:  &mock.Dispatcher{},
		alerts:    &mock.AlertSink{},
	}
}

func (h *harness) compose(mws ...fetch.Middleware) fetch.Transport {
	env := fetch.Env{Session: h.session, Dispatch: h.dispatch, Alerts: h.alerts}
	return fetch.Compose(h.transport.Perform, env, mws...)
}

var signedIn = fetch.Session{Authenticated: true, Token: "tok-123"}

func TestAuthentication_InjectsBearer(t *testing.T) {
	h := newHarness(signedIn, mock.Success(nil))

	opts := fetch.Options{Headers: map[string]string{"X-Trace": "1"}}
	_, err := h.compose(auth.Authentication())(context.Background(), "/x", opts)
	require.NoError(t, err)

	calls := h.transport.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer tok-123", calls[0].Opts.Headers["Authorization"])
	assert.Equal(t, "1", calls[0].Opts.Headers["X-Trace"])
	assert.NotContains(t, opts.Headers, "Authorization", "caller headers must not be modified")
}

func TestAuthentication_AnonymousSendsNoCredentials(t *testing.T) {
	h := newHarness(fetch.Session{}, mock.Failure(auth.SessionExpired, "expired"))

	resp, err := h.compose(auth.Authentication())(context.Background(), "/x", fetch.Options{})
	require.NoError(t, err)

	assert.NotContains(t, h.transport.Calls()[0].Opts.Headers, "Authorization")
	assert.Empty(t, h.dispatch.Actions())
	assert.Empty(t, h.alerts.Events())
	assert.Zero(t, h.session.Clears())
	assert.False(t, resp.Meta.Alerted)
}

func TestAuthentication_ExpiredSessionIntercepted(t *testing.T) {
	reply := mock.Failure(auth.SessionExpired, "expired")
	h := newHarness(signedIn, reply)

	resp, err := h.compose(auth.Authentication())(context.Background(), "/x", fetch.Options{})
	require.NoError(t, err)

	assert.Equal(t, []fetch.Action{{Type: fetch.ActionDestroySession}}, h.dispatch.Actions())
	assert.Equal(t, 1, h.session.Clears())
	assert.Equal(t, []fetch.Alert{auth.ExpiredAlert}, h.alerts.Displayed())
	assert.Equal(t, "warning", auth.ExpiredAlert.Type)

	assert.True(t, resp.IsFailure())
	assert.True(t, resp.Meta.Alerted)
	assert.False(t, reply.Response.Meta.Alerted, "transport response must not be modified")
}

func TestAuthentication_ClearFailureIsNotFatal(t *testing.T) {
	h := newHarness(signedIn, mock.Failure(auth.SessionExpired, "expired"))
	h.session.ClearErr = errors.New("keyring locked")

	resp, err := h.compose(auth.Authentication())(context.Background(), "/x", fetch.Options{})
	require.NoError(t, err)

	assert.Len(t, h.dispatch.Actions(), 1)
	assert.Len(t, h.alerts.Displayed(), 1)
	assert.True(t, resp.Meta.Alerted)
}

func TestAuthentication_AlreadyAlertedNotRepeated(t *testing.T) {
	reply := mock.Failure(auth.SessionExpired, "expired")
	reply.Response.Meta.Alerted = true
	h := newHarness(signedIn, reply)

	_, err := h.compose(auth.Authentication())(context.Background(), "/x", fetch.Options{})
	require.NoError(t, err)

	assert.Empty(t, h.dispatch.Actions())
	assert.Empty(t, h.alerts.Events())
}

func TestAuthentication_OtherErrorsPassThrough(t *testing.T) {
	reply := mock.Failure("record.notFound", "missing")
	h := newHarness(signedIn, reply)

	resp, err := h.compose(auth.Authentication())(context.Background(), "/x", fetch.Options{})
	require.NoError(t, err)

	assert.Same(t, reply.Response, resp)
	assert.Empty(t, h.dispatch.Actions())
	assert.Empty(t, h.alerts.Events())
}

func TestAuthentication_InterceptsBeforeAlertDirectives(t *testing.T) {
	h := newHarness(signedIn, mock.Failure(auth.SessionExpired, "expired"))

	alerts, err := alert.New(alert.Directive{
		Match:   alert.Match{ErrorType: auth.SessionExpired},
		Dismiss: "ctx",
	})
	require.NoError(t, err)

	resp, err := h.compose(alerts, auth.Authentication())(context.Background(), "/x", fetch.Options{})
	require.NoError(t, err)

	assert.Equal(t, []fetch.Action{{Type: fetch.ActionDestroySession}}, h.dispatch.Actions())
	assert.Equal(t, []mock.AlertEvent{{Displayed: &auth.ExpiredAlert}}, h.alerts.Events())
	assert.Empty(t, h.alerts.Dismissed())
	assert.True(t, resp.Meta.Alerted)
}

func TestAuthentication_RepeatedFailuresAlertOncePerResponse(t *testing.T) {
	h := newHarness(signedIn, mock.Failure(auth.SessionExpired, "expired"))
	composed := h.compose(auth.Authentication())

	_, err := composed(context.Background(), "/x", fetch.Options{})
	require.NoError(t, err)

	// After teardown the session is anonymous; a second expired reply must
	// not dispatch again.
	h.session.Set(fetch.Session{})
	_, err = composed(context.Background(), "/x", fetch.Options{})
	require.NoError(t, err)

	assert.Len(t, h.dispatch.Actions(), 1)
	assert.Len(t, h.alerts.Displayed(), 1)
}
