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

package fetch

import (
	"context"
	"log/slog"
)

// Session is a snapshot of the caller's session.
type Session struct {
	Authenticated bool
	Token         string
}

// SessionStore exposes the current session and its persisted copy.
type SessionStore interface {
	// Current returns the session as it stands now.
	Current() Session

	// ClearStoredSession removes any persisted session record.
	ClearStoredSession(ctx context.Context) error
}

// ActionType names an action understood by the session owner.
type ActionType string

const (
	// ActionDestroySession tears down the in-memory session.
	ActionDestroySession ActionType = "session/destroy"

	// ActionLogin establishes a session from Action.Token.
	ActionLogin ActionType = "session/login"
)

// Action is a message sent to the Dispatcher.
type Action struct {
	Type  ActionType
	Token string
}

// Dispatcher delivers actions to whoever owns session state.
type Dispatcher interface {
	Dispatch(action Action)
}

// DispatchFunc adapts a function to the Dispatcher interface.
type DispatchFunc func(action Action)

// Dispatch calls f(action).
func (f DispatchFunc) Dispatch(action Action) { f(action) }

// Alert is a user-facing notice.
type Alert struct {
	Message string `json:"message" yaml:"message"`
	Type    string `json:"type" yaml:"type"`
	Context string `json:"context" yaml:"context"`
	Icon    string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// AlertSink shows and hides alerts.
type AlertSink interface {
	DisplayAlert(alert Alert)
	DismissAlert(context string)
}

// Env carries the collaborators a middleware may consult during a call.
// Zero-valued fields are replaced with inert defaults by Compose.
type Env struct {
	Session  SessionStore
	Dispatch Dispatcher
	Alerts   AlertSink
	Logger   *slog.Logger
}

// withDefaults fills unset collaborators so middleware never nil-check.
func (e Env) withDefaults() Env {
	if e.Session == nil {
		e.Session = anonymous{}
	}
	if e.Dispatch == nil {
		e.Dispatch = DispatchFunc(func(Action) {})
	}
	if e.Alerts == nil {
		e.Alerts = nopAlerts{}
	}
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
	return e
}

type anonymous struct{}

func (anonymous) Current() Session                         { return Session{} }
func (anonymous) ClearStoredSession(context.Context) error { return nil }

type nopAlerts struct{}

func (nopAlerts) DisplayAlert(Alert)  {}
func (nopAlerts) DismissAlert(string) {}
