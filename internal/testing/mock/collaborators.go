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

package mock

import (
	"context"
	"sync"

	"github.com/tombee/fetchwire/pkg/fetch"
)

// AlertEvent records one AlertSink call. Exactly one of Displayed and
// Dismissed is set.
type AlertEvent struct {
	Displayed *fetch.Alert
	Dismissed string
}

// AlertSink records alert calls in order.
type AlertSink struct {
	mu     sync.Mutex
	events []AlertEvent
}

// DisplayAlert implements fetch.AlertSink.
func (s *AlertSink) DisplayAlert(alert fetch.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, AlertEvent{Displayed: &alert})
}

// DismissAlert implements fetch.AlertSink.
func (s *AlertSink) DismissAlert(context string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, AlertEvent{Dismissed: context})
}

// Events returns the recorded calls.
func (s *AlertSink) Events() []AlertEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AlertEvent(nil), s.events...)
}

// Displayed returns only the displayed alerts.
func (s *AlertSink) Displayed() []fetch.Alert {
	var out []fetch.Alert
	for _, e := range s.Events() {
		if e.Displayed != nil {
			out = append(out, *e.Displayed)
		}
	}
	return out
}

// Dismissed returns only the dismissed contexts.
func (s *AlertSink) Dismissed() []string {
	var out []string
	for _, e := range s.Events() {
		if e.Displayed == nil {
			out = append(out, e.Dismissed)
		}
	}
	return out
}

// Dispatcher records dispatched actions.
type Dispatcher struct {
	mu      sync.Mutex
	actions []fetch.Action
}

// Dispatch implements fetch.Dispatcher.
func (d *Dispatcher) Dispatch(action fetch.Action) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, action)
}

// Actions returns the recorded actions.
func (d *Dispatcher) Actions() []fetch.Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]fetch.Action(nil), d.actions...)
}

// SessionStore is a settable session with a recorded clear count.
type SessionStore struct {
	mu       sync.Mutex
	session  fetch.Session
	clears   int
	ClearErr error
}

// NewSessionStore returns a store holding session.
func NewSessionStore(session fetch.Session) *SessionStore {
	return &SessionStore{session: session}
}

// Current implements fetch.SessionStore.
func (s *SessionStore) Current() fetch.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Set replaces the session.
func (s *SessionStore) Set(session fetch.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
}

// ClearStoredSession implements fetch.SessionStore.
func (s *SessionStore) ClearStoredSession(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	return s.ClearErr
}

// Clears returns how many times ClearStoredSession was called.
func (s *SessionStore) Clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}
