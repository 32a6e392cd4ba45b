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

// Package session holds the caller's session and applies session actions
// dispatched by middleware.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tombee/fetchwire/internal/log"
	"github.com/tombee/fetchwire/pkg/fetch"
)

// ErrNoSession is returned by a Persister holding no session.
var ErrNoSession = errors.New("no stored session")

// Persister keeps the session token outside the process.
type Persister interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// Store is an in-memory session that acts on ActionLogin and
// ActionDestroySession. It satisfies fetch.SessionStore and
// fetch.Dispatcher.
type Store struct {
	persister Persister
	now       func() time.Time
	leeway    time.Duration
	logger    *slog.Logger

	mu      sync.RWMutex
	session fetch.Session
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPersister backs the store with persistent storage.
func WithPersister(p Persister) StoreOption {
	return func(s *Store) { s.persister = p }
}

// WithClock overrides the time source used for token expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithLeeway tolerates clock skew when checking token expiry.
func WithLeeway(d time.Duration) StoreOption {
	return func(s *Store) { s.leeway = d }
}

// WithStoreLogger sets the store's logger.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// NewStore returns an anonymous store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.WithComponent(log.OrDefault(s.logger), "session")
	return s
}

// Current implements fetch.SessionStore. A token whose expiry has passed
// is reported as unauthenticated.
func (s *Store) Current() fetch.Session {
	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()

	if session.Authenticated && Expired(session.Token, s.now(), s.leeway) {
		return fetch.Session{}
	}
	return session
}

// Dispatch implements fetch.Dispatcher.
func (s *Store) Dispatch(action fetch.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch action.Type {
	case fetch.ActionLogin:
		s.session = fetch.Session{Authenticated: action.Token != "", Token: action.Token}
	case fetch.ActionDestroySession:
		s.session = fetch.Session{}
	default:
		s.logger.Debug("ignoring unknown action", slog.String("action", string(action.Type)))
	}
}

// ClearStoredSession implements fetch.SessionStore.
func (s *Store) ClearStoredSession(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Delete(ctx); err != nil && !errors.Is(err, ErrNoSession) {
		return err
	}
	return nil
}

// Login establishes a session and persists the token.
func (s *Store) Login(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("token is required")
	}
	if s.persister != nil {
		if err := s.persister.Save(ctx, token); err != nil {
			return err
		}
	}
	s.Dispatch(fetch.Action{Type: fetch.ActionLogin, Token: token})
	return nil
}

// Logout destroys the session and its stored copy.
func (s *Store) Logout(ctx context.Context) error {
	s.Dispatch(fetch.Action{Type: fetch.ActionDestroySession})
	return s.ClearStoredSession(ctx)
}

// Restore loads a persisted token. An expired token is cleared and the
// store stays anonymous. A missing token is not an error.
func (s *Store) Restore(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	token, err := s.persister.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}

	if Expired(token, s.now(), s.leeway) {
		s.logger.InfoContext(ctx, "stored session expired", slog.String("token", log.SanitizeToken(token)))
		return s.ClearStoredSession(ctx)
	}

	s.Dispatch(fetch.Action{Type: fetch.ActionLogin, Token: token})
	return nil
}
