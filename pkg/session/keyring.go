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
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// DefaultService is the keyring service name for stored sessions.
const DefaultService = "fetchwire"

// DefaultAccount is the keyring account for stored sessions.
const DefaultAccount = "session"

// ErrKeyringUnavailable is returned when the OS keyring cannot be used.
var ErrKeyringUnavailable = errors.New("keyring unavailable")

// Keyring persists the session token in the OS keyring:
//   - macOS: Keychain Access
//   - Linux: Secret Service API (GNOME Keyring, KWallet)
//   - Windows: Credential Manager
type Keyring struct {
	Service string
	Account string
}

// NewKeyring returns a Keyring, using defaults for empty names.
func NewKeyring(service, account string) *Keyring {
	if service == "" {
		service = DefaultService
	}
	if account == "" {
		account = DefaultAccount
	}
	return &Keyring{Service: service, Account: account}
}

// Load implements Persister.
func (k *Keyring) Load(ctx context.Context) (string, error) {
	token, err := keyring.Get(k.Service, k.Account)
	if err != nil {
		return "", k.wrap(err)
	}
	return token, nil
}

// Save implements Persister.
func (k *Keyring) Save(ctx context.Context, token string) error {
	if err := keyring.Set(k.Service, k.Account, token); err != nil {
		return k.wrap(err)
	}
	return nil
}

// Delete implements Persister.
func (k *Keyring) Delete(ctx context.Context) error {
	if err := keyring.Delete(k.Service, k.Account); err != nil {
		return k.wrap(err)
	}
	return nil
}

func (k *Keyring) wrap(err error) error {
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNoSession
	}
	if isKeyringUnavailableError(err) {
		return fmt.Errorf("%w: %s", ErrKeyringUnavailable, err.Error())
	}
	return fmt.Errorf("keyring error: %w", err)
}

// isKeyringUnavailableError checks if an error indicates the keyring is
// locked or inaccessible.
func isKeyringUnavailableError(err error) bool {
	errStr := strings.ToLower(err.Error())

	for _, indicator := range []string{
		"locked",
		"cannot access",
		"permission denied",
		"failed to unlock",
		"user interaction required",
		"secret service",
		"dbus",
		"user canceled",
	} {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}
