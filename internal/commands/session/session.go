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

// Package session implements the login, logout and whoami commands.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/fetchwire/internal/commands/shared"
	"github.com/tombee/fetchwire/internal/config"
	"github.com/tombee/fetchwire/internal/log"
	fwsession "github.com/tombee/fetchwire/pkg/session"
)

// Status is the whoami output.
type Status struct {
	Authenticated bool       `json:"authenticated"`
	Token         string     `json:"token,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a session token",
		Long: `Store a bearer token as the current session.

The token is saved in the OS keyring (or kept in memory when
session.store is "memory") and sent as "Authorization: Bearer <token>"
on every request until it expires or the server reports the session
expired.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return shared.NewUsageError("--token is required", nil)
			}
			if fwsession.Expired(token, time.Now(), 0) {
				return shared.NewUsageError("token has already expired", nil)
			}

			store, err := open(cmd, false)
			if err != nil {
				return err
			}
			if err := store.Login(cmd.Context(), token); err != nil {
				return fmt.Errorf("failed to store session: %w", err)
			}

			if !shared.GetQuiet() {
				cmd.Println(shared.RenderOK("Logged in"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Bearer token to store")
	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd, false)
			if err != nil {
				return err
			}
			if err := store.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("failed to remove session: %w", err)
			}

			if !shared.GetQuiet() {
				cmd.Println(shared.RenderOK("Logged out"))
			}
			return nil
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd, true)
			if err != nil {
				return err
			}

			current := store.Current()
			status := Status{Authenticated: current.Authenticated}
			if current.Authenticated {
				status.Token = log.SanitizeToken(current.Token)
				if exp, ok := fwsession.ExpiresAt(current.Token); ok {
					status.ExpiresAt = &exp
				}
			}

			if shared.GetJSON() {
				data, err := json.MarshalIndent(status, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal session: %w", err)
				}
				cmd.Println(string(data))
				return nil
			}

			if !status.Authenticated {
				cmd.Println(shared.RenderWarn("Not logged in"))
				return nil
			}
			cmd.Println(shared.RenderOK("Logged in"))
			cmd.Printf("  %s %s\n", shared.RenderLabel("token:"), status.Token)
			if status.ExpiresAt != nil {
				cmd.Printf("  %s %s\n", shared.RenderLabel("expires:"), status.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

// open returns the configured session store. Unless useEnvToken is set,
// FETCHWIRE_TOKEN is ignored so login and logout act on the stored session.
func open(cmd *cobra.Command, useEnvToken bool) (*fwsession.Store, error) {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return nil, err
	}
	logCfg := cfg.Logging()
	logCfg.Output = cmd.ErrOrStderr()
	logger := log.New(logCfg)

	if !useEnvToken {
		cfg.Token = ""
	}
	if cfg.Session.Store == config.SessionStoreMemory && !useEnvToken {
		logger.Warn("session.store is memory; the session lasts only for this process")
	}
	return shared.OpenSession(cmd.Context(), cfg, logger)
}
