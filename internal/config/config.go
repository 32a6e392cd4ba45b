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

// Package config loads fetchwire configuration from a YAML file and the
// environment.
//
// Environment variables take precedence over the file:
//
//	FETCHWIRE_CONFIG          config file path (default ~/.config/fetchwire/config.yaml)
//	FETCHWIRE_BASE_URL        base_url
//	FETCHWIRE_TOKEN           session token used instead of the keyring
//	FETCHWIRE_TIMEOUT         timeout (Go duration, e.g. "10s")
//	FETCHWIRE_TRACE_EXPORTER  tracing.exporter
//	OTEL_EXPORTER_OTLP_ENDPOINT tracing.endpoint
//	LOG_LEVEL, LOG_FORMAT     log.level, log.format
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tombee/fetchwire/internal/log"
	"github.com/tombee/fetchwire/internal/tracing"
	"github.com/tombee/fetchwire/pkg/alert"
	fwerrors "github.com/tombee/fetchwire/pkg/errors"
	"github.com/tombee/fetchwire/pkg/httpclient"
	"github.com/tombee/fetchwire/pkg/session"
)

// Session store kinds.
const (
	SessionStoreKeyring = "keyring"
	SessionStoreMemory  = "memory"
)

// Config is the complete fetchwire configuration.
type Config struct {
	// BaseURL resolves relative request URLs.
	BaseURL string `yaml:"base_url,omitempty"`

	// Timeout bounds each HTTP attempt.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent,omitempty"`

	// MaxBodyBytes caps how much of each reply is read.
	MaxBodyBytes int64 `yaml:"max_body_bytes,omitempty"`

	Retry     RetryConfig     `yaml:"retry"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Session   SessionConfig   `yaml:"session"`

	// Alerts are inline alert directives, applied before AlertsFile's.
	Alerts []alert.Directive `yaml:"alerts,omitempty"`

	// AlertsFile is a YAML file of additional directives, or a glob such
	// as "alerts.d/**/*.yaml" loading every match in lexical order.
	AlertsFile string `yaml:"alerts_file,omitempty"`

	Log     LogConfig      `yaml:"log"`
	Tracing tracing.Config `yaml:"tracing"`

	// Token comes only from FETCHWIRE_TOKEN and is never written to disk.
	Token string `yaml:"-"`
}

// RetryConfig configures retries at the HTTP boundary.
type RetryConfig struct {
	// Attempts is the number of retries after the first attempt.
	Attempts int `yaml:"attempts"`

	WaitMin time.Duration `yaml:"wait_min,omitempty"`
	WaitMax time.Duration `yaml:"wait_max,omitempty"`

	// AllowNonIdempotent retries POST and PATCH too.
	AllowNonIdempotent bool `yaml:"allow_non_idempotent,omitempty"`
}

// RateLimitConfig configures the client-side token bucket. A zero RPS
// disables it.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps,omitempty"`
	Burst int     `yaml:"burst,omitempty"`
}

// Enabled reports whether rate limiting is on.
func (r RateLimitConfig) Enabled() bool { return r.RPS > 0 }

// SessionConfig selects where the session token is persisted.
type SessionConfig struct {
	// Store is "keyring" (default) or "memory".
	Store string `yaml:"store,omitempty"`

	Service string `yaml:"service,omitempty"`
	Account string `yaml:"account,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	hc := httpclient.DefaultConfig()
	return &Config{
		Timeout:   hc.Timeout,
		UserAgent: hc.UserAgent,
		Retry: RetryConfig{
			Attempts: hc.RetryAttempts,
			WaitMin:  hc.RetryWaitMin,
			WaitMax:  hc.RetryWaitMax,
		},
		Session: SessionConfig{
			Store:   SessionStoreKeyring,
			Service: session.DefaultService,
			Account: session.DefaultAccount,
		},
		Log: LogConfig{
			Level:  "info",
			Format: string(log.FormatText),
		},
		Tracing: tracing.Config{Exporter: tracing.ExporterNone},
	}
}

// Load reads configuration from configPath, then applies environment
// overrides and validates the result. An empty configPath uses the default
// location, where a missing file is not an error.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	explicit := configPath != ""
	if !explicit {
		path, err := ConfigPath()
		if err != nil {
			return nil, &fwerrors.ConfigError{Key: "config_file", Reason: "cannot locate config directory", Cause: err}
		}
		configPath = path
	}

	if err := cfg.loadFromFile(configPath); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, &fwerrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	cfg.applyDefaults()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero values left by a minimal file.
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
	if c.UserAgent == "" {
		c.UserAgent = defaults.UserAgent
	}
	if c.Retry.WaitMin == 0 {
		c.Retry.WaitMin = defaults.Retry.WaitMin
	}
	if c.Retry.WaitMax == 0 {
		c.Retry.WaitMax = defaults.Retry.WaitMax
	}
	if c.Session.Store == "" {
		c.Session.Store = defaults.Session.Store
	}
	if c.Session.Service == "" {
		c.Session.Service = defaults.Session.Service
	}
	if c.Session.Account == "" {
		c.Session.Account = defaults.Session.Account
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = defaults.Tracing.Exporter
	}
}

// loadFromFile loads configuration from a YAML file.
func (c *Config) loadFromFile(path string) error {
	path, err := expandHome(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Relative alert files resolve against the config file's directory.
	if c.AlertsFile != "" && !filepath.IsAbs(c.AlertsFile) {
		c.AlertsFile = filepath.Join(filepath.Dir(path), c.AlertsFile)
	}
	return nil
}

// loadFromEnv applies environment overrides. Unparseable durations are
// ignored.
func (c *Config) loadFromEnv() {
	if val := os.Getenv("FETCHWIRE_BASE_URL"); val != "" {
		c.BaseURL = val
	}
	if val := os.Getenv("FETCHWIRE_TOKEN"); val != "" {
		c.Token = val
	}
	if val := os.Getenv("FETCHWIRE_TIMEOUT"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			c.Timeout = duration
		}
	}

	if val := os.Getenv("FETCHWIRE_TRACE_EXPORTER"); val != "" {
		c.Tracing.Exporter = tracing.Exporter(strings.ToLower(val))
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" {
		c.Tracing.Endpoint = val
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
}

// Validate checks that the configuration is valid. Every problem is
// reported; the result is a *errors.ConfigError wrapping one
// *errors.ConfigError per offending key.
func (c *Config) Validate() error {
	var errs []error
	add := func(key, reason string) {
		errs = append(errs, &fwerrors.ConfigError{Key: key, Reason: reason})
	}

	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || !u.IsAbs() {
			add("base_url", fmt.Sprintf("must be an absolute url, got %q", c.BaseURL))
		}
	}

	hc := c.HTTPClient()
	if err := hc.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.MaxBodyBytes < 0 {
		add("max_body_bytes", fmt.Sprintf("must not be negative, got %d", c.MaxBodyBytes))
	}

	if c.RateLimit.RPS < 0 {
		add("rate_limit.rps", fmt.Sprintf("must not be negative, got %v", c.RateLimit.RPS))
	}
	if c.RateLimit.Burst < 0 {
		add("rate_limit.burst", fmt.Sprintf("must not be negative, got %d", c.RateLimit.Burst))
	}

	switch c.Session.Store {
	case SessionStoreKeyring, SessionStoreMemory:
	default:
		add("session.store", fmt.Sprintf("must be one of [keyring, memory], got %q", c.Session.Store))
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[c.Log.Level] {
		add("log.level", fmt.Sprintf("must be one of [trace, debug, info, warn, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Log.Format] {
		add("log.format", fmt.Sprintf("must be one of [json, text], got %q", c.Log.Format))
	}

	for i, d := range c.Alerts {
		if err := d.Validate(); err != nil {
			errs = append(errs, &fwerrors.ConfigError{Key: fmt.Sprintf("alerts[%d]", i), Reason: err.Error(), Cause: err})
		}
	}

	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return &fwerrors.ConfigError{
		Reason: fmt.Sprintf("%d invalid settings", len(errs)),
		Cause:  errors.Join(errs...),
	}
}

// HTTPClient returns the HTTP boundary configuration.
func (c *Config) HTTPClient() httpclient.Config {
	return httpclient.Config{
		Timeout:                 c.Timeout,
		RetryAttempts:           c.Retry.Attempts,
		RetryWaitMin:            c.Retry.WaitMin,
		RetryWaitMax:            c.Retry.WaitMax,
		UserAgent:               c.UserAgent,
		AllowNonIdempotentRetry: c.Retry.AllowNonIdempotent,
	}
}

// Logging returns the logger configuration.
func (c *Config) Logging() *log.Config {
	cfg := log.DefaultConfig()
	cfg.Level = c.Log.Level
	cfg.Format = log.Format(c.Log.Format)
	return cfg
}

// Directives returns the inline alert directives followed by those loaded
// from AlertsFile.
func (c *Config) Directives() ([]alert.Directive, error) {
	directives := append([]alert.Directive(nil), c.Alerts...)
	if c.AlertsFile == "" {
		return directives, nil
	}

	fromFile, err := alert.LoadGlob(c.AlertsFile)
	if err != nil {
		return nil, &fwerrors.ConfigError{Key: "alerts_file", Reason: fmt.Sprintf("failed to load %s", c.AlertsFile), Cause: err}
	}
	return append(directives, fromFile...), nil
}
