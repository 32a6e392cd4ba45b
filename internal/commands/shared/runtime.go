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

package shared

import (
	"context"
	"io"
	"log/slog"

	"github.com/tombee/fetchwire/internal/config"
	"github.com/tombee/fetchwire/internal/log"
	"github.com/tombee/fetchwire/internal/tracing"
	"github.com/tombee/fetchwire/pkg/fetch"
	"github.com/tombee/fetchwire/pkg/httpclient"
	"github.com/tombee/fetchwire/pkg/middleware"
	"github.com/tombee/fetchwire/pkg/pipeline"
	"github.com/tombee/fetchwire/pkg/session"
)

// Runtime holds the collaborators a command needs to issue requests.
type Runtime struct {
	Config  *config.Config
	Logger  *slog.Logger
	Session *session.Store
	Alerts  *TerminalAlerts
	Tracer  *tracing.Provider
	Client  *fetch.Client
}

// NewRuntime loads configuration and builds the logger, session store,
// tracer provider and HTTP client. Diagnostics and alerts go to stderr.
func NewRuntime(ctx context.Context, stderr io.Writer) (*Runtime, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Logging()
	logCfg.Output = stderr
	switch {
	case GetVerbose():
		logCfg.Level = "debug"
	case GetQuiet():
		logCfg.Level = "error"
	}
	logger := log.New(logCfg)

	store, err := OpenSession(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	tracingCfg := cfg.Tracing
	tracingCfg.ServiceName = "fetchwire"
	tracingCfg.ServiceVersion, _, _ = GetVersion()
	provider, err := tracing.NewProvider(ctx, tracingCfg, tracing.WithStdoutWriter(stderr))
	if err != nil {
		return nil, NewConfigError("failed to set up tracing", err)
	}

	hc, err := httpclient.New(cfg.HTTPClient(), logger)
	if err != nil {
		return nil, NewConfigError("invalid http client configuration", err)
	}

	clientOpts := []fetch.ClientOption{
		fetch.WithDoer(hc),
		fetch.WithBaseURL(cfg.BaseURL),
		fetch.WithClientLogger(logger),
	}
	if cfg.MaxBodyBytes > 0 {
		clientOpts = append(clientOpts, fetch.WithMaxBodyBytes(cfg.MaxBodyBytes))
	}
	client, err := fetch.NewClient(clientOpts...)
	if err != nil {
		return nil, NewConfigError("invalid client configuration", err)
	}

	return &Runtime{
		Config:  cfg,
		Logger:  logger,
		Session: store,
		Alerts:  NewTerminalAlerts(stderr, IsTTY()),
		Tracer:  provider,
		Client:  client,
	}, nil
}

// LoadConfig loads configuration from --config and applies --trace.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, NewConfigError("failed to load config", err)
	}
	if exporter := GetTraceExporter(); exporter != "" {
		cfg.Tracing.Exporter = tracing.Exporter(exporter)
		if err := cfg.Tracing.Validate(); err != nil {
			return nil, NewUsageError("invalid --trace value", err)
		}
	}
	return cfg, nil
}

// OpenSession returns the session store selected by cfg. FETCHWIRE_TOKEN
// wins over any stored session and is never persisted. A stored session
// that cannot be read leaves the session anonymous.
func OpenSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*session.Store, error) {
	if cfg.Token != "" {
		store := session.NewStore(session.WithStoreLogger(logger))
		if err := store.Login(ctx, cfg.Token); err != nil {
			return nil, NewConfigError("invalid FETCHWIRE_TOKEN", err)
		}
		return store, nil
	}

	if cfg.Session.Store == config.SessionStoreMemory {
		return session.NewStore(session.WithStoreLogger(logger)), nil
	}

	store := session.NewStore(
		session.WithStoreLogger(logger),
		session.WithPersister(session.NewKeyring(cfg.Session.Service, cfg.Session.Account)),
	)
	if err := store.Restore(ctx); err != nil {
		logger.WarnContext(ctx, "stored session unreadable, continuing without it", log.Error(err))
	}
	return store, nil
}

// Pipeline composes the standard chain around the runtime's client, with
// tracing and rate limiting when configured and extra middleware after
// them.
func (r *Runtime) Pipeline(extra ...fetch.Middleware) (*pipeline.Pipeline, error) {
	directives, err := r.Config.Directives()
	if err != nil {
		return nil, NewConfigError("failed to load alert directives", err)
	}

	var mws []fetch.Middleware
	if r.Config.Tracing.Enabled() {
		mws = append(mws, middleware.Tracing(r.Tracer.TracerProvider()))
	}
	if rl := r.Config.RateLimit; rl.Enabled() {
		mws = append(mws, middleware.RateLimit(middleware.NewLimiter(rl.RPS, rl.Burst)))
	}
	mws = append(mws, extra...)

	env := fetch.Env{
		Session:  r.Session,
		Dispatch: r.Session,
		Alerts:   r.Alerts,
		Logger:   r.Logger,
	}
	p, err := pipeline.New(r.Client.Perform, env,
		pipeline.WithMiddleware(mws...),
		pipeline.WithAlerts(directives...),
	)
	if err != nil {
		return nil, NewConfigError("invalid alert directives", err)
	}
	return p, nil
}

// Close flushes pending spans.
func (r *Runtime) Close(ctx context.Context) error {
	return r.Tracer.Shutdown(ctx)
}
