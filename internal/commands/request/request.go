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

// Package request implements the "fetchwire request" command.
package request

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tombee/fetchwire/internal/cli/format"
	"github.com/tombee/fetchwire/internal/commands/shared"
	"github.com/tombee/fetchwire/internal/log"
	"github.com/tombee/fetchwire/pkg/fetch"
	"github.com/tombee/fetchwire/pkg/middleware"
	fwrequest "github.com/tombee/fetchwire/pkg/request"
	"github.com/tombee/fetchwire/pkg/response"
)

type flags struct {
	method      string
	data        string
	params      []string
	wildcards   []string
	headers     []string
	text        bool
	selectExpr  string
	concurrency int
	metrics     bool
}

// Result is one URL's outcome, as printed for multi-URL runs.
type Result struct {
	URL      string             `json:"url"`
	Response *response.Response `json:"response"`
}

// NewCommand creates the request command.
func NewCommand() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "request <url>...",
		Short: "Send requests through the middleware pipeline",
		Long: `Send one or more requests through the standard pipeline and print
each Response as JSON.

URLs may contain :name wildcards, filled from --wildcard. Relative URLs are
resolved against base_url. Several URLs are fetched concurrently.

Exit codes: 0 all succeeded, 1 a server failure, 4 no usable reply.`,
		Example: `  fetchwire request https://api.example.com/users/:id -w id=42
  fetchwire request /users -p status=active -p status=invited -s '.[].name'
  fetchwire request /users -X POST -d '{"displayName": "Ada"}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f)
		},
	}

	cmd.Flags().StringVarP(&f.method, "method", "X", "GET", "HTTP method")
	cmd.Flags().StringVarP(&f.data, "data", "d", "", "Request body (JSON, or text with --text); @file reads a file")
	cmd.Flags().StringArrayVarP(&f.params, "param", "p", nil, "Query parameter key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&f.wildcards, "wildcard", "w", nil, "URL wildcard name=value (repeatable)")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, `Header "Name: value" (repeatable)`)
	cmd.Flags().BoolVar(&f.text, "text", false, "Send and read plain text instead of JSON")
	cmd.Flags().StringVarP(&f.selectExpr, "select", "s", "", "jq expression applied to successful data")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 4, "Maximum requests in flight")
	cmd.Flags().BoolVar(&f.metrics, "metrics", false, "Print request metrics to stderr when done")

	return cmd
}

func run(cmd *cobra.Command, urls []string, f flags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts, err := buildOptions(f)
	if err != nil {
		return err
	}

	var extra []fetch.Middleware
	if f.selectExpr != "" {
		project, err := middleware.Project(f.selectExpr)
		if err != nil {
			return shared.NewUsageError("invalid --select", err)
		}
		extra = append(extra, project)
	}

	var registry *prometheus.Registry
	if f.metrics {
		registry = prometheus.NewRegistry()
		extra = append(extra, middleware.NewMetrics(registry).Middleware())
	}

	rt, err := shared.NewRuntime(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			rt.Logger.Warn("failed to flush traces", log.Error(err))
		}
	}()

	p, err := rt.Pipeline(extra...)
	if err != nil {
		return err
	}

	results := fetchAll(ctx, rt.Logger, urls, f.concurrency, func(url string) *fwrequest.Driver {
		return p.NewDriver(url, opts,
			fwrequest.WithLogger(rt.Logger),
			fwrequest.WithEffects(traceTransitions(rt.Logger, url)),
		)
	})

	out := cmd.OutOrStdout()
	if err := printResults(out, results, !shared.GetJSON() && format.IsTerminal(out)); err != nil {
		return err
	}

	if registry != nil {
		if err := writeMetrics(cmd.ErrOrStderr(), registry); err != nil {
			return err
		}
	}

	return exitStatus(results)
}

// fetchAll mounts one Driver per URL, at most limit at a time, and returns
// the settled responses in argument order. Exchanges that got no reply
// are logged at debug; their errored responses are still returned.
func fetchAll(ctx context.Context, logger *slog.Logger, urls []string, limit int, newDriver func(url string) *fwrequest.Driver) []Result {
	results := make([]Result, len(urls))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, url := range urls {
		g.Go(func() error {
			resp, err := newDriver(url).Mount(ctx)
			if err != nil {
				logger.DebugContext(ctx, "no reply received",
					slog.String(log.URLKey, url),
					log.Error(err),
				)
			}
			results[i] = Result{URL: url, Response: resp}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func traceTransitions(logger *slog.Logger, url string) fwrequest.Effect {
	return func(ctx context.Context, resp *response.Response, prev response.Status) {
		log.Trace(ctx, logger, "status changed",
			slog.String(log.URLKey, url),
			slog.String("from", string(prev)),
			slog.String(log.StatusKey, string(resp.Status)),
		)
	}
}

func printResults(w io.Writer, results []Result, color bool) error {
	var v any = results
	if len(results) == 1 {
		v = results[0].Response
	}

	text, err := format.JSON(v, color)
	if err != nil {
		return fmt.Errorf("failed to print response: %w", err)
	}
	_, err = fmt.Fprintln(w, text)
	return err
}

func writeMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

// exitStatus maps the worst outcome to an exit error: errored beats
// failure.
func exitStatus(results []Result) error {
	var failed, errored int
	for _, r := range results {
		switch {
		case r.Response.IsErrored():
			errored++
		case r.Response.IsFailure():
			failed++
		}
	}

	switch {
	case errored > 0:
		return shared.NewErroredError(fmt.Sprintf("%d of %d requests got no usable reply", errored, len(results)))
	case failed > 0:
		return shared.NewRequestFailedError(fmt.Sprintf("%d of %d requests failed", failed, len(results)))
	}
	return nil
}

func buildOptions(f flags) (fetch.Options, error) {
	opts := fetch.Options{Method: f.method}
	if f.text {
		opts.ContentType = fetch.ContentTypeText
	}

	body, err := parseBody(f.data, f.text)
	if err != nil {
		return fetch.Options{}, err
	}
	opts.Body = body

	params, err := parsePairs("param", f.params)
	if err != nil {
		return fetch.Options{}, err
	}
	if len(params) > 0 {
		opts.Params = make(map[string]any, len(params))
		for k, values := range params {
			if len(values) == 1 {
				opts.Params[k] = values[0]
			} else {
				opts.Params[k] = values
			}
		}
	}

	wildcards, err := parsePairs("wildcard", f.wildcards)
	if err != nil {
		return fetch.Options{}, err
	}
	if len(wildcards) > 0 {
		opts.Wildcards = make(map[string]string, len(wildcards))
		for k, values := range wildcards {
			opts.Wildcards[k] = values[len(values)-1]
		}
	}

	headers, err := parseHeaders(f.headers)
	if err != nil {
		return fetch.Options{}, err
	}
	opts.Headers = headers

	return opts, nil
}

// parseBody reads --data. "@path" reads the file; JSON bodies are decoded
// so the wire layer can re-key them.
func parseBody(data string, text bool) (any, error) {
	if data == "" {
		return nil, nil
	}

	raw := []byte(data)
	if strings.HasPrefix(data, "@") {
		content, err := os.ReadFile(data[1:])
		if err != nil {
			return nil, shared.NewUsageError("cannot read --data file", err)
		}
		raw = content
	}

	if text {
		return string(raw), nil
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, shared.NewUsageError("--data is not valid JSON", err)
	}
	return body, nil
}

// parsePairs splits key=value arguments. Repeated keys keep every value
// in order.
func parsePairs(flag string, pairs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, shared.NewUsageError(fmt.Sprintf("invalid --%s %q", flag, pair), fmt.Errorf("expected key=value"))
		}
		out[key] = append(out[key], value)
	}
	return out, nil
}

func parseHeaders(headers []string) (map[string]string, error) {
	if len(headers) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(headers))
	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, shared.NewUsageError(fmt.Sprintf("invalid --header %q", h), fmt.Errorf(`expected "Name: value"`))
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}
