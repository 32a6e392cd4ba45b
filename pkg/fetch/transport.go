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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"

	"github.com/tombee/fetchwire/internal/log"
	"github.com/tombee/fetchwire/internal/tracing"
	fwerrors "github.com/tombee/fetchwire/pkg/errors"
	"github.com/tombee/fetchwire/pkg/httpclient"
	"github.com/tombee/fetchwire/pkg/response"
)

// DefaultMaxBodyBytes caps how much of a reply is read.
const DefaultMaxBodyBytes int64 = 10 << 20

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs exchanges against an optional base URL.
type Client struct {
	doer         Doer
	baseURL      *url.URL
	logger       *slog.Logger
	maxBodyBytes int64
}

// ClientOption configures a Client.
type ClientOption func(*Client) error

// WithDoer sets the HTTP boundary. Defaults to httpclient.New with its
// default configuration.
func WithDoer(d Doer) ClientOption {
	return func(c *Client) error {
		c.doer = d
		return nil
	}
}

// WithBaseURL resolves relative request URLs against base.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) error {
		if base == "" {
			c.baseURL = nil
			return nil
		}
		u, err := url.Parse(base)
		if err != nil {
			return &fwerrors.ConfigError{Key: "base_url", Reason: "invalid url", Cause: err}
		}
		if !u.IsAbs() {
			return &fwerrors.ConfigError{Key: "base_url", Reason: fmt.Sprintf("must be absolute, got %q", base)}
		}
		c.baseURL = u
		return nil
	}
}

// WithClientLogger sets the logger used for exchange-level trace output.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithMaxBodyBytes caps how much of each reply is read.
func WithMaxBodyBytes(n int64) ClientOption {
	return func(c *Client) error {
		if n <= 0 {
			return &fwerrors.ConfigError{Key: "max_body_bytes", Reason: fmt.Sprintf("must be > 0, got %d", n)}
		}
		c.maxBodyBytes = n
		return nil
	}
}

// NewClient creates a Client.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{maxBodyBytes: DefaultMaxBodyBytes}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = log.WithComponent(log.OrDefault(c.logger), "fetch")

	if c.doer == nil {
		hc, err := httpclient.New(httpclient.DefaultConfig(), c.logger)
		if err != nil {
			return nil, err
		}
		c.doer = hc
	}
	return c, nil
}

// Perform is the base Transport.
//
// Construction problems (unresolvable wildcard, unencodable body) and
// undecodable replies come back as an errored Response with a nil error.
// When no reply is received the errored Response is accompanied by a
// *errors.TransportError.
func (c *Client) Perform(ctx context.Context, rawURL string, opts Options) (*response.Response, error) {
	req, err := c.newRequest(ctx, rawURL, opts)
	if err != nil {
		log.Trace(ctx, c.logger, "request construction failed", slog.String(log.URLKey, rawURL), log.Error(err))
		return response.Errored(asInvalidRequest(err), nil), nil
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return c.networkFault(req, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return c.networkFault(req, err)
	}

	out := decode(body, opts)
	if !out.IsErrored() {
		status := response.StatusFailure
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			status = response.StatusSuccess
		}
		out = response.WithStatus(status, out)
	}
	out.Meta.HTTPStatus = resp.StatusCode
	out.Meta.RequestID = tracing.RequestIDFrom(ctx).String()

	log.Trace(ctx, c.logger, "exchange complete",
		slog.String(log.MethodKey, req.Method),
		slog.String(log.URLKey, httpclient.SanitizeURL(req.URL)),
		slog.Int(log.HTTPStatusKey, resp.StatusCode),
		slog.String(log.StatusKey, string(out.Status)),
	)
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, rawURL string, opts Options) (*http.Request, error) {
	built, err := BuildURL(rawURL, opts.Wildcards, opts.Params)
	if err != nil {
		return nil, err
	}

	target, err := c.resolve(built)
	if err != nil {
		return nil, err
	}

	payload, err := encodeBody(opts)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, opts.HTTPMethod(), target, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", opts.ContentType.MIME())
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func (c *Client) resolve(built string) (string, error) {
	u, err := url.Parse(built)
	if err != nil {
		return "", &fwerrors.ValidationError{Field: "url", Message: err.Error()}
	}
	if u.IsAbs() {
		return built, nil
	}
	if c.baseURL == nil {
		return "", &fwerrors.ValidationError{
			Field:      "url",
			Message:    fmt.Sprintf("relative url %q with no base url", built),
			Suggestion: "set base_url or pass an absolute url",
		}
	}
	return c.baseURL.ResolveReference(u).String(), nil
}

func (c *Client) networkFault(req *http.Request, cause error) (*response.Response, error) {
	te := &fwerrors.TransportError{
		Method:    req.Method,
		URL:       httpclient.SanitizeURL(req.URL),
		Retryable: !errors.Is(cause, context.Canceled),
		Cause:     cause,
	}
	out := response.Errored(te, nil)
	out.Meta.RequestID = tracing.RequestIDFrom(req.Context()).String()
	return out, te
}

// asInvalidRequest classifies construction failures that carry no
// classification of their own.
func asInvalidRequest(err error) error {
	var classified fwerrors.ErrorClassifier
	if errors.As(err, &classified) {
		return err
	}
	return &fwerrors.ValidationError{Field: "request", Message: err.Error()}
}

// encodeBody serializes the body, returning nil for no body.
func encodeBody(opts Options) ([]byte, error) {
	if isEmptyBody(opts.Body) {
		return nil, nil
	}

	switch b := opts.Body.(type) {
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	case string:
		if !opts.IsJSON() {
			return []byte(b), nil
		}
	}

	if !opts.IsJSON() {
		return []byte(fmt.Sprint(opts.Body)), nil
	}

	payload, err := json.Marshal(opts.Body)
	if err != nil {
		return nil, &fwerrors.ValidationError{Field: "body", Message: err.Error()}
	}
	return payload, nil
}

// isEmptyBody reports whether v should be sent as no body at all.
func isEmptyBody(v any) bool {
	if v == nil {
		return true
	}
	switch b := v.(type) {
	case string:
		return b == ""
	case []byte:
		return len(b) == 0
	case json.RawMessage:
		return len(b) == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return rv.IsNil() || rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// decode converts a reply body into an unsettled Response carrying the
// payload, or an errored one when the body cannot be parsed.
func decode(body []byte, opts Options) *response.Response {
	if len(bytes.TrimSpace(body)) == 0 {
		return response.Empty()
	}

	if !opts.IsJSON() {
		return response.WithData(string(body), nil)
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return response.Errored(&fwerrors.DecodeError{ContentType: opts.ContentType.MIME(), Cause: err}, nil)
	}
	return response.WithData(data, nil)
}
