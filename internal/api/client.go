// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nvakumar/ssfrontend/internal/logging"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// TokenSource supplies the bearer token for each request.
type TokenSource interface {
	Token() (string, error)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the API client.
type ClientConfig struct {
	// BaseURL is the API origin, without the /api prefix.
	BaseURL string

	// Timeout bounds each request (default: 30s).
	Timeout time.Duration

	// RateLimit is the sustained requests per second; 0 disables pacing.
	RateLimit float64

	// RateBurst is the limiter bucket size (default: 20).
	RateBurst int

	// UserAgent is sent on every request.
	UserAgent string

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:   "http://localhost:5000",
		Timeout:   30 * time.Second,
		RateLimit: 10,
		RateBurst: 20,
		UserAgent: "ssfrontend",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the REST API. It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	log        *zap.SugaredLogger
}

// NewClient creates a client. tokens may be nil for unauthenticated use such
// as Login.
func NewClient(config *ClientConfig, tokens TokenSource, log *zap.SugaredLogger) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:5000"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = 20
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "ssfrontend"
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	return &Client{
		config:     &cfg,
		httpClient: hc,
		tokens:     tokens,
		limiter:    limiter,
		log:        logging.OrNop(log),
	}
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() ClientConfig {
	return *c.config
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

type request struct {
	method string
	path   string
	query  url.Values

	// json is encoded as the body when set.
	json any
	// body and contentType are used for pre-encoded bodies (multipart).
	body        io.Reader
	contentType string

	public bool
}

// do sends r and decodes a 2xx JSON body into out (when out is non-nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	start := time.Now()

	req, err := c.newRequest(ctx, r)
	if err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return classifyTransport(ctx, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debugw("request failed", "method", r.method, "path", r.path, "error", err)
		return classifyTransport(ctx, err)
	}
	defer drainAndClose(resp.Body)

	c.log.Debugw("request", "method", r.method, "path", r.path,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransport(ctx, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &ClientError{Type: ErrTypeInvalidResponse, Status: resp.StatusCode, Message: "empty response body"}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Status: resp.StatusCode, Message: "failed to decode response", Cause: err}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, r request) (*http.Request, error) {
	u := c.config.BaseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	body := r.body
	contentType := r.contentType
	if r.json != nil {
		data, err := json.Marshal(r.json)
		if err != nil {
			return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeNetwork, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if !r.public {
		if c.tokens == nil {
			return nil, ErrNoToken
		}
		tok, err := c.tokens.Token()
		if err != nil || tok == "" {
			return nil, &ClientError{Type: ErrTypeUnauthorized, Message: ErrNoToken.Message, Cause: err}
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

func classifyTransport(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
	}
	return &ClientError{Type: ErrTypeNetwork, Message: "could not reach server", Cause: err}
}

// statusError builds a ClientError from a non-2xx response, preferring the
// server's {"message": ...} text.
func statusError(resp *http.Response) error {
	msg := serverMessage(io.LimitReader(resp.Body, maxErrorBody))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	t := ErrTypeRejected
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		t = ErrTypeUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		t = ErrTypeNotFound
	case resp.StatusCode >= 500:
		t = ErrTypeServer
	case resp.StatusCode < 400:
		t = ErrTypeInvalidResponse
	}
	return &ClientError{Type: t, Status: resp.StatusCode, Message: msg}
}

func serverMessage(r io.Reader) string {
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		for _, s := range []string{body.Message, body.Msg, body.Error} {
			if s != "" {
				return s
			}
		}
		return ""
	}
	text := strings.TrimSpace(string(data))
	if len(text) > 200 || strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}

// drainAndClose lets the transport reuse the connection.
func drainAndClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, maxErrorBody))
	_ = r.Close()
}

// pathf formats a path, escaping every argument as a single segment.
func pathf(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, args...)
}
