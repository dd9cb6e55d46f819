// Package client provides the access layer for the events API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/eventdesk/eventdesk/internal/apierr"
	"github.com/eventdesk/eventdesk/internal/config"
	"github.com/eventdesk/eventdesk/internal/httpclient"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HeaderRequestID carries the per-call identifier sent to the server.
const HeaderRequestID = "X-Request-ID"

// maxLoggedBody caps the response body attached to debug logs.
const maxLoggedBody = 4096

// Observer receives one notification per finished call. status is 0 when
// the call failed before a usable response was received.
type Observer interface {
	ObserveRequest(method, endpoint string, status int, elapsed time.Duration)
}

// RequestOptions configures a single call. Zero values select the defaults.
type RequestOptions struct {
	Method  string
	Header  http.Header
	Body    any
	Timeout time.Duration
}

// Response describes a successful call.
type Response struct {
	StatusCode int
	// NoContent is set for 204 responses, whose body is never read.
	NoContent bool
	Body      []byte
}

// Client performs calls against the events API.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
	observer   Observer
	writes     *keyedMutex
	now        func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport built from the configuration.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithClock overrides the time source used by aggregates.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a client from cfg.
func New(cfg *config.Config, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Client{
		baseURL: config.NormalizeServerURL(cfg.ServerURL),
		timeout: cfg.Timeout,
		logger:  logger.With().Str("component", "api_client").Logger(),
		now:     time.Now,
	}
	if c.timeout <= 0 {
		c.timeout = config.DefaultTimeout
	}
	if !cfg.ConcurrentWrites {
		c.writes = newKeyedMutex()
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		hc, err := httpclient.FromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("create http client: %w", err)
		}
		c.httpClient = hc
	}

	return c, nil
}

// BaseURL returns the API base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs one call against endpoint and decodes a JSON success body
// into out when out is non-nil. Failures are returned as *apierr.Error.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions, out any) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	logger := c.logger.With().
		Str("method", method).
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Logger()
	logger.Info().Msg("api request")

	start := time.Now()
	status := 0
	defer func() {
		if c.observer != nil {
			c.observer.ObserveRequest(method, endpoint, status, time.Since(start))
		}
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := transportError(ctx, err)
		logger.Warn().Err(apiErr).Dur("elapsed", time.Since(start)).Msg("api request failed")
		return nil, apiErr
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		status = resp.StatusCode
		logger.Debug().Int("status", status).Msg("api response without content")
		return &Response{StatusCode: resp.StatusCode, NoContent: true}, nil
	}

	// The body is read under the same deadline as the call itself.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := transportError(ctx, err)
		logger.Warn().Err(apiErr).Int("status", resp.StatusCode).Msg("read response body failed")
		return nil, apiErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		status = resp.StatusCode
		apiErr := apierr.New(resp.StatusCode, reasonPhrase(resp), apierr.ParsePayload(data))
		logger.Warn().Int("status", resp.StatusCode).Str("error", apiErr.Message).Msg("api error response")
		return nil, apiErr
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			apiErr := apierr.Network(apierr.MsgInvalidPayload, err)
			logger.Warn().Err(err).Int("status", resp.StatusCode).Msg("decode response body failed")
			return nil, apiErr
		}
	}

	status = resp.StatusCode
	event := logger.Debug().Int("status", status).Int("bytes", len(data))
	if len(data) <= maxLoggedBody && json.Valid(data) {
		event = event.RawJSON("body", data)
	}
	event.Msg("api response")

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// transportError classifies a failure of the round trip or body read.
// An expired or canceled context wins over whatever the transport reported.
func transportError(ctx context.Context, err error) *apierr.Error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return apierr.FromTransport(err)
}

// reasonPhrase returns the status text sent by the server, or the standard one.
func reasonPhrase(resp *http.Response) string {
	if _, reason, ok := strings.Cut(resp.Status, " "); ok && reason != "" {
		return reason
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return "Unknown Status"
}

// toAPIError normalizes an error returned by a typed call.
func toAPIError(err error) *apierr.Error {
	if err == nil {
		return nil
	}
	if apiErr, ok := apierr.As(err); ok {
		return apiErr
	}
	return apierr.FromTransport(err)
}
