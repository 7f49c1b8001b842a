// Package api is the only way the console talks to the content backend.
//
// Every call goes through Client.Do, which attaches the session's bearer
// token and normalizes backend error responses into *Error. Transport
// failures, cancellation included, are returned untouched so callers can
// tell them apart with IsCanceled.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://test-fe.mysellerpintar.com/api"

	contentTypeJSON = "application/json"
	maxErrorBody    = 1 << 20
)

// Request describes one outbound call. Body is sent as-is when it is an
// io.Reader, using ContentType; any other non-nil Body is encoded as JSON.
type Request struct {
	Method      string
	Path        string
	Params      url.Values
	Body        any
	ContentType string
}

type Client struct {
	log     *slog.Logger
	baseURL *url.URL
	http    *http.Client
	header  http.Header
}

type options struct {
	log     *slog.Logger
	base    http.RoundTripper
	tokens  TokenSource
	timeout time.Duration
}

type Option func(*options)

// WithTokenSource sets where the bearer token of each request comes from.
func WithTokenSource(ts TokenSource) Option {
	return func(o *options) { o.tokens = ts }
}

// WithTransport replaces http.DefaultTransport as the underlying transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithTimeout bounds each round trip. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	const op = "client.api.New"

	o := options{
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		base:   http.DefaultTransport,
		tokens: noToken{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: base url %q must be absolute", op, baseURL)
	}

	header := make(http.Header)
	header.Set("Content-Type", contentTypeJSON)
	header.Set("Accept", contentTypeJSON)

	return &Client{
		log:     o.log,
		baseURL: u,
		header:  header,
		http: &http.Client{
			Timeout:   o.timeout,
			Transport: instrument(&bearerTransport{base: o.base, tokens: o.tokens}),
		},
	}, nil
}

// Do sends req and decodes a successful JSON response into out, which may be
// nil. Responses with status 400 and above come back as *Error.
func (c *Client) Do(ctx context.Context, req Request, out any) (*http.Response, error) {
	const op = "client.api.Do"

	log := c.log.With(
		slog.String("op", op),
		slog.String("method", req.Method),
		slog.String("path", req.Path),
	)

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// Passed through as-is: cancellation must stay recognizable.
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := normalize(resp)
		log.Debug("backend returned error", slog.Int("status", apiErr.Status), slog.String("message", apiErr.Message))
		return resp, apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return resp, nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return resp, fmt.Errorf("%s: decode response: %w", op, err)
	}

	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	u := c.resolve(req.Path)
	if len(req.Params) > 0 {
		u.RawQuery = req.Params.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)

	switch b := req.Body.(type) {
	case nil:
	case io.Reader:
		body = b
		contentType = req.ContentType
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, err
	}

	for k, v := range c.header {
		httpReq.Header[k] = append([]string(nil), v...)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	return httpReq, nil
}

// resolve joins an already escaped path onto the base URL.
func (c *Client) resolve(path string) *url.URL {
	return c.baseURL.JoinPath(strings.TrimLeft(path, "/"))
}

// normalize turns an error response into *Error, taking the message from the
// backend's "message" field when there is one.
func normalize(resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &Error{
		Status:   resp.StatusCode,
		Message:  FallbackMessage,
		Response: resp,
		Body:     body,
	}

	var payload struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}

	switch m := payload.Message.(type) {
	case string:
		if m != "" {
			apiErr.Message = m
		}
	case []any:
		// Some validation errors come back as a list of messages.
		parts := make([]string, 0, len(m))
		for _, p := range m {
			if s, ok := p.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			apiErr.Message = strings.Join(parts, "; ")
		}
	}

	return apiErr
}
