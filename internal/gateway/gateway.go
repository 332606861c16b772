// Package gateway issues HTTP calls against the portal API with cookie-held
// credentials, a uniform timeout, and structured error extraction.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the deadline applied to every request.
const DefaultTimeout = 10 * time.Second

// maxResponseSize limits response body reads to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Sender is the request surface consumed by the session store, chat session,
// and orders client. body may be nil; out may be nil when the response body
// is irrelevant.
type Sender interface {
	Send(ctx context.Context, method, path string, body, out any) error
}

// Client implements Sender against a single base URL. Session credentials
// live in the cookie jar; callers never handle tokens directly.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a gateway client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Jar: jar},
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Send issues a JSON request and decodes the response into out. The return
// value is nil or exactly one of the outcome error types.
func (c *Client) Send(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &ParseError{Endpoint: path, Err: fmt.Errorf("encode request body: %w", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return &NetworkError{Endpoint: path, Err: err}
	}
	// GET carries no body, so no content header is forced on it.
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(ctx, req, path, out)
}

// SendForm issues a form-encoded POST. Used by the credential exchange,
// which the backend accepts as application/x-www-form-urlencoded only.
func (c *Client) SendForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return &NetworkError{Endpoint: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(ctx, req, path, out)
}

func (c *Client) do(ctx context.Context, req *http.Request, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return classifyTransportError(path, c.timeout, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return classifyTransportError(path, c.timeout, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &AuthError{Endpoint: path}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{
			Status:  resp.StatusCode,
			Message: errorMessage(resp, data),
			Details: detailsFrom(data),
		}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ParseError{Endpoint: path, Err: err}
	}
	return nil
}

func classifyTransportError(path string, limit time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Endpoint: path, Limit: limit}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Endpoint: path, Limit: limit}
	}
	return &NetworkError{Endpoint: path, Err: err}
}

// errorBody matches the structured error shapes the backend emits.
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// errorMessage extracts a human-readable message from an error response,
// preferring detail, then message, then error, then a generic status line.
func errorMessage(resp *http.Response, data []byte) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		switch {
		case body.Detail != "":
			return body.Detail
		case body.Message != "":
			return body.Message
		case body.Error != "":
			return body.Error
		}
	}
	return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}

func detailsFrom(data []byte) json.RawMessage {
	if len(data) == 0 || !json.Valid(data) {
		return nil
	}
	return json.RawMessage(data)
}
