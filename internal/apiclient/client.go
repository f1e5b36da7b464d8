// Package apiclient talks to the portal's REST backend: JSON in and out,
// bearer authentication, and a single error shape for every failure.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:3500"

// Error codes for failures that never got a server response.
const (
	CodeNoResponse   = "NO_RESPONSE"
	CodeRequestError = "REQUEST_ERROR"
)

// APIError is the normalised error returned by every Client call.
type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	switch {
	case e.Status != 0 && e.Code != "":
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	case e.Code != "":
		return fmt.Sprintf("api: %s: %s", e.Code, e.Message)
	}
	return "api: " + e.Message
}

// Hooks run around every request. OnEnd always fires once OnStart has.
type Hooks struct {
	OnStart func(req *http.Request)
	OnEnd   func(req *http.Request, err error)
}

// Client is a small JSON client bound to one base URL.
type Client struct {
	baseURL string
	http    *http.Client
	token   func() string
	hooks   Hooks
	headers http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithToken sends a fixed bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = func() string { return token } }
}

// WithTokenSource asks fn for the bearer token on every request.
func WithTokenSource(fn func() string) Option { return func(c *Client) { c.token = fn } }

// WithHooks installs lifecycle hooks.
func WithHooks(h Hooks) Option { return func(c *Client) { c.hooks = h } }

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// New returns a client for baseURL, DefaultBaseURL when empty.
func New(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		headers: http.Header{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Get decodes the JSON response of GET path into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post sends body as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put sends body as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Patch sends body as JSON and decodes the response into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues DELETE path and decodes any response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do performs one request. A nil out discards the response body. Every
// error returned is an *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return &APIError{Message: err.Error(), Code: CodeRequestError}
	}

	if c.hooks.OnStart != nil {
		c.hooks.OnStart(req)
	}
	err = c.do(req, out)
	if c.hooks.OnEnd != nil {
		c.hooks.OnEnd(req, err)
	}
	return err
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	u, err := c.resolve(path)
	if err != nil {
		return nil, err
	}
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, err
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

func (c *Client) resolve(path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("base url: %w", err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("path: %w", err)
	}
	base.Path = strings.TrimRight(base.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	base.RawQuery = ref.RawQuery
	return base.String(), nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &APIError{Message: err.Error(), Code: CodeRequestError}
		}
		return &APIError{Message: "No response received from server", Status: 0, Code: CodeNoResponse}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Message: "No response received from server", Status: resp.StatusCode, Code: CodeNoResponse}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp.StatusCode, b)
	}
	if out == nil || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return &APIError{Message: "invalid JSON response: " + err.Error(), Status: resp.StatusCode, Code: CodeRequestError}
	}
	return nil
}

func responseError(status int, body []byte) *APIError {
	e := &APIError{Message: "An error occurred", Status: status}
	var env struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
		Details any    `json:"details"`
	}
	if json.Unmarshal(body, &env) == nil {
		if env.Message != "" {
			e.Message = env.Message
		}
		switch v := env.Code.(type) {
		case string:
			e.Code = v
		case float64:
			e.Code = fmt.Sprintf("%d", int64(v))
		}
		e.Details = env.Details
	}
	return e
}

// AsAPIError extracts an *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
