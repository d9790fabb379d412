package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource supplies the bearer token attached to each request. An empty
// token means the request is sent unauthenticated.
type TokenSource interface {
	Token() (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() (string, error)

// Token implements TokenSource.
func (f TokenFunc) Token() (string, error) { return f() }

// Options configures a Client.
type Options struct {
	// BaseURL is the backend root (e.g., https://tasks.example.com).
	BaseURL string

	// Version is inserted as /api/{version}.
	Version string

	// Timeout bounds a single request. Zero means 30 seconds.
	Timeout time.Duration

	// Jar carries the refresh_token cookie between requests.
	Jar http.CookieJar

	// Tokens supplies the Authorization bearer token.
	Tokens TokenSource

	// Language returns the Accept-Language value; nil sends none.
	Language func() string

	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Client is a thin HTTP client for the task backend REST API.
// It attaches the bearer token and cookies, and unwraps the
// {success, data, error|message} response envelope. Requests are never
// retried.
type Client struct {
	baseURL    string
	prefix     string
	tokens     TokenSource
	language   func() string
	httpClient *http.Client
}

// NewClient creates a new backend HTTP client.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	version := strings.Trim(opts.Version, "/")
	if version == "" {
		version = "v1"
	}

	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		prefix:   "/api/" + version,
		tokens:   opts.Tokens,
		language: opts.Language,
		httpClient: &http.Client{
			Timeout:   timeout,
			Jar:       opts.Jar,
			Transport: opts.Transport,
		},
	}
}

// BaseURL returns the backend root URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs an HTTP GET request and decodes the envelope data.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Put performs an HTTP PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// Delete performs an HTTP DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// envelope is the backend's response wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// errorText extracts a human-readable message from the envelope.
func (e envelope) errorText() string {
	if len(e.Error) > 0 && string(e.Error) != "null" {
		var s string
		if json.Unmarshal(e.Error, &s) == nil {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(e.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
		return string(e.Error)
	}
	return e.Message
}

// do is the core HTTP method that builds the request, handles auth
// headers, and decodes the response envelope.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body any,
	result any,
) error {
	url := c.baseURL + c.prefix + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.language != nil {
		if lang := c.language(); lang != "" {
			req.Header.Set("Accept-Language", lang)
		}
	}
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("reading access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("reading response body: %w", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    failureMessage(respBody),
		}
	}

	trimmed := bytes.TrimSpace(respBody)
	if resp.StatusCode == http.StatusNoContent || len(trimmed) == 0 {
		return nil
	}

	// Bare arrays and scalars carry no envelope.
	if trimmed[0] != '{' {
		if result == nil {
			return nil
		}
		if err := json.Unmarshal(trimmed, result); err != nil {
			return &DecodeError{Method: method, Path: path, Body: truncate(trimmed), Err: err}
		}
		return nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return &DecodeError{Method: method, Path: path, Body: truncate(trimmed), Err: err}
	}

	if env.Success != nil && !*env.Success {
		return &HTTPError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    env.errorText(),
		}
	}

	if result == nil {
		return nil
	}

	payload := []byte(env.Data)
	if env.Success == nil && len(env.Data) == 0 {
		// Bare object without an envelope.
		payload = trimmed
	}
	if len(payload) == 0 || string(payload) == "null" {
		return nil
	}

	if err := json.Unmarshal(payload, result); err != nil {
		return &DecodeError{Method: method, Path: path, Body: truncate(payload), Err: err}
	}

	return nil
}

// failureMessage pulls the server's error text out of a non-2xx body,
// falling back to the raw body.
func failureMessage(body []byte) string {
	var env envelope
	if json.Unmarshal(body, &env) == nil {
		if msg := env.errorText(); msg != "" {
			return msg
		}
	}
	return truncate(body)
}

func truncate(b []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
