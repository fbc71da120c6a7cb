// Package client talks to the promptvault HTTP API and holds the local
// prompt list the CLI works against.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"promptvault/internal/api"
	"promptvault/internal/apperr"
)

// ErrAuthExpired is returned for any 401. Callers must not navigate or
// re-authenticate on their own; the Boundary handles it.
var ErrAuthExpired = fmt.Errorf("%w: session expired or missing", apperr.ErrUnauthorized)

// APIError is a non-2xx response other than 401. Message is the server's
// error text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   token,
	}
}

// WithHTTPClient replaces the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

func (c *Client) Token() string { return c.token }

func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Register(ctx context.Context, email, password string) (api.User, error) {
	var u api.User
	err := c.do(ctx, http.MethodPost, "/api/auth/register", api.Credentials{Email: email, Password: password}, &u)
	return u, err
}

// Login stores the returned session token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (api.User, error) {
	var u api.User
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", api.Credentials{Email: email, Password: password}, &u); err != nil {
		return api.User{}, err
	}
	c.token = u.Token
	return u, nil
}

func (c *Client) Me(ctx context.Context) (api.User, error) {
	var u api.User
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u)
	return u, err
}

func (c *Client) ListPrompts(ctx context.Context) ([]api.Prompt, error) {
	var out []api.Prompt
	err := c.do(ctx, http.MethodGet, "/api/prompts", nil, &out)
	return out, err
}

func (c *Client) CreatePrompt(ctx context.Context, d api.Draft) (api.Prompt, error) {
	var out api.Prompt
	err := c.do(ctx, http.MethodPost, "/api/prompts", d, &out)
	return out, err
}

func (c *Client) GetPrompt(ctx context.Context, id string) (api.Prompt, error) {
	var out api.Prompt
	err := c.do(ctx, http.MethodGet, "/api/prompts/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) UpdatePrompt(ctx context.Context, id string, p api.Patch) (api.Prompt, error) {
	var out api.Prompt
	err := c.do(ctx, http.MethodPut, "/api/prompts/"+url.PathEscape(id), p, &out)
	return out, err
}

func (c *Client) DeletePrompt(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/prompts/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Export(ctx context.Context) (api.Export, error) {
	var out api.Export
	err := c.do(ctx, http.MethodGet, "/api/prompts/export", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && path != "/api/auth/login" {
		return ErrAuthExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: readError(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readError(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(b))
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == status
}
