// Package remnawave is a minimal client for the Remnawave panel API.
// It implements ports.Provisioner.
package remnawave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/remnawizard/pkg/domain"
)

const createUserPath = "/api/users"

// Client talks to a Remnawave panel.
type Client struct {
	baseURL    string
	token      string
	cookie     string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithCookie sends a fixed Cookie header, for panels behind a cookie-gated reverse proxy.
func WithCookie(cookie string) Option {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new panel client authenticated with a bearer token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Response json.RawMessage `json:"response"`
}

type errorBody struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}

// CreateUser posts req to the panel.
// Non-2xx answers are returned as *domain.APIError. Any other failure is a *domain.TransportError.
func (c *Client) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.UserRecord, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &domain.TransportError{Message: fmt.Sprintf("encode request: %v", err), Err: err}
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, createUserPath, bytes.NewReader(payload))
	if err != nil {
		return nil, &domain.TransportError{Message: fmt.Sprintf("build request: %v", err), Err: err}
	}

	var record domain.UserRecord
	if err := c.do(httpReq, &record); err != nil {
		return nil, err
	}
	if record.UUID == "" || record.Username == "" {
		return nil, &domain.TransportError{Message: "user record is missing uuid or username"}
	}
	return &record, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.TransportError{Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.TransportError{Message: fmt.Sprintf("read response: %v", err), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp.StatusCode, body)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &domain.TransportError{Message: fmt.Sprintf("parse response: %v (status %d)", err, resp.StatusCode), Err: err}
	}
	if len(env.Response) == 0 || string(env.Response) == "null" {
		return &domain.TransportError{Message: fmt.Sprintf("response envelope is empty (status %d)", resp.StatusCode)}
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return &domain.TransportError{Message: fmt.Sprintf("parse user record: %v", err), Err: err}
	}
	return nil
}

// apiError maps an error body onto domain.APIError.
// The code falls back to the HTTP status and the message to the raw body.
func apiError(status int, body []byte) *domain.APIError {
	e := &domain.APIError{Status: status, Code: strconv.Itoa(status)}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.ErrorCode != "" {
			e.Code = parsed.ErrorCode
		}
		e.Message = parsed.Message
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
