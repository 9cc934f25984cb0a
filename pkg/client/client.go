package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/bodega-inventory/pkg/logger"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the bodega API on behalf of one session. Every call that
// comes back 401 clears the session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *SessionStore
	logger     *slog.Logger
}

func New(cfg Config, session *SessionStore, lg *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	if session == nil {
		session = NewSessionStore(NewMemoryStorage(), lg)
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		session:    session,
		logger:     lg,
	}
}

func (c *Client) Session() *SessionStore {
	return c.session
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  Profile `json:"user"`
	Token string  `json:"token"`
}

// Login exchanges credentials for a token and stores the session. Any
// previous session is replaced only on success.
func (c *Client) Login(ctx context.Context, username, password string) (*Profile, error) {
	var out loginResponse
	err := c.send(ctx, http.MethodPost, "/auth/login", "", loginRequest{Username: username, Password: password}, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return nil, &APIError{Status: apiErr.Status, Code: apiErr.Code, Message: apiErr.Message, kind: ErrInvalidCredentials}
		}
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("login: %w: response carried no token", ErrUnavailable)
	}

	if err := c.session.Save(out.Token, out.User); err != nil {
		return nil, err
	}
	c.logger.Info("signed in", "username", out.User.Username, "role", out.User.Role)
	return &out.User, nil
}

// VerifyToken asks the server whether the stored token is still good. A
// rejected token clears the session. Transport failures leave it alone and
// report false.
func (c *Client) VerifyToken(ctx context.Context) bool {
	token := c.session.Token()
	if token == "" {
		return false
	}

	err := c.send(ctx, http.MethodPost, "/auth/verify", token, nil, nil)
	if err == nil {
		return true
	}
	if errors.Is(err, ErrUnauthorized) {
		c.session.Clear()
	} else {
		c.logger.Warn("token verification failed", "error", err)
	}
	return false
}

// RefreshProfile reloads the caller's record from the server and replaces
// the cached profile, so a role change shows up without signing in again.
func (c *Client) RefreshProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &p); err != nil {
		return nil, err
	}
	if err := c.session.UpdateUser(p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Logout revokes the token server side. The local session is cleared even
// when the server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	token := c.session.Token()
	defer c.session.Clear()
	if token == "" {
		return nil
	}

	err := c.send(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
	if err != nil && !errors.Is(err, ErrUnauthorized) {
		return err
	}
	return nil
}

// Do performs an authenticated API call and decodes the envelope's data into
// out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	token := c.session.Token()
	if token == "" {
		return ErrUnauthorized
	}

	err := c.send(ctx, method, path, token, body, out)
	if errors.Is(err, ErrUnauthorized) {
		c.session.Clear()
	}
	return err
}

func (c *Client) send(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		if resp.StatusCode >= http.StatusBadRequest {
			return statusError(resp.StatusCode, envelope{})
		}
		return fmt.Errorf("%w: unreadable response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		return statusError(resp.StatusCode, env)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

func statusError(status int, env envelope) error {
	apiErr := &APIError{Status: status, Code: env.Code, Message: env.Error}
	switch {
	case status == http.StatusUnauthorized:
		apiErr.kind = ErrUnauthorized
	case status == http.StatusForbidden:
		apiErr.kind = ErrForbidden
	case status == http.StatusTooManyRequests:
		apiErr.kind = ErrRateLimited
	case status >= http.StatusInternalServerError:
		apiErr.kind = ErrUnavailable
	}
	return apiErr
}
