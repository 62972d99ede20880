package api

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

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"netbill.com/console/auth"
)

const (
	loginPath           = "/auth/login"
	logoutPath          = "/auth/logout"
	impersonatePath     = "/auth/impersonate"
	impersonateExitPath = "/auth/impersonate/exit"
)

// Client talks to the remote billing API. Every call goes through the
// session pipeline; successful auth calls install the returned session
// in the store.
type Client struct {
	baseURL  string
	http     *http.Client
	store    *auth.Store
	guard    *auth.SessionGuard
	validate *validator.Validate
	log      zerolog.Logger
}

// NewClient builds a client whose transport enforces the session
// pipeline. The persister is consulted directly for the bearer when the
// store has not hydrated yet.
func NewClient(baseURL string, store *auth.Store, persist auth.SessionPersister, guard *auth.SessionGuard, log zerolog.Logger) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	var basePath string
	if u, err := url.Parse(baseURL); err == nil {
		basePath = strings.TrimRight(u.Path, "/")
	}
	transport := &authTransport{
		base:     http.DefaultTransport,
		basePath: basePath,
		store:    store,
		persist:  persist,
		guard:    guard,
		log:      log,
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		store:    store,
		guard:    guard,
		validate: validator.New(),
		log:      log,
	}
}

// sessionResponse is what every auth endpoint answers with on success.
type sessionResponse struct {
	User  *auth.Profile `json:"user"`
	Token string        `json:"token"`
}

type LoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for a session and installs it. A 401
// here means bad credentials and leaves any resident session alone.
func (c *Client) Login(ctx context.Context, phone, password string) (*auth.Profile, error) {
	req := LoginRequest{Phone: phone, Password: password}
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: phone and password are required", ErrInvalidCredentials)
	}

	var out sessionResponse
	if err := c.do(ctx, http.MethodPost, loginPath, req, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.Message)
		}
		return nil, err
	}
	return c.installSession(out)
}

// Logout tells the API to drop the session, then clears local state
// regardless of the answer, so the operator ends up signed out even
// when the API is unreachable.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, logoutPath, nil, nil)
	c.guard.StopMonitor()
	c.store.ClearSession()
	return err
}

type impersonateRequest struct {
	AgentID string `json:"agentId"`
	Token   string `json:"token"`
}

// ImpersonateAgent swaps the session for the agent's identity. The
// current bearer travels in the body: the escalation is authorized by
// the admin's own token, independent of header injection, which the
// pipeline skips for this endpoint anyway.
func (c *Client) ImpersonateAgent(ctx context.Context, agentID string) (*auth.Profile, error) {
	req := impersonateRequest{AgentID: agentID, Token: c.store.Token()}
	if req.Token == "" {
		return nil, auth.ErrSessionInvalid
	}
	var out sessionResponse
	if err := c.do(ctx, http.MethodPost, impersonatePath, req, &out); err != nil {
		return nil, err
	}
	return c.installSession(out)
}

// ExitImpersonation restores the admin identity that started the
// impersonation. Full session replacement, like every other mutation.
func (c *Client) ExitImpersonation(ctx context.Context) (*auth.Profile, error) {
	var out sessionResponse
	if err := c.do(ctx, http.MethodPost, impersonateExitPath, nil, &out); err != nil {
		return nil, err
	}
	return c.installSession(out)
}

func (c *Client) installSession(resp sessionResponse) (*auth.Profile, error) {
	if resp.User == nil || resp.Token == "" {
		return nil, &APIError{Status: http.StatusBadGateway, Message: "auth response missing user or token"}
	}
	c.store.SetSession(resp.User, resp.Token)
	c.guard.StartMonitor()
	c.log.Info().Str("role", resp.User.RoleCode).Msg("session established")
	return resp.User, nil
}

// do sends one JSON request through the pipeline and decodes the
// answer. Pipeline sentinels (auth.ErrSessionInvalid,
// auth.ErrUnauthorized) surface unchanged through the returned error
// chain.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Message == "" {
		payload.Message = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: payload.Message}
}
