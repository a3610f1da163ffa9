package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-sis-api/pkg/config"
)

// Account is the provider-side view of a portal account. The id is shared
// with the local student/staff row so the two stores stay linked.
type Account struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
}

// Client talks to the external identity provider that owns credentials and
// session issuance. The portal never stores passwords locally.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds an identity provider client.
func NewClient(cfg config.IdentityConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Enabled reports whether a provider endpoint is configured. Local
// development without a provider skips the remote calls.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// CreateAccount provisions a provider account mirroring a local row.
func (c *Client) CreateAccount(ctx context.Context, account Account) error {
	return c.do(ctx, http.MethodPost, "/accounts", account, http.StatusCreated)
}

// DeleteAccount removes the provider account for the given shared id.
func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/accounts/"+id, nil, http.StatusNoContent)
}

// SetPassword replaces the account password.
func (c *Client) SetPassword(ctx context.Context, id, password string) error {
	payload := map[string]string{"password": password}
	return c.do(ctx, http.MethodPut, "/accounts/"+id+"/password", payload, http.StatusNoContent)
}

// SetRole updates the role claim the provider embeds in session tokens.
func (c *Client) SetRole(ctx context.Context, id, role string) error {
	payload := map[string]string{"role": role}
	return c.do(ctx, http.MethodPut, "/accounts/"+id+"/role", payload, http.StatusNoContent)
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}, wantStatus int) error {
	if !c.Enabled() {
		c.logger.Debug("identity provider disabled, skipping call", zap.String("path", path))
		return nil
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal identity payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus && resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("identity %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}
