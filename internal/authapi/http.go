package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jobdeck-gateway/internal/models"
)

// Config holds the remote auth backend endpoints
type Config struct {
	// Role-specific backends for login, registration, logout, refresh
	// and reset. Each role can point at a separate serverless deployment.
	CandidateBaseURL string
	RecruiterBaseURL string
	AdminBaseURL     string

	// CoreBaseURL serves the role-agnostic endpoints (forgot-password,
	// password change)
	CoreBaseURL string

	// Timeout applies per request. Zero means 15 seconds.
	Timeout time.Duration
}

// HTTPClient implements Client over the remote HTTP auth APIs
type HTTPClient struct {
	config Config
	client *http.Client
}

// NewHTTPClient creates a client for the configured auth backends.
// httpClient may be nil, in which case a client with the configured
// timeout is used.
func NewHTTPClient(cfg Config, httpClient *http.Client) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPClient{config: cfg, client: httpClient}
}

// baseURL returns the backend serving the given role
func (c *HTTPClient) baseURL(role models.Role) string {
	switch role {
	case models.RoleRecruiter:
		return c.config.RecruiterBaseURL
	case models.RoleAdmin:
		return c.config.AdminBaseURL
	default:
		return c.config.CandidateBaseURL
	}
}

// Login authenticates against the role-specific backend
func (c *HTTPClient) Login(ctx context.Context, role models.Role, email, password string) (*LoginResult, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"role":     role,
	}
	var result LoginResult
	if err := c.post(ctx, c.baseURL(role)+"/auth/login", "", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register submits role-specific registration fields
func (c *HTTPClient) Register(ctx context.Context, role models.Role, fields map[string]any) (*Response, error) {
	var resp Response
	if err := c.post(ctx, c.baseURL(role)+"/auth/register", "", fields, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the token on the remote backend
func (c *HTTPClient) Logout(ctx context.Context, role models.Role, token string) error {
	return c.post(ctx, c.baseURL(role)+"/auth/logout", token, nil, nil)
}

// Refresh exchanges the current token for a fresh one
func (c *HTTPClient) Refresh(ctx context.Context, role models.Role, token string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, c.baseURL(role)+"/auth/refresh", token, nil, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ForgotPassword requests a reset email
func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) (*Response, error) {
	var resp Response
	body := map[string]any{"email": email}
	if err := c.post(ctx, c.config.CoreBaseURL+"/auth/forgot-password", "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetPassword completes a reset using the emailed token
func (c *HTTPClient) ResetPassword(ctx context.Context, params ResetPasswordParams) (*Response, error) {
	body := map[string]any{
		"token":    params.Token,
		"password": params.Password,
		"role":     params.Role,
	}
	if params.OTP != "" {
		body["otp"] = params.OTP
	}
	var resp Response
	if err := c.post(ctx, c.baseURL(params.Role)+"/auth/reset-password", "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChangePassword updates the password for the authenticated user
func (c *HTTPClient) ChangePassword(ctx context.Context, token, userID, currentPassword, newPassword string) (*Response, error) {
	body := map[string]any{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}
	var resp Response
	url := fmt.Sprintf("%s/users/%s/password", c.config.CoreBaseURL, userID)
	if err := c.do(ctx, http.MethodPut, url, token, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) post(ctx context.Context, url, token string, body, out any) error {
	return c.do(ctx, http.MethodPost, url, token, body, out)
}

func (c *HTTPClient) do(ctx context.Context, method, url, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Status:  resp.StatusCode,
			Message: errorMessage(raw),
		}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// errorMessage extracts a human-readable message from an error body.
// Backends disagree on the field name, so try the common ones before
// falling back to the raw body.
func errorMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return string(raw)
}
