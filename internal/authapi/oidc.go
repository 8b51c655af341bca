package authapi

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"jobdeck-gateway/internal/models"
)

// OIDCConfig holds the admin single sign-on settings
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
}

// Enabled reports whether admin SSO is configured
func (c OIDCConfig) Enabled() bool {
	return c.IssuerURL != "" && c.ClientID != ""
}

// OIDCClient wraps the go-oidc provider for the admin SSO flow.
// Admins who sign in through the identity provider bypass the
// password-based admin backend entirely.
type OIDCClient struct {
	provider     *oidc.Provider
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

// NewOIDCClient initializes the OIDC provider client
func NewOIDCClient(ctx context.Context, cfg OIDCConfig) (*OIDCClient, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("issuer URL and client ID are required")
	}

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	provider, err := oidc.NewProvider(initCtx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OIDC provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Endpoint:     provider.Endpoint(),
		Scopes:       scopes,
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})

	return &OIDCClient{
		provider:     provider,
		oauth2Config: oauth2Config,
		verifier:     verifier,
	}, nil
}

// AuthURL generates the authorization URL for the SSO login redirect
func (c *OIDCClient) AuthURL(state string) string {
	if state == "" {
		state = RandomState()
	}
	return c.oauth2Config.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code and verifies the ID token,
// returning the admin user it describes
func (c *OIDCClient) ExchangeCode(ctx context.Context, code string) (string, *models.User, error) {
	exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	token, err := c.oauth2Config.Exchange(exchangeCtx, code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return "", nil, fmt.Errorf("token response is missing id_token")
	}

	idToken, err := c.verifier.Verify(exchangeCtx, rawIDToken)
	if err != nil {
		return "", nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", nil, fmt.Errorf("failed to extract claims: %w", err)
	}

	user := &models.User{
		ID:         idToken.Subject,
		Email:      claims.Email,
		Name:       claims.Name,
		Role:       models.RoleAdmin,
		Membership: models.MembershipFree,
	}
	if user.Name == "" {
		user.Name = user.Email
	}

	return rawIDToken, user, nil
}

// RandomState generates a random state parameter for the OAuth2 flow
func RandomState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
