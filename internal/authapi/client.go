package authapi

import (
	"context"
	"errors"
	"strings"

	"jobdeck-gateway/internal/models"
)

// approvalPendingMarker is the substring the recruiter backend puts in
// its error body while an account is awaiting manual approval. The
// session manager keys a dedicated user-facing message off it.
const approvalPendingMarker = "Recruiter not approved"

// LoginResult holds the token and user returned by a successful login
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Response is the generic success/message shape shared by the
// registration and password endpoints
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ResetPasswordParams carries the inputs for completing a password reset
type ResetPasswordParams struct {
	Token    string
	Password string
	Role     models.Role
	OTP      string
}

// Client is the remote auth API surface consumed by the session manager.
// Candidate, recruiter and admin logins are served by distinct backends,
// so role selects the endpoint for the role-scoped operations.
type Client interface {
	Login(ctx context.Context, role models.Role, email, password string) (*LoginResult, error)
	Register(ctx context.Context, role models.Role, fields map[string]any) (*Response, error)
	Logout(ctx context.Context, role models.Role, token string) error
	Refresh(ctx context.Context, role models.Role, token string) (string, error)
	ForgotPassword(ctx context.Context, email string) (*Response, error)
	ResetPassword(ctx context.Context, params ResetPasswordParams) (*Response, error)
	ChangePassword(ctx context.Context, token, userID, currentPassword, newPassword string) (*Response, error)
}

// APIError represents a non-success response from a remote auth backend
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsApprovalPending reports whether err is the recruiter
// awaiting-approval rejection rather than a generic login failure
func IsApprovalPending(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return strings.Contains(apiErr.Message, approvalPendingMarker)
	}
	return false
}
