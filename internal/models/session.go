package models

import "time"

// Session mirrors the client session held by the gateway: the bearer
// token issued by the remote auth API, the user it belongs to, and when
// it was issued (used for expiry checks)
type Session struct {
	Token    string    `json:"token"`
	User     *User     `json:"user"`
	IssuedAt time.Time `json:"issued_at"`
}

// Age returns how long ago the session was issued
func (s *Session) Age(now time.Time) time.Duration {
	return now.Sub(s.IssuedAt)
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// LoginResponse represents the response after a login attempt
type LoginResponse struct {
	Success    bool   `json:"success"`
	User       *User  `json:"user,omitempty"`
	Error      string `json:"error,omitempty"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// RegisterRequest represents the request body for registration.
// Fields beyond role are backend-specific and passed through untouched.
type RegisterRequest struct {
	Role   string         `json:"role" validate:"required"`
	Fields map[string]any `json:"fields"`
}

// ForgotPasswordRequest represents the request body for a reset email
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

// ResetPasswordRequest represents the request body for completing a reset
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
	OTP      string `json:"otp,omitempty"`
}

// ChangePasswordRequest represents the request body for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}
