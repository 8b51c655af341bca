package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"jobdeck-gateway/internal/authapi"
	"jobdeck-gateway/internal/guard"
	"jobdeck-gateway/internal/models"
	"jobdeck-gateway/internal/session"
)

// loginHandler handles POST /api/auth/login
func loginHandler(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" || req.Role == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "email, password and role are required",
		})
	}

	result := sessions.Login(c.Request().Context(), req.Email, req.Password, req.Role)
	if !result.Success {
		status := http.StatusUnauthorized
		message := "login failed"
		if authapi.IsApprovalPending(result.Err) {
			status = http.StatusForbidden
			message = "recruiter account awaiting approval"
		}
		return c.JSON(status, models.LoginResponse{Success: false, Error: message})
	}

	return c.JSON(http.StatusOK, models.LoginResponse{
		Success:    true,
		User:       result.User,
		RedirectTo: guard.SafeFromPath(c.QueryParam(guard.FromParam)),
	})
}

// registerHandler handles POST /api/auth/register
func registerHandler(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Role == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "role is required",
		})
	}

	resp, err := sessions.Register(c.Request().Context(), req.Role, req.Fields)
	if err != nil {
		return c.JSON(remoteErrorStatus(err), map[string]string{
			"error": "registration failed",
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// logoutHandler handles POST /api/auth/logout
func logoutHandler(c echo.Context) error {
	sessions.Logout(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// refreshTokenHandler handles POST /api/auth/refresh
func refreshTokenHandler(c echo.Context) error {
	token, err := sessions.RefreshToken(c.Request().Context())
	if err != nil {
		// A failed refresh has already terminated the session
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "session expired or invalid",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"token": token,
	})
}

// forgotPasswordHandler handles POST /api/auth/forgot-password
func forgotPasswordHandler(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "email is required",
		})
	}

	resp := sessions.ForgotPassword(c.Request().Context(), req.Email)
	return c.JSON(http.StatusOK, resp)
}

// resetPasswordHandler handles POST /api/auth/reset-password
func resetPasswordHandler(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Token == "" || req.Password == "" || req.Role == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "token, password and role are required",
		})
	}

	resp, err := sessions.ResetPassword(c.Request().Context(), req.Token, req.Password, req.Role, req.OTP)
	if err != nil {
		return c.JSON(remoteErrorStatus(err), map[string]string{
			"error": "password reset failed",
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// changePasswordHandler handles PUT /api/auth/password
func changePasswordHandler(c echo.Context) error {
	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "current and new passwords are required",
		})
	}

	resp, err := sessions.ChangePassword(c.Request().Context(), req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "authentication required",
			})
		}
		return c.JSON(remoteErrorStatus(err), map[string]string{
			"error": "password change failed",
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// getCurrentUser handles GET /api/auth/me
func getCurrentUser(c echo.Context) error {
	if sessions.Loading() {
		return c.NoContent(http.StatusNoContent)
	}

	user := sessions.User()
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "not authenticated",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          user,
	})
}

// updateProfileHandler handles PATCH /api/auth/me. The remote profile
// update has already happened; this keeps the stored session copy in
// step with it.
func updateProfileHandler(c echo.Context) error {
	var patch models.UserPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if err := sessions.UpdateUser(patch); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "authentication required",
			})
		}
		c.Logger().Error("profile update error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to update profile",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user": sessions.User(),
	})
}

// remoteErrorStatus maps a remote auth failure onto the status we
// return, preserving the backend's status when it sent one
func remoteErrorStatus(err error) int {
	var apiErr *authapi.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 600 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}
