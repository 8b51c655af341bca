package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"jobdeck-gateway/internal/authapi"
)

const ssoStateCookie = "sso_state"

// adminSSOLoginHandler handles GET /api/auth/admin/sso/login
func adminSSOLoginHandler(c echo.Context) error {
	state := authapi.RandomState()

	c.SetCookie(&http.Cookie{
		Name:     ssoStateCookie,
		Value:    state,
		Path:     "/api/auth/admin/sso",
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})

	return c.Redirect(http.StatusFound, oidcClient.AuthURL(state))
}

// adminSSOCallbackHandler handles GET /api/auth/admin/sso/callback
func adminSSOCallbackHandler(c echo.Context) error {
	cookie, err := c.Cookie(ssoStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != c.QueryParam("state") {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "state mismatch",
		})
	}

	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "missing authorization code",
		})
	}

	token, user, err := oidcClient.ExchangeCode(c.Request().Context(), code)
	if err != nil {
		c.Logger().Error("sso exchange error: ", err)
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "single sign-on failed",
		})
	}

	if err := sessions.AdoptSession(token, user); err != nil {
		c.Logger().Error("sso session error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to establish session",
		})
	}

	// Clear the state cookie
	c.SetCookie(&http.Cookie{
		Name:   ssoStateCookie,
		Value:  "",
		Path:   "/api/auth/admin/sso",
		MaxAge: -1,
	})

	return c.Redirect(http.StatusFound, "/admin/dashboard")
}
