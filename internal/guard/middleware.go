package guard

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"jobdeck-gateway/internal/models"
	"jobdeck-gateway/internal/session"
)

// FromParam carries the originally requested location through the login
// redirect so the user can be returned there after signing in
const FromParam = "from"

// SafeFromPath returns from when it is a same-site path, empty
// otherwise. Only locations the guard itself could have produced may
// round-trip through the login redirect; anything absolute or
// protocol-relative is dropped.
func SafeFromPath(from string) string {
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") {
		return ""
	}
	return from
}

// LoginPath returns the login surface for a role
func LoginPath(role models.Role) string {
	switch role {
	case models.RoleRecruiter:
		return "/recruiter/login"
	case models.RoleAdmin:
		return "/admin/login"
	default:
		return "/candidate/login"
	}
}

// RequireRole gates a route group on the session manager's state.
// While the session is still hydrating nothing is rendered, avoiding a
// flash of redirect before storage has been read. Unauthenticated users
// are sent to the login surface for the required role, carrying the
// intended location. An authenticated user with the wrong role is
// bounced home, never asked to re-authenticate.
func RequireRole(manager *session.Manager, role models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if manager.Loading() {
				return c.NoContent(http.StatusNoContent)
			}

			if !manager.IsAuthenticated() {
				target := LoginPath(role) + "?" + FromParam + "=" + url.QueryEscape(c.Request().RequestURI)
				return c.Redirect(http.StatusFound, target)
			}

			user := manager.User()
			if user == nil || user.Role != role {
				return c.Redirect(http.StatusFound, "/")
			}

			return next(c)
		}
	}
}

// RequireSession gates a route on any authenticated session, without a
// role requirement. API routes use it where every role is welcome.
func RequireSession(manager *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if manager.Loading() {
				return c.NoContent(http.StatusNoContent)
			}
			if !manager.IsAuthenticated() {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
			}
			return next(c)
		}
	}
}
