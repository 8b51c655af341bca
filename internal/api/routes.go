package api

import (
	"github.com/labstack/echo/v4"

	"jobdeck-gateway/internal/authapi"
	"jobdeck-gateway/internal/broadcast"
	"jobdeck-gateway/internal/guard"
	"jobdeck-gateway/internal/models"
	"jobdeck-gateway/internal/portalapi"
	"jobdeck-gateway/internal/session"
	"jobdeck-gateway/internal/storage"
)

// Deps holds the services the handlers depend on, constructed at the
// app root and injected here
type Deps struct {
	Sessions      *session.Manager
	Hub           *broadcast.Hub
	KV            *storage.KVRepo
	Notifications *storage.NotificationRepo
	Portal        *portalapi.Client
	OIDC          *authapi.OIDCClient // nil when admin SSO is not configured
}

var (
	sessions      *session.Manager
	hub           *broadcast.Hub
	kvRepo        *storage.KVRepo
	notifications *storage.NotificationRepo
	portal        *portalapi.Client
	oidcClient    *authapi.OIDCClient
)

// RegisterRoutes sets up all routes
func RegisterRoutes(e *echo.Echo, deps Deps) {
	sessions = deps.Sessions
	hub = deps.Hub
	kvRepo = deps.KV
	notifications = deps.Notifications
	portal = deps.Portal
	oidcClient = deps.OIDC

	api := e.Group("/api")

	// Health check (public)
	api.GET("/health", healthCheck)

	// Auth routes (public - no auth required for login)
	authGroup := api.Group("/auth")
	authGroup.POST("/login", loginHandler)
	authGroup.POST("/register", registerHandler)
	authGroup.POST("/logout", logoutHandler)
	authGroup.POST("/refresh", refreshTokenHandler)
	authGroup.POST("/forgot-password", forgotPasswordHandler)
	authGroup.POST("/reset-password", resetPasswordHandler)
	authGroup.GET("/me", getCurrentUser)

	// Protected auth routes
	authProtected := authGroup.Group("")
	authProtected.Use(guard.RequireSession(sessions))
	authProtected.PUT("/password", changePasswordHandler)
	authProtected.PATCH("/me", updateProfileHandler)

	// Admin SSO (only when an identity provider is configured)
	if oidcClient != nil {
		authGroup.GET("/admin/sso/login", adminSSOLoginHandler)
		authGroup.GET("/admin/sso/callback", adminSSOCallbackHandler)
	}

	// Preferences (any authenticated role)
	prefs := api.Group("/preferences")
	prefs.Use(guard.RequireSession(sessions))
	prefs.GET("/theme", getThemeHandler)
	prefs.PUT("/theme", updateThemeHandler)

	// Notification feed (any authenticated role)
	api.GET("/notifications", listNotificationsHandler, guard.RequireSession(sessions))

	// Role-scoped dashboard aggregation
	dashboards := api.Group("/dashboard")
	dashboards.GET("/candidate", candidateDashboardHandler, guard.RequireRole(sessions, models.RoleCandidate))
	dashboards.GET("/recruiter", recruiterDashboardHandler, guard.RequireRole(sessions, models.RoleRecruiter))
	dashboards.GET("/admin", adminDashboardHandler, guard.RequireRole(sessions, models.RoleAdmin))

	// Event stream for connected views (token validated inside the
	// handler due to WebSocket limitations)
	api.GET("/events/ws", hub.HandleWebSocket(sessions))

	// Portal pages; dashboards sit behind the route guard so redirect
	// semantics apply to navigation
	e.GET("/", homePage)
	e.GET("/candidate/login", loginPage(models.RoleCandidate))
	e.GET("/recruiter/login", loginPage(models.RoleRecruiter))
	e.GET("/admin/login", loginPage(models.RoleAdmin))
	e.GET("/candidate/dashboard", dashboardPage(models.RoleCandidate), guard.RequireRole(sessions, models.RoleCandidate))
	e.GET("/recruiter/dashboard", dashboardPage(models.RoleRecruiter), guard.RequireRole(sessions, models.RoleRecruiter))
	e.GET("/admin/dashboard", dashboardPage(models.RoleAdmin), guard.RequireRole(sessions, models.RoleAdmin))
}
