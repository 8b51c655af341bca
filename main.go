package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"jobdeck-gateway/internal/api"
	"jobdeck-gateway/internal/authapi"
	"jobdeck-gateway/internal/broadcast"
	"jobdeck-gateway/internal/models"
	"jobdeck-gateway/internal/portalapi"
	"jobdeck-gateway/internal/session"
	"jobdeck-gateway/internal/storage"
)

func main() {
	// Get database path from environment or default
	dbPath := os.Getenv("JOBDECK_DB_PATH")
	if dbPath == "" {
		// Default to current directory for development
		dbPath = "./jobdeck.db"
	}

	// Ensure absolute path
	if !filepath.IsAbs(dbPath) {
		cwd, _ := os.Getwd()
		dbPath = filepath.Join(cwd, dbPath)
	}

	// Initialize storage
	log.Printf("Initializing storage at %s", dbPath)
	if err := storage.Open(storage.Config{Path: dbPath}); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer storage.Close()

	authClient := authapi.NewHTTPClient(authapi.Config{
		CandidateBaseURL: envOr("JOBDECK_CANDIDATE_AUTH_URL", "http://localhost:5001"),
		RecruiterBaseURL: envOr("JOBDECK_RECRUITER_AUTH_URL", "http://localhost:5002"),
		AdminBaseURL:     envOr("JOBDECK_ADMIN_AUTH_URL", "http://localhost:5003"),
		CoreBaseURL:      envOr("JOBDECK_CORE_API_URL", "http://localhost:5000"),
	}, nil)

	portalClient := portalapi.NewClient(envOr("JOBDECK_PORTAL_API_URL", "http://localhost:5000"), nil)

	hub := broadcast.NewHub()
	kvRepo := storage.NewKVRepo()
	notificationRepo := storage.NewNotificationRepo()

	sessions := session.NewManager(authClient, kvRepo, &feedNotifier{
		repo: notificationRepo,
		hub:  hub,
	}, session.Config{
		ExpiryWindow: envDuration("JOBDECK_SESSION_WINDOW", 24*time.Hour),
	})
	sessions.SetBroadcaster(hub)

	// Hydrate the session from storage before serving anything
	if err := sessions.Hydrate(); err != nil {
		log.Printf("Warning: session hydration failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sessions.StartExpiryWatcher(ctx)

	// Admin SSO is optional; the routes only exist when configured
	var oidcClient *authapi.OIDCClient
	oidcConfig := authapi.OIDCConfig{
		IssuerURL:    os.Getenv("JOBDECK_OIDC_ISSUER"),
		ClientID:     os.Getenv("JOBDECK_OIDC_CLIENT_ID"),
		ClientSecret: os.Getenv("JOBDECK_OIDC_CLIENT_SECRET"),
		RedirectURI:  os.Getenv("JOBDECK_OIDC_REDIRECT_URI"),
	}
	if oidcConfig.Enabled() {
		var err error
		oidcClient, err = authapi.NewOIDCClient(ctx, oidcConfig)
		if err != nil {
			log.Printf("Warning: admin SSO disabled: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{envOr("JOBDECK_UI_ORIGIN", "http://localhost:3000")},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	api.RegisterRoutes(e, api.Deps{
		Sessions:      sessions,
		Hub:           hub,
		KV:            kvRepo,
		Notifications: notificationRepo,
		Portal:        portalClient,
		OIDC:          oidcClient,
	})

	// Get port from environment or default
	port := os.Getenv("JOBDECK_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting JobDeck gateway on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}

// feedNotifier persists every notification to the feed and pushes it to
// connected views
type feedNotifier struct {
	repo *storage.NotificationRepo
	hub  *broadcast.Hub
}

func (n *feedNotifier) Notify(note models.Notification) {
	if err := n.repo.Create(&note); err != nil {
		log.Printf("Warning: failed to store notification: %v", err)
	}
	n.hub.Notify(note)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s %q, using %s", key, raw, fallback)
		return fallback
	}
	return parsed
}
