package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"

	"jobdeck-gateway/internal/authapi"
	"jobdeck-gateway/internal/models"
	"jobdeck-gateway/internal/session"
	"jobdeck-gateway/internal/storage"
)

type stubAuthClient struct {
	user *models.User
}

func (s *stubAuthClient) Login(ctx context.Context, role models.Role, email, password string) (*authapi.LoginResult, error) {
	return &authapi.LoginResult{Token: "t1", User: s.user}, nil
}

func (s *stubAuthClient) Register(ctx context.Context, role models.Role, fields map[string]any) (*authapi.Response, error) {
	return &authapi.Response{Success: true}, nil
}

func (s *stubAuthClient) Logout(ctx context.Context, role models.Role, token string) error {
	return nil
}

func (s *stubAuthClient) Refresh(ctx context.Context, role models.Role, token string) (string, error) {
	return "t2", nil
}

func (s *stubAuthClient) ForgotPassword(ctx context.Context, email string) (*authapi.Response, error) {
	return &authapi.Response{Success: true}, nil
}

func (s *stubAuthClient) ResetPassword(ctx context.Context, params authapi.ResetPasswordParams) (*authapi.Response, error) {
	return &authapi.Response{Success: true}, nil
}

func (s *stubAuthClient) ChangePassword(ctx context.Context, token, userID, current, new string) (*authapi.Response, error) {
	return &authapi.Response{Success: true}, nil
}

type mapStore map[string]string

func (s mapStore) Get(key string) (string, error) {
	value, ok := s[key]
	if !ok {
		return "", storage.ErrKeyNotFound
	}
	return value, nil
}

func (s mapStore) Set(key, value string) error {
	s[key] = value
	return nil
}

func (s mapStore) Delete(key string) error {
	delete(s, key)
	return nil
}

// hydratingManager is a manager whose one-time hydration has not run yet
func hydratingManager(t *testing.T) *session.Manager {
	t.Helper()
	return session.NewManager(&stubAuthClient{}, mapStore{}, nil, session.Config{})
}

// loggedOutManager is hydrated with empty storage
func loggedOutManager(t *testing.T) *session.Manager {
	t.Helper()
	manager := session.NewManager(&stubAuthClient{}, mapStore{}, nil, session.Config{})
	if err := manager.Hydrate(); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	return manager
}

// loggedInManager holds an authenticated session with the given role
func loggedInManager(t *testing.T, role models.Role) *session.Manager {
	t.Helper()
	client := &stubAuthClient{user: &models.User{ID: "1", Email: "a@x.com", Role: role}}
	manager := session.NewManager(client, mapStore{}, nil, session.Config{})
	if err := manager.Hydrate(); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	result := manager.Login(context.Background(), "a@x.com", "pw", string(role))
	if !result.Success {
		t.Fatalf("login failed: %v", result.Err)
	}
	return manager
}

func runGuarded(t *testing.T, manager *session.Manager, role models.Role, target string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	rendered := false
	handler := func(c echo.Context) error {
		rendered = true
		return c.String(http.StatusOK, "protected")
	}

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := RequireRole(manager, role)(handler)(c); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	return rec, rendered
}

func TestGuardRendersNothingWhileHydrating(t *testing.T) {
	rec, rendered := runGuarded(t, hydratingManager(t), models.RoleCandidate, "/candidate/dashboard")

	if rendered {
		t.Error("protected content must not render while hydrating")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Error("expected empty body while hydrating")
	}
}

func TestGuardReEvaluatesAfterHydration(t *testing.T) {
	manager := session.NewManager(&stubAuthClient{}, mapStore{}, nil, session.Config{})

	rec, _ := runGuarded(t, manager, models.RoleCandidate, "/candidate/dashboard")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("pre-hydration status = %d, want 204", rec.Code)
	}

	if err := manager.Hydrate(); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	rec, _ = runGuarded(t, manager, models.RoleCandidate, "/candidate/dashboard")
	if rec.Code != http.StatusFound {
		t.Errorf("post-hydration status = %d, want 302 redirect", rec.Code)
	}
}

func TestGuardRedirectsToRoleLogin(t *testing.T) {
	cases := []struct {
		role      models.Role
		wantLogin string
	}{
		{models.RoleCandidate, "/candidate/login"},
		{models.RoleRecruiter, "/recruiter/login"},
		{models.RoleAdmin, "/admin/login"},
	}

	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			target := "/" + string(tc.role) + "/dashboard"
			rec, rendered := runGuarded(t, loggedOutManager(t), tc.role, target)

			if rendered {
				t.Error("protected content must not render unauthenticated")
			}
			if rec.Code != http.StatusFound {
				t.Fatalf("status = %d, want 302", rec.Code)
			}

			location, err := url.Parse(rec.Header().Get("Location"))
			if err != nil {
				t.Fatalf("bad location: %v", err)
			}
			if location.Path != tc.wantLogin {
				t.Errorf("redirect path = %q, want %q", location.Path, tc.wantLogin)
			}
			if got := location.Query().Get(FromParam); got != target {
				t.Errorf("from = %q, want original location %q", got, target)
			}
		})
	}
}

func TestGuardBouncesWrongRoleHome(t *testing.T) {
	manager := loggedInManager(t, models.RoleCandidate)

	rec, rendered := runGuarded(t, manager, models.RoleRecruiter, "/recruiter/dashboard")

	if rendered {
		t.Error("wrong role must never see protected content")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/" {
		t.Errorf("redirect = %q, want / (not a login surface)", got)
	}
}

func TestGuardRendersForMatchingRole(t *testing.T) {
	manager := loggedInManager(t, models.RoleRecruiter)

	rec, rendered := runGuarded(t, manager, models.RoleRecruiter, "/recruiter/dashboard")

	if !rendered {
		t.Error("expected protected content to render")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireSessionRejectsLoggedOut(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/preferences/theme", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireSession(loggedOutManager(t))(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestSafeFromPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/candidate/dashboard", "/candidate/dashboard"},
		{"/recruiter/dashboard?tab=open", "/recruiter/dashboard?tab=open"},
		{"", ""},
		{"https://evil.example/phish", ""},
		{"//evil.example/phish", ""},
		{"candidate/dashboard", ""},
	}
	for _, tc := range cases {
		if got := SafeFromPath(tc.in); got != tc.want {
			t.Errorf("SafeFromPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRequireSessionAllowsAnyRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/preferences/theme", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireSession(loggedInManager(t, models.RoleAdmin))(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
