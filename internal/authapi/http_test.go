package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobdeck-gateway/internal/models"
)

// recordedRequest captures what an auth backend saw
type recordedRequest struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

// fakeBackend is an httptest server that records the last request and
// replies with a scripted status and body
type fakeBackend struct {
	server *httptest.Server
	status int
	reply  string
	last   *recordedRequest
}

func newFakeBackend(t *testing.T, status int, reply string) *fakeBackend {
	t.Helper()
	b := &fakeBackend{status: status, reply: reply}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			auth:   r.Header.Get("Authorization"),
		}
		if r.Body != nil {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				rec.body = body
			}
		}
		b.last = rec
		w.WriteHeader(b.status)
		w.Write([]byte(b.reply))
	}))
	t.Cleanup(b.server.Close)
	return b
}

func TestLoginHitsRoleBackend(t *testing.T) {
	candidate := newFakeBackend(t, http.StatusOK, `{"token":"tok-c","user":{"id":"1","email":"a@x.com","role":"candidate"}}`)
	recruiter := newFakeBackend(t, http.StatusOK, `{"token":"tok-r","user":{"id":"2","email":"b@x.com","role":"recruiter"}}`)

	client := NewHTTPClient(Config{
		CandidateBaseURL: candidate.server.URL,
		RecruiterBaseURL: recruiter.server.URL,
	}, nil)

	result, err := client.Login(context.Background(), models.RoleRecruiter, "b@x.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token != "tok-r" {
		t.Errorf("token = %q, want tok-r (recruiter backend)", result.Token)
	}
	if candidate.last != nil {
		t.Error("candidate backend must not be called for a recruiter login")
	}
	if recruiter.last.path != "/auth/login" {
		t.Errorf("path = %q, want /auth/login", recruiter.last.path)
	}
	if recruiter.last.body["email"] != "b@x.com" {
		t.Errorf("email = %v, want b@x.com", recruiter.last.body["email"])
	}
}

func TestLoginErrorBecomesAPIError(t *testing.T) {
	backend := newFakeBackend(t, http.StatusUnauthorized, `{"error":"invalid credentials"}`)
	client := NewHTTPClient(Config{CandidateBaseURL: backend.server.URL}, nil)

	_, err := client.Login(context.Background(), models.RoleCandidate, "a@x.com", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.Status)
	}
	if apiErr.Message != "invalid credentials" {
		t.Errorf("message = %q, want the error field", apiErr.Message)
	}
	if IsApprovalPending(err) {
		t.Error("generic 401 must not read as approval-pending")
	}
}

func TestLoginApprovalPendingDetected(t *testing.T) {
	backend := newFakeBackend(t, http.StatusForbidden, `{"message":"Recruiter not approved yet"}`)
	client := NewHTTPClient(Config{RecruiterBaseURL: backend.server.URL}, nil)

	_, err := client.Login(context.Background(), models.RoleRecruiter, "b@x.com", "pw")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsApprovalPending(err) {
		t.Errorf("expected approval-pending detection, got %v", err)
	}
}

func TestErrorMessageFallsBackToRawBody(t *testing.T) {
	backend := newFakeBackend(t, http.StatusBadGateway, `upstream exploded`)
	client := NewHTTPClient(Config{CandidateBaseURL: backend.server.URL}, nil)

	_, err := client.Login(context.Background(), models.RoleCandidate, "a@x.com", "pw")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Message != "upstream exploded" {
		t.Errorf("message = %q, want raw body", apiErr.Message)
	}
}

func TestRefreshSendsBearerToken(t *testing.T) {
	backend := newFakeBackend(t, http.StatusOK, `{"token":"fresh"}`)
	client := NewHTTPClient(Config{AdminBaseURL: backend.server.URL}, nil)

	token, err := client.Refresh(context.Background(), models.RoleAdmin, "stale")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if token != "fresh" {
		t.Errorf("token = %q, want fresh", token)
	}
	if backend.last.auth != "Bearer stale" {
		t.Errorf("authorization = %q, want Bearer stale", backend.last.auth)
	}
	if backend.last.path != "/auth/refresh" {
		t.Errorf("path = %q, want /auth/refresh", backend.last.path)
	}
}

func TestLogoutSendsToken(t *testing.T) {
	backend := newFakeBackend(t, http.StatusOK, `{}`)
	client := NewHTTPClient(Config{CandidateBaseURL: backend.server.URL}, nil)

	if err := client.Logout(context.Background(), models.RoleCandidate, "tok"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if backend.last.auth != "Bearer tok" {
		t.Errorf("authorization = %q, want Bearer tok", backend.last.auth)
	}
}

func TestForgotPasswordUsesCoreBackend(t *testing.T) {
	core := newFakeBackend(t, http.StatusOK, `{"success":true,"message":"sent"}`)
	client := NewHTTPClient(Config{CoreBaseURL: core.server.URL}, nil)

	resp, err := client.ForgotPassword(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if !resp.Success || resp.Message != "sent" {
		t.Errorf("resp = %+v, want success with message", resp)
	}
	if core.last.path != "/auth/forgot-password" {
		t.Errorf("path = %q, want /auth/forgot-password", core.last.path)
	}
}

func TestChangePasswordPutsToCoreUserPath(t *testing.T) {
	core := newFakeBackend(t, http.StatusOK, `{"success":true}`)
	client := NewHTTPClient(Config{CoreBaseURL: core.server.URL}, nil)

	resp, err := client.ChangePassword(context.Background(), "tok", "user-7", "old", "new")
	if err != nil {
		t.Fatalf("change password: %v", err)
	}
	if !resp.Success {
		t.Error("expected success")
	}
	if core.last.method != http.MethodPut {
		t.Errorf("method = %q, want PUT", core.last.method)
	}
	if core.last.path != "/users/user-7/password" {
		t.Errorf("path = %q, want /users/user-7/password", core.last.path)
	}
	if core.last.auth != "Bearer tok" {
		t.Errorf("authorization = %q, want Bearer tok", core.last.auth)
	}
	if core.last.body["currentPassword"] != "old" || core.last.body["newPassword"] != "new" {
		t.Errorf("body = %v, want both password fields", core.last.body)
	}
}

func TestResetPasswordOmitsEmptyOTP(t *testing.T) {
	backend := newFakeBackend(t, http.StatusOK, `{"success":true}`)
	client := NewHTTPClient(Config{CandidateBaseURL: backend.server.URL}, nil)

	_, err := client.ResetPassword(context.Background(), ResetPasswordParams{
		Token:    "reset-tok",
		Password: "new",
		Role:     models.RoleCandidate,
	})
	if err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if _, ok := backend.last.body["otp"]; ok {
		t.Error("otp must be omitted when empty")
	}
	if backend.last.body["token"] != "reset-tok" {
		t.Errorf("token = %v, want reset-tok", backend.last.body["token"])
	}
}
