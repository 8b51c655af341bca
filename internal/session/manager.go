package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"jobdeck-gateway/internal/authapi"
	"jobdeck-gateway/internal/models"
	"jobdeck-gateway/internal/storage"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrAlreadyHydrated  = errors.New("session already hydrated")
)

// Storage is the durable store the session is mirrored to. Satisfied by
// storage.KVRepo; tests use an in-memory fake.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Notifier receives the user-visible notifications emitted by session
// operations
type Notifier interface {
	Notify(n models.Notification)
}

// Broadcaster pushes session lifecycle events to every connected view.
// May be nil when no view transport is wired.
type Broadcaster interface {
	SessionExpired()
}

// Config holds session lifecycle settings
type Config struct {
	// ExpiryWindow is how long a session stays valid after issue.
	// Zero means 24 hours.
	ExpiryWindow time.Duration

	// CheckInterval is how often the background expiry check runs.
	// Zero means 5 minutes.
	CheckInterval time.Duration
}

func (c *Config) applyDefaults() {
	if c.ExpiryWindow <= 0 {
		c.ExpiryWindow = 24 * time.Hour
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 5 * time.Minute
	}
}

// Manager is the single source of truth for who is logged in, as what
// role, and whether that session is still valid. It wraps the remote
// auth backends and mirrors session state to durable storage. One
// Manager exists per running gateway, constructed at the app root and
// injected into everything that needs it.
type Manager struct {
	client      authapi.Client
	store       Storage
	notifier    Notifier
	broadcaster Broadcaster
	config      Config
	now         func() time.Time

	mu            sync.RWMutex
	session       *models.Session
	authenticated bool
	loading       bool
	hydrated      bool
}

// NewManager creates a session manager. The session is empty and
// loading until Hydrate runs.
func NewManager(client authapi.Client, store Storage, notifier Notifier, cfg Config) *Manager {
	cfg.applyDefaults()
	return &Manager{
		client:   client,
		store:    store,
		notifier: notifier,
		config:   cfg,
		now:      time.Now,
		loading:  true,
	}
}

// SetBroadcaster wires the view event transport. Must be called before
// StartExpiryWatcher.
func (m *Manager) SetBroadcaster(b Broadcaster) {
	m.broadcaster = b
}

// Hydrate reads durable storage exactly once, at startup. A valid,
// non-expired stored token and user populate the session; anything else
// leaves it empty. Expired leftovers are cleared from storage.
func (m *Manager) Hydrate() error {
	m.mu.Lock()
	if m.hydrated {
		m.mu.Unlock()
		return ErrAlreadyHydrated
	}
	m.hydrated = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	token, err := m.store.Get(storage.KeyAuthToken)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("failed to read stored token: %w", err)
	}

	rawUser, err := m.store.Get(storage.KeyUser)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("failed to read stored user: %w", err)
	}

	user := &models.User{}
	if err := json.Unmarshal([]byte(rawUser), user); err != nil {
		// Corrupt record, treat as logged out
		m.clearStored()
		return nil
	}
	if err := user.Normalize(); err != nil {
		m.clearStored()
		return nil
	}

	issuedAt := m.now()
	if raw, err := m.store.Get(storage.KeyIssuedAt); err == nil {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			issuedAt = parsed
		}
	}

	if m.now().Sub(issuedAt) > m.config.ExpiryWindow {
		m.clearStored()
		return nil
	}

	m.mu.Lock()
	m.session = &models.Session{Token: token, User: user, IssuedAt: issuedAt}
	m.authenticated = true
	m.mu.Unlock()

	return nil
}

// LoginResult is what Login reports back to the caller. Failures are a
// result, not an error: the form decides what to do with them.
type LoginResult struct {
	Success bool
	User    *models.User
	Err     error
}

// Login authenticates against the role-specific backend. On success the
// session is stored durably and the normalized user returned; on
// failure session state is untouched.
func (m *Manager) Login(ctx context.Context, email, password, roleName string) LoginResult {
	role, err := models.ParseRole(roleName)
	if err != nil {
		m.notify(models.NotifyError, "Unsupported role selected")
		return LoginResult{Err: err}
	}

	result, err := m.client.Login(ctx, role, email, password)
	if err != nil {
		if authapi.IsApprovalPending(err) {
			m.notify(models.NotifyWarning, "Your recruiter account is awaiting approval")
		} else {
			m.notify(models.NotifyError, "Login failed. Please check your credentials.")
		}
		return LoginResult{Err: err}
	}

	user := result.User
	if user == nil {
		err := errors.New("auth backend returned no user")
		m.notify(models.NotifyError, "Login failed. Please check your credentials.")
		return LoginResult{Err: err}
	}
	if err := user.Normalize(); err != nil {
		m.notify(models.NotifyError, "Login failed. Please check your credentials.")
		return LoginResult{Err: err}
	}

	issuedAt := m.now()
	if err := m.persist(result.Token, user, issuedAt); err != nil {
		m.notify(models.NotifyError, "Login failed. Please try again.")
		return LoginResult{Err: err}
	}

	m.mu.Lock()
	m.session = &models.Session{Token: result.Token, User: user, IssuedAt: issuedAt}
	m.authenticated = true
	m.mu.Unlock()

	m.notify(models.NotifySuccess, "Logged in successfully")
	return LoginResult{Success: true, User: user}
}

// Register delegates to the role-specific registration endpoint. It
// never authenticates the caller; the error propagates after the
// notification so the form can stay open.
func (m *Manager) Register(ctx context.Context, roleName string, fields map[string]any) (*authapi.Response, error) {
	role, err := models.ParseRole(roleName)
	if err != nil {
		m.notify(models.NotifyError, "Unsupported role selected")
		return nil, err
	}

	resp, err := m.client.Register(ctx, role, fields)
	if err != nil {
		m.notify(models.NotifyError, "Registration failed")
		return nil, err
	}

	message := resp.Message
	if message == "" {
		message = "Registration successful"
	}
	m.notify(models.NotifySuccess, message)
	return resp, nil
}

// Logout invalidates the remote session best-effort and always clears
// local state. A network failure must never leave the user logged in
// locally.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	sess := m.session
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.session = nil
		m.authenticated = false
		m.mu.Unlock()
		m.clearStored()
	}()

	if sess == nil {
		return
	}
	if err := m.client.Logout(ctx, sess.User.Role, sess.Token); err != nil {
		// Local invalidation proceeds regardless
		m.notify(models.NotifyInfo, "Logged out (remote session may still be active)")
		return
	}
	m.notify(models.NotifyInfo, "Logged out")
}

// RefreshToken requests a new token for the current session. A failed
// refresh always terminates the session rather than leaving it
// ambiguous, and the error propagates to the caller.
func (m *Manager) RefreshToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	sess := m.session
	m.mu.RUnlock()

	if sess == nil {
		return "", ErrNotAuthenticated
	}

	token, err := m.client.Refresh(ctx, sess.User.Role, sess.Token)
	if err != nil {
		m.Logout(ctx)
		return "", fmt.Errorf("token refresh failed: %w", err)
	}

	issuedAt := m.now()
	if err := m.persist(token, sess.User, issuedAt); err != nil {
		m.Logout(ctx)
		return "", fmt.Errorf("failed to store refreshed token: %w", err)
	}

	m.mu.Lock()
	m.session = &models.Session{Token: token, User: sess.User, IssuedAt: issuedAt}
	m.authenticated = true
	m.mu.Unlock()

	return token, nil
}

// ForgotPassword requests a reset email. Failures are folded into the
// returned response after the notification; nothing mutates the session.
func (m *Manager) ForgotPassword(ctx context.Context, email string) *authapi.Response {
	resp, err := m.client.ForgotPassword(ctx, email)
	if err != nil {
		m.notify(models.NotifyError, "Could not send reset email")
		return &authapi.Response{Success: false, Message: err.Error()}
	}
	m.notify(models.NotifySuccess, "Password reset email sent")
	return resp
}

// ResetPassword completes a reset with the emailed token. The error
// propagates after the notification; the user must log in again.
func (m *Manager) ResetPassword(ctx context.Context, token, newPassword, roleName, otp string) (*authapi.Response, error) {
	role, err := models.ParseRole(roleName)
	if err != nil {
		m.notify(models.NotifyError, "Unsupported role selected")
		return nil, err
	}

	resp, err := m.client.ResetPassword(ctx, authapi.ResetPasswordParams{
		Token:    token,
		Password: newPassword,
		Role:     role,
		OTP:      otp,
	})
	if err != nil {
		m.notify(models.NotifyError, "Password reset failed")
		return nil, err
	}
	m.notify(models.NotifySuccess, "Password reset. Please log in again.")
	return resp, nil
}

// ChangePassword updates the password for the logged-in user. The error
// propagates after the notification.
func (m *Manager) ChangePassword(ctx context.Context, currentPassword, newPassword string) (*authapi.Response, error) {
	m.mu.RLock()
	sess := m.session
	m.mu.RUnlock()

	if sess == nil {
		return nil, ErrNotAuthenticated
	}

	resp, err := m.client.ChangePassword(ctx, sess.Token, sess.User.ID, currentPassword, newPassword)
	if err != nil {
		m.notify(models.NotifyError, "Password change failed")
		return nil, err
	}
	m.notify(models.NotifySuccess, "Password changed")
	return resp, nil
}

// UpdateUser shallow-merges the patch into the current user and
// persists the merged record. It never contacts the server; the caller
// is responsible for having already saved the change remotely.
func (m *Manager) UpdateUser(patch models.UserPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return ErrNotAuthenticated
	}

	merged := *m.session.User
	patch.Apply(&merged)

	raw, err := json.Marshal(&merged)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := m.store.Set(storage.KeyUser, string(raw)); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}

	m.session.User = &merged
	return nil
}

// AdoptSession installs a session established outside the password
// login flow (admin SSO) through the same persist path as Login
func (m *Manager) AdoptSession(token string, user *models.User) error {
	if err := user.Normalize(); err != nil {
		return err
	}

	issuedAt := m.now()
	if err := m.persist(token, user, issuedAt); err != nil {
		return err
	}

	m.mu.Lock()
	m.session = &models.Session{Token: token, User: user, IssuedAt: issuedAt}
	m.authenticated = true
	m.mu.Unlock()

	m.notify(models.NotifySuccess, "Signed in")
	return nil
}

// IsAuthenticated reports whether a valid session is present
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

// Loading reports whether the one-time hydration is still in progress
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// User returns a copy of the current user, or nil when logged out
func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil
	}
	user := *m.session.User
	return &user
}

// Token returns the current bearer token, or empty when logged out
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return ""
	}
	return m.session.Token
}

// sessionAge returns the current session's age, or zero when logged out
func (m *Manager) sessionAge() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return 0
	}
	return m.session.Age(m.now())
}

func (m *Manager) persist(token string, user *models.User, issuedAt time.Time) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := m.store.Set(storage.KeyAuthToken, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	if err := m.store.Set(storage.KeyUser, string(raw)); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	if err := m.store.Set(storage.KeyIssuedAt, issuedAt.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to store issue time: %w", err)
	}
	return nil
}

func (m *Manager) clearStored() {
	// Theme is display preference, not session state; it survives logout
	m.store.Delete(storage.KeyAuthToken)
	m.store.Delete(storage.KeyUser)
	m.store.Delete(storage.KeyIssuedAt)
}

func (m *Manager) notify(level models.NotificationLevel, message string) {
	if m.notifier == nil {
		return
	}
	m.notifier.Notify(models.Notification{
		Level:     level,
		Message:   message,
		CreatedAt: m.now(),
	})
}
