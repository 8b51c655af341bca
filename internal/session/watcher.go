package session

import (
	"context"
	"time"

	"jobdeck-gateway/internal/models"
)

// StartExpiryWatcher runs the background expiry check until ctx is
// cancelled. The check fires on a fixed wall-clock interval, does
// nothing while logged out, and never blocks in-flight requests.
func (m *Manager) StartExpiryWatcher(ctx context.Context) {
	go m.watchExpiry(ctx)
}

func (m *Manager) watchExpiry(ctx context.Context) {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.checkExpiry(ctx)
		}
	}
}

// checkExpiry logs the session out once its age exceeds the expiry
// window. Exposed to the rest of the package for tests; production
// callers go through StartExpiryWatcher.
func (m *Manager) checkExpiry(ctx context.Context) {
	if !m.IsAuthenticated() {
		return
	}
	if m.sessionAge() <= m.config.ExpiryWindow {
		return
	}

	m.notify(models.NotifyWarning, "Your session has expired. Please sign in again.")
	if m.broadcaster != nil {
		m.broadcaster.SessionExpired()
	}
	m.Logout(ctx)
}
