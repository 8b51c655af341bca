package storage

import (
	"time"

	"github.com/google/uuid"

	"jobdeck-gateway/internal/models"
)

// NotificationRepo handles the persisted notification feed
type NotificationRepo struct{}

// NewNotificationRepo creates a new notification repository
func NewNotificationRepo() *NotificationRepo {
	return &NotificationRepo{}
}

// Create stores a notification and fills its ID and timestamp
func (r *NotificationRepo) Create(n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := DB.Exec(`
		INSERT INTO notifications (id, level, message, created_at)
		VALUES (?, ?, ?, ?)
	`, n.ID, n.Level, n.Message, n.CreatedAt)
	return err
}

// List retrieves the most recent notifications, newest first
func (r *NotificationRepo) List(limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := DB.Query(`
		SELECT id, level, message, created_at
		FROM notifications ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.Level, &n.Message, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, nil
}

// DeleteOlderThan prunes notifications past the retention window
func (r *NotificationRepo) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := DB.Exec("DELETE FROM notifications WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
