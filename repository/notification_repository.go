package repository

import (
	"database/sql"
	"fmt"

	"cmfs/models"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateNotification inserts a notification record and sets its id.
func (r *NotificationRepository) CreateNotification(n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, complaint_id, type, title, message)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query, n.UserID, n.ComplaintID, n.Type, n.Title, n.Message)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get notification ID: %w", err)
	}
	n.NotificationID = id
	return nil
}

// ListNotificationsByUser retrieves a user's notifications, newest first.
func (r *NotificationRepository) ListNotificationsByUser(userID int64, limit int) ([]models.Notification, error) {
	query := `
		SELECT notification_id, user_id, complaint_id, type, title, message, is_read, created_at
		FROM notifications WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?
	`
	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.NotificationID, &n.UserID, &n.ComplaintID, &n.Type,
			&n.Title, &n.Message, &n.IsRead, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead marks one notification as read for its owner.
func (r *NotificationRepository) MarkNotificationRead(notificationID, userID int64) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE notification_id = ? AND user_id = ?`
	result, err := r.db.Exec(query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}
