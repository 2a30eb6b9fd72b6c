package store

import (
	"context"
	"database/sql"
	"fmt"

	"scentstore/internal/models"
)

// CreateNotification inserts a notification row. ProfileReminder is
// single-instance per user: the insert hits a partial unique index
// (user_id where type = PROFILE_REMINDER) with ON CONFLICT DO NOTHING,
// so repeated evaluation of the trigger condition never duplicates it.
// Returns false when the row was suppressed.
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) (bool, error) {
	if n.Type == models.NotificationProfileReminder {
		err := s.db.GetContext(ctx, n, `
			INSERT INTO notifications (user_id, order_id, type, message)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id) WHERE type = 'PROFILE_REMINDER' DO NOTHING
			RETURNING id, read, created_at`,
			n.UserID, n.OrderID, n.Type, n.Message)
		if err == sql.ErrNoRows {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to insert notification: %w", err)
		}
		return true, nil
	}

	err := s.db.GetContext(ctx, n, `
		INSERT INTO notifications (user_id, order_id, type, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, read, created_at`,
		n.UserID, n.OrderID, n.Type, n.Message)
	if err != nil {
		return false, fmt.Errorf("failed to insert notification: %w", err)
	}
	return true, nil
}

// GetNotificationsByUserID retrieves a user's notifications, newest first
func (s *Store) GetNotificationsByUserID(ctx context.Context, userID int64) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.SelectContext(ctx, &notifications,
		"SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return notifications, err
}

// MarkNotificationRead flags a notification as read for its owner
func (s *Store) MarkNotificationRead(ctx context.Context, userID, notificationID int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2",
		notificationID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notification %d: %w", notificationID, ErrNotFound)
	}
	return nil
}

// MarkAllNotificationsRead flags every unread notification of a user
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE", userID)
	return err
}

// CountUnreadNotifications counts a user's unread notifications
func (s *Store) CountUnreadNotifications(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE", userID)
	return count, err
}
