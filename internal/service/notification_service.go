package service

import (
	"context"

	"scentstore/internal/models"
	"scentstore/internal/redisclient"
	"scentstore/internal/store"
	"scentstore/internal/util"

	"go.uber.org/zap"
)

// NotificationService emits and queries user notifications
type NotificationService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(st *store.Store, redis *redisclient.Client) *NotificationService {
	return &NotificationService{
		store:  st,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// Emit creates a notification row. ProfileReminder is single-instance
// per user (read or unread); repeated emission is a no-op. All other
// types always insert, one per status transition. Returns the row and
// whether it was actually created.
func (ns *NotificationService) Emit(ctx context.Context, userID int64, orderID *int64, notifType, message string) (*models.Notification, bool, error) {
	n := &models.Notification{
		UserID:  userID,
		OrderID: orderID,
		Type:    notifType,
		Message: message,
	}

	created, err := ns.store.CreateNotification(ctx, n)
	if err != nil {
		return nil, false, err
	}
	if !created {
		ns.logger.Debug("Notification suppressed as duplicate",
			zap.Int64("user_id", userID), zap.String("type", notifType))
		return nil, false, nil
	}

	util.NotificationsEmittedTotal.WithLabelValues(notifType).Inc()

	if err := ns.redis.InvalidateUnreadCount(ctx, userID); err != nil {
		ns.logger.Warn("Failed to invalidate unread count cache",
			zap.Int64("user_id", userID), zap.Error(err))
	}
	return n, true, nil
}

// List retrieves a user's notifications, newest first
func (ns *NotificationService) List(ctx context.Context, userID int64) ([]models.Notification, error) {
	return ns.store.GetNotificationsByUserID(ctx, userID)
}

// MarkRead flags one notification as read
func (ns *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	if err := ns.store.MarkNotificationRead(ctx, userID, notificationID); err != nil {
		return err
	}
	if err := ns.redis.InvalidateUnreadCount(ctx, userID); err != nil {
		ns.logger.Warn("Failed to invalidate unread count cache",
			zap.Int64("user_id", userID), zap.Error(err))
	}
	return nil
}

// MarkAllRead flags every unread notification of a user
func (ns *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	if err := ns.store.MarkAllNotificationsRead(ctx, userID); err != nil {
		return err
	}
	if err := ns.redis.InvalidateUnreadCount(ctx, userID); err != nil {
		ns.logger.Warn("Failed to invalidate unread count cache",
			zap.Int64("user_id", userID), zap.Error(err))
	}
	return nil
}

// CountUnread returns the unread count, served from cache when warm
func (ns *NotificationService) CountUnread(ctx context.Context, userID int64) (int, error) {
	if count, found, err := ns.redis.GetUnreadCount(ctx, userID); err == nil && found {
		return count, nil
	}

	count, err := ns.store.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := ns.redis.SetUnreadCount(ctx, userID, count); err != nil {
		ns.logger.Warn("Failed to cache unread count",
			zap.Int64("user_id", userID), zap.Error(err))
	}
	return count, nil
}
