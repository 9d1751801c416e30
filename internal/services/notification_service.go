package services

import (
	"context"

	"github.com/anonto42/nano-comments/backend/internal/models"
	"github.com/anonto42/nano-comments/backend/internal/repositories"
)

// Notification listing bounds.
const (
	DefaultNotificationLimit = 20
	MaxNotificationLimit     = 50
)

// NotificationService is the recipient-facing side of the notification store. UnreadCount is
// the single source of truth for every count pushed to clients.
type NotificationService struct {
	notifications repositories.NotificationRepository
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(notifications repositories.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// List returns a page of the user's notifications, newest first, with the unread count.
func (s *NotificationService) List(ctx context.Context, userID uint, page, limit int) (*models.NotificationList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultNotificationLimit
	}
	if limit > MaxNotificationLimit {
		limit = MaxNotificationLimit
	}

	list, err := s.notifications.GetByRecipientID(ctx, userID, page, limit)
	if err != nil {
		return nil, unavailable("Failed to load notifications", err)
	}
	return list, nil
}

// UnreadCount returns how many of the user's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.notifications.GetUnreadCount(ctx, userID)
	if err != nil {
		return 0, unavailable("Failed to count notifications", err)
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read. Marking a read notification again
// succeeds.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uint) error {
	notification, err := s.owned(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if notification.Read {
		return nil
	}
	if err := s.notifications.MarkAsRead(ctx, notificationID); err != nil {
		return unavailable("Failed to update notification", err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	n, err := s.notifications.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, unavailable("Failed to update notifications", err)
	}
	return n, nil
}

// Delete removes one of the user's notifications.
func (s *NotificationService) Delete(ctx context.Context, notificationID, userID uint) error {
	if _, err := s.owned(ctx, notificationID, userID); err != nil {
		return err
	}
	if err := s.notifications.DeleteNotification(ctx, notificationID); err != nil {
		return unavailable("Failed to delete notification", err)
	}
	return nil
}

func (s *NotificationService) owned(ctx context.Context, notificationID, userID uint) (*models.Notification, error) {
	notification, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return nil, lookupError(err, "Notification not found", "Failed to load notification")
	}
	if notification.UserID != userID {
		return nil, forbidden("You can only access your own notifications")
	}
	return notification, nil
}
