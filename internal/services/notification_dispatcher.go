package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/anonto42/nano-comments/backend/internal/logger"
	"github.com/anonto42/nano-comments/backend/internal/metrics"
	"github.com/anonto42/nano-comments/backend/internal/models"
	"github.com/anonto42/nano-comments/backend/internal/repositories"
	"github.com/anonto42/nano-comments/backend/pkg/relay"
	"gorm.io/datatypes"
)

// NotificationDispatcher decides who hears about a new comment, stores the notification and
// publishes it on the recipient's relay channel. The stored row is authoritative; the publish is
// a best-effort hint for connected clients.
type NotificationDispatcher struct {
	notifications repositories.NotificationRepository
	comments      repositories.CommentRepository
	users         repositories.UserRepository
	publisher     relay.Publisher
	log           *slog.Logger
}

// NewNotificationDispatcher creates a NotificationDispatcher.
func NewNotificationDispatcher(notifications repositories.NotificationRepository, comments repositories.CommentRepository, users repositories.UserRepository, publisher relay.Publisher) *NotificationDispatcher {
	return &NotificationDispatcher{
		notifications: notifications,
		comments:      comments,
		users:         users,
		publisher:     publisher,
		log:           logger.WithComponent("dispatcher"),
	}
}

// OnCommentCreated notifies the author of the parent comment for a reply, or the post author
// for a root comment, unless that person wrote the new comment. It returns nil when nobody is
// notified.
func (d *NotificationDispatcher) OnCommentCreated(ctx context.Context, comment *models.Comment, post *models.Post) (*models.Notification, error) {
	actor := comment.Author
	if actor == nil {
		u, err := d.users.GetUserByID(ctx, comment.AuthorID)
		if err != nil {
			return nil, fmt.Errorf("load comment author %d: %w", comment.AuthorID, err)
		}
		actor = u
	}

	var notification *models.Notification
	if comment.ParentID != nil {
		parent, err := d.comments.GetCommentByID(ctx, *comment.ParentID)
		if err != nil {
			return nil, fmt.Errorf("load parent comment %d: %w", *comment.ParentID, err)
		}
		if parent.AuthorID == comment.AuthorID {
			return nil, nil
		}
		notification = &models.Notification{
			UserID:  parent.AuthorID,
			Type:    models.NotificationTypeCommentReply,
			Title:   "New reply to your comment",
			Message: fmt.Sprintf("%s replied to your comment", actor.DisplayName()),
			Data: datatypes.NewJSONType(models.NotificationData{
				PostID:          post.ID,
				CommentID:       comment.ID,
				ParentCommentID: comment.ParentID,
			}),
		}
	} else {
		if post.AuthorID == comment.AuthorID {
			return nil, nil
		}
		notification = &models.Notification{
			UserID:  post.AuthorID,
			Type:    models.NotificationTypePostReply,
			Title:   "New comment on your post",
			Message: fmt.Sprintf("%s commented on your post", actor.DisplayName()),
			Data: datatypes.NewJSONType(models.NotificationData{
				PostID:    post.ID,
				CommentID: comment.ID,
			}),
		}
	}

	if err := d.Send(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// Send stores the notification and publishes it to the recipient's channel. Only a storage
// failure is returned; publish failures are logged.
func (d *NotificationDispatcher) Send(ctx context.Context, notification *models.Notification) error {
	if err := d.notifications.CreateNotification(ctx, notification); err != nil {
		return unavailable("Failed to store notification", err)
	}

	published := d.publish(ctx, notification)
	metrics.ObserveDispatch(notification.Type, published)
	return nil
}

func (d *NotificationDispatcher) publish(ctx context.Context, notification *models.Notification) bool {
	attrs := []any{
		slog.Uint64("user_id", uint64(notification.UserID)),
		slog.Uint64("notification_id", uint64(notification.ID)),
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		d.log.ErrorContext(ctx, "Failed to encode notification", append(attrs, slog.String("error", err.Error()))...)
		return false
	}

	if err := d.publisher.Publish(ctx, relay.NotificationChannel(notification.UserID), payload); err != nil {
		d.log.WarnContext(ctx, "Failed to publish notification", append(attrs, slog.String("error", err.Error()))...)
		return false
	}

	d.log.DebugContext(ctx, "Notification published", attrs...)
	return true
}
