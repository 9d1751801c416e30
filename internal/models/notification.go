package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types produced by comment events.
const (
	NotificationTypePostReply    = "post_reply"
	NotificationTypeCommentReply = "comment_reply"
	NotificationTypeTest         = "test"
)

// NotificationData is the structured payload pointing back at the triggering comment.
type NotificationData struct {
	PostID          string `json:"postId,omitempty"`
	CommentID       uint   `json:"commentId,omitempty"`
	ParentCommentID *uint  `json:"parentCommentId,omitempty"`
	Test            bool   `json:"test,omitempty"`
}

// Notification represents a user notification (PostgreSQL).
// Its JSON form is also the relay message payload.
type Notification struct {
	ID        uint                                 `json:"id" gorm:"primaryKey"`
	UserID    uint                                 `json:"userId" gorm:"not null;index"` // recipient
	Type      string                               `json:"type" gorm:"size:30;index"`
	Title     string                               `json:"title" gorm:"size:200"`
	Message   string                               `json:"message" gorm:"type:text"`
	Data      datatypes.JSONType[NotificationData] `json:"data"`
	Read      bool                                 `json:"read" gorm:"column:is_read;default:false;index"`
	CreatedAt time.Time                            `json:"createdAt" gorm:"index"`
}

// NotificationList is a page of notifications plus the recipient's unread count.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	Total         int64          `json:"total"`
	UnreadCount   int64          `json:"unreadCount"`
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
}
