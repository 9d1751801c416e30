package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is the commented-on entity, stored in PostgreSQL or MongoDB depending on POST_STORE.
type Post struct {
	ID        string         `json:"id" gorm:"primaryKey;size:64" bson:"_id"`
	AuthorID  uint           `json:"authorId" gorm:"not null;index" bson:"author_id"`
	Content   string         `json:"content" bson:"content"`
	CreatedAt time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index" bson:"-"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}
