package models

import "time"

// Comment represents a comment on a post. A nil ParentID marks a root comment.
// DeletedAt is a tombstone: soft-deleted rows stay in storage so they can be restored.
type Comment struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	PostID    string     `json:"postId" gorm:"size:64;not null;index"` // posts may live in MongoDB, so no FK
	ParentID  *uint      `json:"parentId" gorm:"index"`
	Body      string     `json:"body" gorm:"type:text;not null"`
	AuthorID  uint       `json:"authorId" gorm:"not null;index"`
	Author    *User      `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	CreatedAt time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" gorm:"index"`
}

// IsDeleted reports whether the comment currently carries a tombstone.
func (c *Comment) IsDeleted() bool {
	return c.DeletedAt != nil
}

// CommentNode is a comment placed in a reconstructed thread.
type CommentNode struct {
	Comment
	Depth    int            `json:"depth"`
	Children []*CommentNode `json:"children"`
}

// CommentTreeRow is one row of the recursive traversal: where a comment sits in its thread.
// Path is the "/"-joined list of zero-padded ancestor ids, ending with the comment's own id.
type CommentTreeRow struct {
	ID       uint
	ParentID *uint
	Depth    int
	Path     string
}

// FlatComment is a comment in an unthreaded listing along with its live direct replies count.
type FlatComment struct {
	Comment
	ReplyCount int64 `json:"replyCount"`
}

// CommentPage is one page of the reverse-chronological listing.
type CommentPage struct {
	Comments    []FlatComment `json:"comments"`
	HasNextPage bool          `json:"hasNextPage"`
	NextCursor  *uint         `json:"nextCursor"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Body     string `json:"body" validate:"required,min=1,max=2000"`
	ParentID *uint  `json:"parent_id" validate:"omitempty,min=1"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}
