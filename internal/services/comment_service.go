package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/anonto42/nano-comments/backend/internal/logger"
	"github.com/anonto42/nano-comments/backend/internal/models"
	"github.com/anonto42/nano-comments/backend/internal/repositories"
)

// Mutation windows. An action is refused once its window has fully elapsed.
const (
	EditWindow    = 15 * time.Minute
	DeleteWindow  = 15 * time.Minute
	RestoreWindow = 15 * time.Minute
)

// Flat listing page size bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CommentCreatedHandler reacts to a committed comment. The dispatcher is the production one.
type CommentCreatedHandler interface {
	OnCommentCreated(ctx context.Context, comment *models.Comment, post *models.Post) (*models.Notification, error)
}

// CreateCommentInput describes a comment submission by an authenticated author.
type CreateCommentInput struct {
	PostID   string
	AuthorID uint
	Body     string
	ParentID *uint
}

// CommentService owns comment threads: creation, time-boxed edit/delete/restore, and the
// threaded and flat read paths.
type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	events   CommentCreatedHandler
	now      func() time.Time
	log      *slog.Logger
}

// CommentServiceOption customizes a CommentService.
type CommentServiceOption func(*CommentService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CommentServiceOption {
	return func(s *CommentService) { s.now = now }
}

// NewCommentService creates a CommentService. events may be nil.
func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository, events CommentCreatedHandler, opts ...CommentServiceOption) *CommentService {
	s := &CommentService{
		comments: comments,
		posts:    posts,
		events:   events,
		now:      time.Now,
		log:      logger.WithComponent("comments"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a comment and then hands it to the notification dispatcher. A dispatch failure
// is logged and does not fail the creation: the comment is already committed.
func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, invalidArgument("Comment body is required")
	}

	post, err := s.livePost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.comments.GetCommentByID(ctx, *in.ParentID)
		if err != nil && !isNotFound(err) {
			return nil, unavailable("Failed to load parent comment", err)
		}
		if parent == nil || parent.IsDeleted() || parent.PostID != in.PostID {
			return nil, invalidArgument("Invalid parent comment")
		}
	}

	now := s.now()
	comment := &models.Comment{
		PostID:    in.PostID,
		ParentID:  in.ParentID,
		Body:      body,
		AuthorID:  in.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, unavailable("Failed to create comment", err)
	}

	if s.events != nil {
		if _, err := s.events.OnCommentCreated(ctx, comment, post); err != nil {
			s.log.ErrorContext(ctx, "Failed to send notification",
				slog.Uint64("comment_id", uint64(comment.ID)),
				slog.String("post_id", post.ID),
				slog.String("error", err.Error()))
		}
	}

	return comment, nil
}

// GetThreaded returns the live comments of a post as a forest in pre-order. A live reply whose
// parent is tombstoned is returned as a root of the forest, keeping its depth.
func (s *CommentService) GetThreaded(ctx context.Context, postID string) ([]*models.CommentNode, error) {
	if _, err := s.livePost(ctx, postID); err != nil {
		return nil, err
	}

	rows, err := s.comments.GetThreadRows(ctx, postID)
	if err != nil {
		return nil, unavailable("Failed to load comments", err)
	}

	ids := make([]uint, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	live, err := s.comments.GetLiveCommentsByIDs(ctx, ids)
	if err != nil {
		return nil, unavailable("Failed to load comments", err)
	}

	byID := make(map[uint]models.Comment, len(live))
	for _, c := range live {
		byID[c.ID] = c
	}
	return buildTree(rows, byID), nil
}

// GetFlat returns one page of live comments, newest first, replies included. cursor is the id
// returned as NextCursor by the previous page.
func (s *CommentService) GetFlat(ctx context.Context, postID string, pageSize int, cursor *uint) (*models.CommentPage, error) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	if _, err := s.livePost(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.comments.GetCommentsPage(ctx, postID, pageSize+1, cursor)
	if err != nil {
		return nil, unavailable("Failed to load comments", err)
	}

	page := &models.CommentPage{Comments: []models.FlatComment{}}
	if len(comments) > pageSize {
		comments = comments[:pageSize]
		page.HasNextPage = true
		next := comments[len(comments)-1].ID
		page.NextCursor = &next
	}

	ids := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	replies, err := s.comments.CountLiveReplies(ctx, ids)
	if err != nil {
		return nil, unavailable("Failed to count replies", err)
	}

	for _, c := range comments {
		page.Comments = append(page.Comments, models.FlatComment{Comment: c, ReplyCount: replies[c.ID]})
	}
	return page, nil
}

// Update replaces the body of a live comment. Only the author may edit, within EditWindow of
// creation.
func (s *CommentService) Update(ctx context.Context, id uint, body string, requesterID uint) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, invalidArgument("Comment body is required")
	}

	comment, err := s.liveComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != requesterID {
		return nil, forbidden("You can only update your own comments")
	}

	now := s.now()
	if expired(now, comment.CreatedAt, EditWindow) {
		return nil, forbidden("Comments can only be edited within 15 minutes")
	}

	if err := s.comments.UpdateBody(ctx, id, body, now); err != nil {
		return nil, unavailable("Failed to update comment", err)
	}
	comment.Body = body
	comment.UpdatedAt = now
	return comment, nil
}

// SoftDelete tombstones a live comment. Replies are left untouched so a restore brings the
// thread back intact. Only the author may delete, within DeleteWindow of creation.
func (s *CommentService) SoftDelete(ctx context.Context, id uint, requesterID uint) (*models.Comment, error) {
	comment, err := s.liveComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != requesterID {
		return nil, forbidden("You can only delete your own comments")
	}

	now := s.now()
	if expired(now, comment.CreatedAt, DeleteWindow) {
		return nil, forbidden("Comments can only be deleted within 15 minutes")
	}

	if err := s.comments.SetDeletedAt(ctx, id, &now); err != nil {
		return nil, unavailable("Failed to delete comment", err)
	}
	comment.DeletedAt = &now
	return comment, nil
}

// Restore clears the tombstone of a comment deleted at most RestoreWindow ago.
func (s *CommentService) Restore(ctx context.Context, id uint, requesterID uint) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Comment not found", "Failed to load comment")
	}
	if comment.AuthorID != requesterID {
		return nil, forbidden("You can only restore your own comments")
	}
	if !comment.IsDeleted() {
		return nil, invalidArgument("Comment is not deleted")
	}
	if s.now().Sub(*comment.DeletedAt) > RestoreWindow {
		return nil, forbidden("Comments can only be restored within 15 minutes of deletion")
	}

	if err := s.comments.SetDeletedAt(ctx, id, nil); err != nil {
		return nil, unavailable("Failed to restore comment", err)
	}
	comment.DeletedAt = nil
	return comment, nil
}

func (s *CommentService) livePost(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, lookupError(err, "Post not found", "Failed to load post")
	}
	return post, nil
}

func (s *CommentService) liveComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Comment not found", "Failed to load comment")
	}
	if comment.IsDeleted() {
		return nil, notFound("Comment not found")
	}
	return comment, nil
}

// expired reports whether window has fully elapsed between since and now.
func expired(now, since time.Time, window time.Duration) bool {
	return now.Sub(since) >= window
}
