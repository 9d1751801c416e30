package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/nano-comments/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetThreadRows(ctx context.Context, postID string) ([]models.CommentTreeRow, error)
	GetLiveCommentsByIDs(ctx context.Context, ids []uint) ([]models.Comment, error)
	GetCommentsPage(ctx context.Context, postID string, limit int, cursor *uint) ([]models.Comment, error)
	CountLiveReplies(ctx context.Context, parentIDs []uint) (map[uint]int64, error)
	UpdateBody(ctx context.Context, id uint, body string, at time.Time) error
	SetDeletedAt(ctx context.Context, id uint, deletedAt *time.Time) error
}

// pathSegmentWidth is wide enough for any uint64 id, so lexical path order equals numeric order.
const pathSegmentWidth = 20

// PostgresCommentRepository implements CommentRepository with gorm. Despite the name it also
// serves SQLite, which shares the recursive CTE syntax.
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment inserts the comment and loads its author.
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("Author").Create(comment).Error; err != nil {
		return err
	}
	var author models.User
	if err := r.db.WithContext(ctx).First(&author, comment.AuthorID).Error; err != nil {
		return err
	}
	comment.Author = &author
	return nil
}

// GetCommentByID retrieves a comment by ID whether or not it is soft-deleted.
func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetThreadRows walks every thread of a post in one recursive query, starting at the root
// comments. Tombstoned comments are traversed so their live descendants are still found, but
// are left out of the result. Rows come back in pre-order (path order).
func (r *PostgresCommentRepository) GetThreadRows(ctx context.Context, postID string) ([]models.CommentTreeRow, error) {
	pad, err := r.padExpr()
	if err != nil {
		return nil, err
	}

	query := strings.NewReplacer("{{pad_id}}", pad("id"), "{{pad_child_id}}", pad("c.id")).Replace(`
WITH RECURSIVE comment_tree AS (
    SELECT id, parent_id, deleted_at, 0 AS depth, {{pad_id}} AS path
    FROM comments
    WHERE post_id = ? AND parent_id IS NULL

    UNION ALL

    SELECT c.id, c.parent_id, c.deleted_at, ct.depth + 1, ct.path || '/' || {{pad_child_id}}
    FROM comments c
    INNER JOIN comment_tree ct ON c.parent_id = ct.id
)
SELECT id, parent_id, depth, path
FROM comment_tree
WHERE deleted_at IS NULL
ORDER BY path`)

	var rows []models.CommentTreeRow
	if err := r.db.WithContext(ctx).Raw(query, postID).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("comment tree query: %w", err)
	}
	return rows, nil
}

// padExpr returns a dialect-specific SQL expression rendering an id column zero-padded.
func (r *PostgresCommentRepository) padExpr() (func(col string) string, error) {
	switch name := r.db.Dialector.Name(); name {
	case "postgres":
		return func(col string) string {
			return fmt.Sprintf("lpad(CAST(%s AS TEXT), %d, '0')", col, pathSegmentWidth)
		}, nil
	case "sqlite":
		return func(col string) string {
			return fmt.Sprintf("printf('%%0%dd', %s)", pathSegmentWidth, col)
		}, nil
	default:
		return nil, fmt.Errorf("recursive comment query not supported for dialect %q", name)
	}
}

// GetLiveCommentsByIDs loads the live comments among ids, with authors. Order is unspecified.
func (r *PostgresCommentRepository) GetLiveCommentsByIDs(ctx context.Context, ids []uint) ([]models.Comment, error) {
	var comments []models.Comment
	if len(ids) == 0 {
		return comments, nil
	}
	err := r.db.WithContext(ctx).Preload("Author").
		Where("id IN ? AND deleted_at IS NULL", ids).
		Find(&comments).Error
	return comments, err
}

// GetCommentsPage returns up to limit live comments of a post, newest first by id, with ids
// below cursor when one is given. Ordering on created_at would disagree with the id cursor when
// replica clocks drift.
func (r *PostgresCommentRepository) GetCommentsPage(ctx context.Context, postID string, limit int, cursor *uint) ([]models.Comment, error) {
	var comments []models.Comment
	q := r.db.WithContext(ctx).Preload("Author").
		Where("post_id = ? AND deleted_at IS NULL", postID)
	if cursor != nil {
		q = q.Where("id < ?", *cursor)
	}
	err := q.Order("id DESC").Limit(limit).Find(&comments).Error
	return comments, err
}

// CountLiveReplies returns the number of live direct replies for each of parentIDs.
// Parents without replies are absent from the map.
func (r *PostgresCommentRepository) CountLiveReplies(ctx context.Context, parentIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(parentIDs))
	if len(parentIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ParentID uint
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("parent_id, COUNT(*) AS count").
		Where("parent_id IN ? AND deleted_at IS NULL", parentIDs).
		Group("parent_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ParentID] = row.Count
	}
	return counts, nil
}

// UpdateBody replaces a comment body.
func (r *PostgresCommentRepository) UpdateBody(ctx context.Context, id uint, body string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"body": body, "updated_at": at}).Error
}

// SetDeletedAt sets or clears the tombstone of a comment.
func (r *PostgresCommentRepository) SetDeletedAt(ctx context.Context, id uint, deletedAt *time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("deleted_at", deletedAt).Error
}
