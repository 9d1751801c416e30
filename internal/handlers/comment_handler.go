package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/nano-comments/backend/internal/models"
	"github.com/anonto42/nano-comments/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// RegisterCommentRoutes registers the authenticated comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.PATCH("/comments/:id/restore", h.RestoreComment)
}

// RegisterPublicRoutes registers the comment routes readable without a session
func (h *CommentHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/posts/:post_id/comments", h.GetCommentsByPostID)
}

// CreateComment creates a comment or a reply on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.comments.Create(c.Request().Context(), services.CreateCommentInput{
		PostID:   c.Param("post_id"),
		AuthorID: currentUserID,
		Body:     req.Body,
		ParentID: req.ParentID,
	})
	if err != nil {
		return httpError(c, err, "Failed to create comment")
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": comment})
}

// GetCommentsByPostID returns the comments of a post, as a tree with ?tree=true or as a flat
// newest-first page otherwise
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID := c.Param("post_id")
	ctx := c.Request().Context()

	if tree, _ := strconv.ParseBool(c.QueryParam("tree")); tree {
		forest, err := h.comments.GetThreaded(ctx, postID)
		if err != nil {
			return httpError(c, err, "Failed to load comments")
		}
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"data":    echo.Map{"comments": forest},
		})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	var cursor *uint
	if raw := c.QueryParam("cursor"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid cursor")
		}
		v := uint(id)
		cursor = &v
	}

	page, err := h.comments.GetFlat(ctx, postID, limit, cursor)
	if err != nil {
		return httpError(c, err, "Failed to load comments")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"comments": page.Comments},
		"meta": echo.Map{
			"hasNextPage": page.HasNextPage,
			"nextCursor":  page.NextCursor,
		},
	})
}

// UpdateComment edits the body of the caller's comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	commentID, err := parseIDParam(c, "id", "comment")
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.comments.Update(c.Request().Context(), commentID, req.Body, currentUserID)
	if err != nil {
		return httpError(c, err, "Failed to update comment")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": comment})
}

// DeleteComment soft-deletes the caller's comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	commentID, err := parseIDParam(c, "id", "comment")
	if err != nil {
		return err
	}

	if _, err := h.comments.SoftDelete(c.Request().Context(), commentID, currentUserID); err != nil {
		return httpError(c, err, "Failed to delete comment")
	}

	return c.NoContent(http.StatusNoContent)
}

// RestoreComment undoes a recent soft delete of the caller's comment
func (h *CommentHandler) RestoreComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	commentID, err := parseIDParam(c, "id", "comment")
	if err != nil {
		return err
	}

	comment, err := h.comments.Restore(c.Request().Context(), commentID, currentUserID)
	if err != nil {
		return httpError(c, err, "Failed to restore comment")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": comment})
}
