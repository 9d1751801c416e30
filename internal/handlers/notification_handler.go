package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/anonto42/nano-comments/backend/internal/models"
	"github.com/anonto42/nano-comments/backend/internal/services"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
	dispatcher    *services.NotificationDispatcher
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService, dispatcher *services.NotificationDispatcher) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		dispatcher:    dispatcher,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PATCH("/notifications/mark-all-read", h.MarkAllAsRead)
	g.PATCH("/notifications/:id/read", h.MarkAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// RegisterTestRoutes registers the development-only test notification route
func (h *NotificationHandler) RegisterTestRoutes(g *echo.Group) {
	g.POST("/notifications/test", h.CreateTestNotification)
}

// GetNotifications returns paginated notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	list, err := h.notifications.List(c.Request().Context(), currentUserID, page, limit)
	if err != nil {
		return httpError(c, err, "Failed to load notifications")
	}

	totalPages := int(math.Ceil(float64(list.Total) / float64(list.Limit)))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": list.Notifications,
			"unreadCount":   list.UnreadCount,
		},
		"meta": echo.Map{
			"currentPage":     list.Page,
			"totalPages":      totalPages,
			"totalItems":      list.Total,
			"itemsPerPage":    list.Limit,
			"hasNextPage":     list.Page < totalPages,
			"hasPreviousPage": list.Page > 1,
		},
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.notifications.UnreadCount(c.Request().Context(), currentUserID)
	if err != nil {
		return httpError(c, err, "Failed to count notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"unreadCount": count}})
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	notificationID, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	if err := h.notifications.MarkRead(c.Request().Context(), notificationID, currentUserID); err != nil {
		return httpError(c, err, "Failed to update notification")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Notification marked as read"})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	updated, err := h.notifications.MarkAllRead(c.Request().Context(), currentUserID)
	if err != nil {
		return httpError(c, err, "Failed to update notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"updated": updated}})
}

// DeleteNotification removes one of the caller's notifications
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	notificationID, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	if err := h.notifications.Delete(c.Request().Context(), notificationID, currentUserID); err != nil {
		return httpError(c, err, "Failed to delete notification")
	}

	return c.NoContent(http.StatusNoContent)
}

// CreateTestNotification stores a notification for the caller and publishes it like a real one
func (h *NotificationHandler) CreateTestNotification(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	notification := &models.Notification{
		UserID:  currentUserID,
		Type:    models.NotificationTypeTest,
		Title:   "Test Notification",
		Message: "This is a test notification to verify the system is working!",
		Data:    datatypes.NewJSONType(models.NotificationData{Test: true}),
	}
	if err := h.dispatcher.Send(c.Request().Context(), notification); err != nil {
		return httpError(c, err, "Failed to create test notification")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Test notification created and sent",
		"data":    notification,
	})
}
