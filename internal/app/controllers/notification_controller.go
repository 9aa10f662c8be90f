package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/middleware"
	"github.com/yigit/internhub/internal/pkg/helpers"
)

// NotificationController handles the in-app inbox
type NotificationController struct {
	notificationService services.NotificationService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// ListUnread lists unread notifications, newest first
// @Summary List unread notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum items (default 50, max 100)"
// @Param before query string false "Cursor from a previous page"
// @Success 200 {object} dto.APIResponse{data=dto.StreamResponse{items=[]models.Notification}}
// @Failure 400 {object} dto.ErrorResponse "Invalid cursor"
// @Router /notifications/unread [get]
func (c *NotificationController) ListUnread(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	before, ok := parseCursor(ctx)
	if !ok {
		return
	}
	page, err := streamPage(c.notificationService.ListUnread(ctx.Request.Context(), userID, before), streamLimit(ctx),
		func(n *models.Notification) *repositories.Cursor { return repositories.CursorOf(n.CreatedAt, n.ID) })
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page)
}

// List pages through all notifications
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Notification}}
// @Router /notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)
	items, info, err := c.notificationService.List(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, info)
}

// UnreadCount returns the number of unread notifications
// @Summary Count unread notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UnreadCountResponse}
// @Router /notifications/unread/count [get]
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	count, err := c.notificationService.UnreadCount(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.UnreadCountResponse{Count: count})
}

// MarkRead marks one notification read
// @Summary Mark notification read
// @Tags notifications
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 204 "Marked read"
// @Failure 403 {object} dto.ErrorResponse "Belongs to another user"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /notifications/{id}/read [post]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.notificationService.MarkRead(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// MarkAllRead marks every notification of the caller read
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MarkAllReadResponse}
// @Router /notifications/read-all [post]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	updated, err := c.notificationService.MarkAllRead(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.MarkAllReadResponse{Updated: updated})
}
