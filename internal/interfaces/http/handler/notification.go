package handler

import (
	"github.com/gin-gonic/gin"

	appnotification "github.com/retailops/backoffice/internal/application/notification"
)

// NotificationHandler handles the caller's notification inbox
type NotificationHandler struct {
	BaseHandler
	notifications *appnotification.Service
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *appnotification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List godoc
// @ID           listNotifications
// @Summary      List my notifications
// @Tags         notifications
// @Produce      json
// @Param        unread query bool false "Only unread"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]appnotification.NotificationResponse]
// @Security     BearerAuth
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var filter appnotification.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.notifications.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// UnreadCount godoc
// @ID           countUnreadNotifications
// @Summary      Count my unread notifications
// @Tags         notifications
// @Produce      json
// @Success      200 {object} APIResponse[CountData]
// @Security     BearerAuth
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	n, err := h.notifications.UnreadCount(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: n})
}

// MarkRead godoc
// @ID           markNotificationRead
// @Summary      Mark a notification read
// @Tags         notifications
// @Param        id path string true "Notification ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// MarkAllRead godoc
// @ID           markAllNotificationsRead
// @Summary      Mark all my notifications read
// @Tags         notifications
// @Produce      json
// @Success      200 {object} APIResponse[CountData]
// @Security     BearerAuth
// @Router       /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	n, err := h.notifications.MarkAllRead(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: n})
}
