package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// listNotifications returns the user's notifications, newest first
func (h *Handler) listNotifications(c *gin.Context) {
	notifications, err := h.notifications.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// unreadNotificationCount returns the unread badge count
func (h *Handler) unreadNotificationCount(c *gin.Context) {
	count, err := h.notifications.CountUnread(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// markNotificationRead marks one notification as read
func (h *Handler) markNotificationRead(c *gin.Context) {
	notificationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), currentUserID(c), notificationID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

// markAllNotificationsRead clears the unread badge
func (h *Handler) markAllNotificationsRead(c *gin.Context) {
	if err := h.notifications.MarkAllRead(c.Request.Context(), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "read"})
}
