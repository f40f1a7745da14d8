package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/platewise/platewise-api/middleware"
	"github.com/platewise/platewise-api/services"
)

// GetMyNotifications handles GET /api/v1/notifications - unread only,
// newest first, to support clear-on-read clients
func GetMyNotifications(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	notifications, total, err := services.GetNotificationStore().ListUnread(userID, page, pageSize)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"notifications":       notifications,
		"total_notifications": total,
		"current_page":        page,
		"total_pages":         pageCount(total, pageSize),
	})
}

// MarkNotificationRead handles PUT /api/v1/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid notification id")
		return
	}

	if err := services.GetNotificationStore().MarkRead(uint(notificationID)); err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to mark notification as read")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Marked as read",
	})
}

// MarkAllNotificationsRead handles PUT /api/v1/notifications/read-all
func MarkAllNotificationsRead(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	if err := services.GetNotificationStore().MarkAllRead(userID); err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to mark notifications as read")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "All notifications marked as read",
	})
}
