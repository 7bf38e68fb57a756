package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vehicle-parking-server/database"
	"vehicle-parking-server/models"
)

// RegisterNotificationRoutes registers the notification routes
func RegisterNotificationRoutes(router *gin.RouterGroup) {
	router.GET("", getUserNotifications)
	router.GET("/unread-count", getUnreadCount)
	router.POST("/read/:id", markNotificationRead)
	router.POST("/read-all", markAllNotificationsRead)
}

// getUserNotifications returns the user's notifications, newest first
func getUserNotifications(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var notifications []models.Notification
	if err := database.DB.Preload("Lot").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// getUnreadCount returns the number of unread notifications
func getUnreadCount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var count int64
	if err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", user.ID, false).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// markNotificationRead marks one notification as read
func markNotificationRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	notificationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	if err := bookingService().MarkNotificationRead(user.ID, uint(notificationID)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// markAllNotificationsRead marks every unread notification as read
func markAllNotificationsRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	updated, err := bookingService().MarkAllNotificationsRead(user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "All notifications marked as read",
		"updated": updated,
	})
}
