package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterNotificationRoutes registers the notification routes
func RegisterNotificationRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notifications")
	{
		notifications.GET("", listAllNotifications)
		notifications.GET("/user/:uid", listUserNotifications)
		notifications.PUT("/:id/read", markNotificationRead)
		notifications.DELETE("/:id", deleteNotification)
	}
}

func listAllNotifications(c *gin.Context) {
	notifications, err := deps.Notifications.ListAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}

func listUserNotifications(c *gin.Context) {
	notifications, err := deps.Notifications.ListByUser(c.Param("uid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}

func markNotificationRead(c *gin.Context) {
	if err := deps.Notifications.MarkRead(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notificare citită"})
}

func deleteNotification(c *gin.Context) {
	if err := deps.Notifications.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notificare ștearsă"})
}
