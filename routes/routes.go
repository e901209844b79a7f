package routes

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"laundry-booking-server/services"
	"laundry-booking-server/websocket"
)

// Services bundles everything the handlers need.
type Services struct {
	Bookings      *services.BookingService
	Maintenance   *services.MaintenanceService
	Notifications *services.NotificationService
	Settings      *services.SettingsService
	Cleanup       *services.CleanupService
	Hub           *websocket.Hub
}

var deps Services

// Register wires all API routes onto the router
func Register(router *gin.Engine, s Services) {
	deps = s

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWebSocket(deps.Hub, c.Writer, c.Request)
	})
	router.GET("/generate-ics", generateICS)

	api := router.Group("/api")
	{
		RegisterBookingRoutes(api)
		RegisterMaintenanceRoutes(api)
		RegisterNotificationRoutes(api)
		RegisterSettingsRoutes(api)

		api.GET("/temp-reservations", getTempReservations)
		api.POST("/cleanup", runCleanup)
	}
}

// respondError maps service errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	var conflictErr *services.ConflictError
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError

	switch {
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":                "Interval conflict",
			"message":              conflictErr.Error(),
			"conflicts":            conflictErr.Conflicts,
			"maintenanceConflicts": conflictErr.MaintenanceConflicts,
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"field":   validationErr.Field,
			"message": validationErr.Message,
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": notFoundErr.Error(),
		})
	default:
		log.Printf("❌ Unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Something went wrong. Please try again.",
		})
	}
}
