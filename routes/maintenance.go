package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"laundry-booking-server/services"
)

// RegisterMaintenanceRoutes registers the maintenance window routes
func RegisterMaintenanceRoutes(router *gin.RouterGroup) {
	maintenance := router.Group("/maintenance")
	{
		maintenance.GET("", listMaintenance)
		maintenance.POST("", scheduleMaintenance)
		maintenance.DELETE("/:id", deleteMaintenance)
	}
}

func listMaintenance(c *gin.Context) {
	intervals, err := deps.Maintenance.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"maintenance": intervals, "count": len(intervals)})
}

func scheduleMaintenance(c *gin.Context) {
	var input services.ScheduleMaintenanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "message": err.Error()})
		return
	}

	interval, cancelled, err := deps.Maintenance.Schedule(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"maintenance":       interval,
		"cancelledBookings": cancelled,
	})
}

func deleteMaintenance(c *gin.Context) {
	if err := deps.Maintenance.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Interval de mentenanță șters"})
}
