package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"laundry-booking-server/models"
	"laundry-booking-server/services"
)

// RegisterBookingRoutes registers the booking lifecycle routes
func RegisterBookingRoutes(router *gin.RouterGroup) {
	programari := router.Group("/programari")
	{
		programari.GET("", listBookings)
		programari.POST("", createBooking)
		programari.POST("/check", checkConflicts)
		programari.GET("/user/:uid", listUserBookings)
		programari.GET("/:id", getBooking)
		programari.PUT("/:id", updateBooking)
		programari.DELETE("/:id", deleteBooking)
		programari.POST("/:id/delete", deleteBookingWithReason)
		programari.POST("/:id/cancel", cancelBooking)
	}
}

func listBookings(c *gin.Context) {
	opts := services.ListOptions{
		UserUID:         c.Query("userId"),
		Date:            c.Query("date"),
		IncludeInactive: c.Query("includeInactive") == "true",
		SearchTerm:      c.Query("search"),
		UpcomingOnly:    c.Query("upcoming") == "true",
	}

	bookings, err := deps.Bookings.List(opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"programari": bookings, "count": len(bookings)})
}

func listUserBookings(c *gin.Context) {
	opts := services.ListOptions{
		UserUID:         c.Param("uid"),
		IncludeInactive: c.Query("includeInactive") == "true",
	}

	bookings, err := deps.Bookings.List(opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"programari": bookings, "count": len(bookings)})
}

func getBooking(c *gin.Context) {
	booking, err := deps.Bookings.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func createBooking(c *gin.Context) {
	var input services.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "message": err.Error()})
		return
	}

	booking, err := deps.Bookings.Create(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// checkConflicts is the dry-run probe the booking form uses while the user is
// still picking an interval.
func checkConflicts(c *gin.Context) {
	var input struct {
		Machine   models.Machine `json:"machine"`
		Date      interface{}    `json:"date"`
		StartTime string         `json:"start_time"`
		EndTime   string         `json:"end_time"`
		ExcludeID string         `json:"exclude_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "message": err.Error()})
		return
	}
	if !input.Machine.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "message": "unknown machine identifier"})
		return
	}

	result, err := deps.Bookings.FindConflicts(input.Date, input.StartTime, input.EndTime,
		input.Machine, input.ExcludeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func updateBooking(c *gin.Context) {
	var input services.UpdateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "message": err.Error()})
		return
	}

	booking, err := deps.Bookings.Update(c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func deleteBooking(c *gin.Context) {
	if err := deps.Bookings.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Programare ștearsă"})
}

func deleteBookingWithReason(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "message": err.Error()})
		return
	}

	notification, err := deps.Bookings.DeleteWithReason(c.Param("id"), input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Programare ștearsă", "notification": notification})
}

func cancelBooking(c *gin.Context) {
	var input struct {
		Reason      string `json:"reason"`
		CancelledBy string `json:"cancelled_by"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "message": err.Error()})
		return
	}

	booking, err := deps.Bookings.CancelWithReason(c.Param("id"), input.Reason, input.CancelledBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
