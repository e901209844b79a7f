package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"laundry-booking-server/timeutil"
)

// getTempReservations is the REST mirror of the socket snapshot, used by
// clients before their socket is up.
func getTempReservations(c *gin.Context) {
	reservations := deps.Hub.TempReservations()
	c.JSON(http.StatusOK, gin.H{"reservations": reservations, "count": len(reservations)})
}

// runCleanup triggers the retention purge outside its weekly schedule.
func runCleanup(c *gin.Context) {
	result, err := deps.Cleanup.PurgeOldBookings(timeutil.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
