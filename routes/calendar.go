package routes

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"laundry-booking-server/timeutil"
)

const icsTimeLayout = "20060102T150405Z"

// generateICS renders a booking as an .ics calendar event so the confirmation
// email can link an "add to calendar" attachment.
func generateICS(c *gin.Context) {
	machine := c.Query("machine")
	date := c.Query("date")
	startTime := c.Query("startTime")
	room := c.Query("room")
	fullName := c.Query("fullName")

	durationMinutes, err := strconv.Atoi(c.Query("duration"))
	if err != nil || durationMinutes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": "duration must be a positive number of minutes",
		})
		return
	}

	day := timeutil.FormatDate(date)
	if day == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": "unrecognized date value",
		})
		return
	}
	startLocal, ok := timeutil.At(day, startTime)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": "startTime expected as HH:mm",
		})
		return
	}
	endLocal := startLocal.Add(time.Duration(durationMinutes) * time.Minute)

	icsContent := fmt.Sprintf(`BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Spălătorie Cămin//EN
BEGIN:VEVENT
UID:%d@spalatorie-camin.ro
DTSTAMP:%s
DTSTART:%s
DTEND:%s
SUMMARY:Rezervare %s
DESCRIPTION:Rezervare %s pentru %s (Camera %s) - Durata: %d minute
LOCATION:Spălătorie Cămin
END:VEVENT
END:VCALENDAR`,
		time.Now().UnixMilli(),
		time.Now().UTC().Format(icsTimeLayout),
		startLocal.UTC().Format(icsTimeLayout),
		endLocal.UTC().Format(icsTimeLayout),
		machine,
		machine, fullName, room, durationMinutes,
	)

	filename := fmt.Sprintf("rezervare-%s-%s.ics", machine, startLocal.Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/calendar", []byte(icsContent))
}
