package services

import (
	"testing"

	"laundry-booking-server/models"
)

func TestOverlappingBookings(t *testing.T) {
	active := []models.Booking{
		{ID: "hit-inside", Date: "01/06/2024", StartTime: "10:30", EndTime: "11:00"},
		{ID: "hit-straddle", Date: "01/06/2024", StartTime: "09:30", EndTime: "10:30"},
		{ID: "before", Date: "01/06/2024", StartTime: "08:00", EndTime: "10:00"},
		{ID: "after", Date: "01/06/2024", StartTime: "12:00", EndTime: "12:30"},
		{ID: "other-day", Date: "02/06/2024", StartTime: "10:30", EndTime: "11:00"},
		{ID: "bad-times", Date: "01/06/2024", StartTime: "", EndTime: ""},
	}

	// window 10:00-12:00
	hit := overlappingBookings(active, "01/06/2024", 600, 720)

	ids := map[string]bool{}
	for _, booking := range hit {
		ids[booking.ID] = true
	}

	if len(hit) != 2 || !ids["hit-inside"] || !ids["hit-straddle"] {
		t.Errorf("overlappingBookings = %v, want hit-inside and hit-straddle", ids)
	}
}

func TestOverlappingBookingsEmptyWindow(t *testing.T) {
	active := []models.Booking{
		{ID: "b1", Date: "01/06/2024", StartTime: "10:00", EndTime: "11:00"},
	}
	if hit := overlappingBookings(active, "03/06/2024", 600, 720); len(hit) != 0 {
		t.Errorf("expected no overlaps on a free day, got %d", len(hit))
	}
}
