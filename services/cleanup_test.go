package services

import (
	"testing"

	"laundry-booking-server/models"
	"laundry-booking-server/timeutil"
)

func TestSelectPurgeable(t *testing.T) {
	now, _ := timeutil.At("10/06/2024", "12:00")
	// retention of 7 days keeps everything from 03/06 onward
	cutoff := timeutil.EndOfDay(now.AddDate(0, 0, -7))

	bookings := []models.Booking{
		{ID: "nine-days-old", Date: "01/06/2024"},
		{ID: "eight-days-old", Date: "02/06/2024"},
		{ID: "on-the-edge", Date: "03/06/2024"},
		{ID: "two-days-old", Date: "08/06/2024"},
		{ID: "today", Date: "10/06/2024"},
		{ID: "unparseable", Date: "cine știe"},
	}

	purgeable := selectPurgeable(bookings, cutoff)

	ids := map[string]bool{}
	for _, booking := range purgeable {
		ids[booking.ID] = true
	}

	if len(purgeable) != 2 || !ids["nine-days-old"] || !ids["eight-days-old"] {
		t.Errorf("selectPurgeable = %v, want nine-days-old and eight-days-old", ids)
	}
	if ids["on-the-edge"] {
		t.Error("a booking exactly at the retention boundary must be kept")
	}
	if ids["unparseable"] {
		t.Error("bookings with unparseable dates must never be purged")
	}
}

func TestNotificationMatchesBooking(t *testing.T) {
	booking := models.Booking{
		ID:        "booking-1",
		Date:      "01/06/2024",
		StartTime: "10:00",
		EndTime:   "10:30",
		User:      models.UserSnapshot{UID: "user-1"},
	}

	tests := []struct {
		name         string
		notification models.Notification
		want         bool
	}{
		{
			"direct booking id reference",
			models.Notification{BookingID: "booking-1", UserID: "someone-else"},
			true,
		},
		{
			"owner plus date plus interval",
			models.Notification{UserID: "user-1", Date: "01/06/2024", StartTime: "10:00", EndTime: "10:30"},
			true,
		},
		{
			"owner plus date in another shape",
			models.Notification{UserID: "user-1", Date: "2024-06-01", StartTime: "10:00", EndTime: "10:30"},
			true,
		},
		{
			"different owner",
			models.Notification{UserID: "user-2", Date: "01/06/2024", StartTime: "10:00", EndTime: "10:30"},
			false,
		},
		{
			"different interval",
			models.Notification{UserID: "user-1", Date: "01/06/2024", StartTime: "11:00", EndTime: "11:30"},
			false,
		},
		{
			"different day",
			models.Notification{UserID: "user-1", Date: "02/06/2024", StartTime: "10:00", EndTime: "10:30"},
			false,
		},
		{
			"missing interval",
			models.Notification{UserID: "user-1", Date: "01/06/2024"},
			false,
		},
		{
			"no linkage at all",
			models.Notification{},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := notificationMatchesBooking(&tt.notification, &booking); got != tt.want {
				t.Errorf("notificationMatchesBooking = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChunkStrings(t *testing.T) {
	tests := []struct {
		name       string
		count      int
		size       int
		wantChunks int
	}{
		{"empty", 0, 450, 0},
		{"under one batch", 10, 450, 1},
		{"exact batch", 450, 450, 1},
		{"one over", 451, 450, 2},
		{"several batches", 1000, 450, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]string, tt.count)
			chunks := chunkStrings(items, tt.size)
			if len(chunks) != tt.wantChunks {
				t.Fatalf("got %d chunks, want %d", len(chunks), tt.wantChunks)
			}
			total := 0
			for _, chunk := range chunks {
				if len(chunk) > tt.size {
					t.Errorf("chunk of %d exceeds batch size %d", len(chunk), tt.size)
				}
				total += len(chunk)
			}
			if total != tt.count {
				t.Errorf("chunks cover %d items, want %d", total, tt.count)
			}
		})
	}
}
