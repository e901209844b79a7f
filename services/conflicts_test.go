package services

import (
	"testing"
	"time"

	"laundry-booking-server/models"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{"identical intervals", 600, 630, 600, 630, true},
		{"partial overlap", 600, 630, 615, 645, true},
		{"contained interval", 600, 660, 615, 630, true},
		{"back to back", 600, 630, 630, 660, false},
		{"back to back reversed", 630, 660, 600, 630, false},
		{"disjoint", 600, 630, 700, 730, false},
		{"one minute overlap", 600, 631, 630, 660, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("Overlaps(%d, %d, %d, %d) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
			// symmetry
			if got := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); got != tt.want {
				t.Errorf("Overlaps(%d, %d, %d, %d) = %v, want %v (symmetry)",
					tt.bStart, tt.bEnd, tt.aStart, tt.aEnd, got, tt.want)
			}
		})
	}
}

func TestOverlapsSelf(t *testing.T) {
	if !Overlaps(600, 630, 600, 630) {
		t.Error("an interval must overlap itself")
	}
}

func TestEvaluateConflicts(t *testing.T) {
	bookings := []models.Booking{
		{
			ID:        "existing-1",
			Machine:   models.MachineWasher1,
			Date:      "01/06/2024",
			StartTime: "10:00",
			EndTime:   "10:30",
			User:      models.UserSnapshot{FullName: "Ana Pop", Room: "214"},
		},
		{
			ID:        "existing-2",
			Machine:   models.MachineWasher1,
			Date:      "02/06/2024",
			StartTime: "10:00",
			EndTime:   "10:30",
		},
	}

	t.Run("overlapping candidate is rejected", func(t *testing.T) {
		result := evaluateConflicts(bookings, nil, "01/06/2024", 615, 645, "")
		if !result.HasConflict {
			t.Fatal("expected a conflict for 10:15-10:45 against 10:00-10:30")
		}
		if len(result.Conflicts) != 1 {
			t.Fatalf("got %d conflicts, want 1", len(result.Conflicts))
		}
		if result.Conflicts[0].BookingID != "existing-1" {
			t.Errorf("conflicting booking = %s, want existing-1", result.Conflicts[0].BookingID)
		}
		if result.Conflicts[0].User != "Ana Pop" || result.Conflicts[0].Room != "214" {
			t.Errorf("conflict detail missing owner info: %+v", result.Conflicts[0])
		}
	})

	t.Run("same clock interval on another day is free", func(t *testing.T) {
		result := evaluateConflicts(bookings, nil, "03/06/2024", 600, 630, "")
		if result.HasConflict {
			t.Errorf("unexpected conflict: %+v", result)
		}
	})

	t.Run("excluded booking does not conflict with itself", func(t *testing.T) {
		result := evaluateConflicts(bookings, nil, "01/06/2024", 600, 630, "existing-1")
		if result.HasConflict {
			t.Errorf("a booking must not conflict with itself on update: %+v", result)
		}
	})

	t.Run("back to back slot is free", func(t *testing.T) {
		result := evaluateConflicts(bookings, nil, "01/06/2024", 630, 660, "")
		if result.HasConflict {
			t.Errorf("10:30-11:00 must not conflict with 10:00-10:30: %+v", result)
		}
	})

	t.Run("maintenance window blocks the interval", func(t *testing.T) {
		windows := []models.MaintenanceInterval{
			{ID: "mw-1", Date: "01/06/2024", StartTime: "11:00", EndTime: "13:00"},
		}
		result := evaluateConflicts(nil, windows, "01/06/2024", 700, 760, "")
		if !result.HasConflict || len(result.MaintenanceConflicts) != 1 {
			t.Fatalf("expected one maintenance conflict, got %+v", result)
		}
		if result.MaintenanceConflicts[0].MaintenanceID != "mw-1" {
			t.Errorf("maintenance conflict id = %s, want mw-1", result.MaintenanceConflicts[0].MaintenanceID)
		}
	})
}

func TestMachineLockKey(t *testing.T) {
	machines := []models.Machine{models.MachineWasher1, models.MachineWasher2, models.MachineDryer}

	seen := map[int64]models.Machine{}
	for _, machine := range machines {
		key := machineLockKey(machine)
		if key != machineLockKey(machine) {
			t.Errorf("lock key for %s is not stable", machine)
		}
		if other, dup := seen[key]; dup {
			t.Errorf("machines %s and %s share lock key %d", machine, other, key)
		}
		seen[key] = machine
	}
}

func TestSelectExpirable(t *testing.T) {
	asOf := time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)
	elapsed := asOf.Add(-time.Minute).UnixMilli()
	atBoundary := asOf.UnixMilli()
	future := asOf.Add(time.Minute).UnixMilli()

	bookings := []models.Booking{
		{ID: "due", Machine: models.MachineDryer,
			Active: models.ActiveStatus{Status: true}, EndsAt: &elapsed},
		{ID: "due-at-boundary", Machine: models.MachineDryer,
			Active: models.ActiveStatus{Status: true}, EndsAt: &atBoundary},
		{ID: "still-running", Machine: models.MachineDryer,
			Active: models.ActiveStatus{Status: true}, EndsAt: &future},
		{ID: "already-expired", Machine: models.MachineDryer,
			Active: models.ActiveStatus{Status: false}, EndsAt: &elapsed},
		{ID: "fixed-slot", Machine: models.MachineWasher1,
			Active: models.ActiveStatus{Status: true}},
	}

	due := selectExpirable(bookings, asOf)

	ids := map[string]bool{}
	for _, booking := range due {
		ids[booking.ID] = true
	}
	if len(due) != 2 || !ids["due"] || !ids["due-at-boundary"] {
		t.Errorf("selectExpirable = %v, want due and due-at-boundary", ids)
	}
	if ids["already-expired"] {
		t.Error("an already-expired booking must never be selected again")
	}
	if ids["fixed-slot"] {
		t.Error("bookings without an end instant must never be selected")
	}
}

func TestExpiryIsIdempotent(t *testing.T) {
	asOf := time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)
	elapsed := asOf.Add(-time.Minute).UnixMilli()

	booking := models.Booking{
		ID:      "d1",
		Machine: models.MachineDryer,
		Active:  models.ActiveStatus{Status: true},
		EndsAt:  &elapsed,
	}

	first := selectExpirable([]models.Booking{booking}, asOf)
	if len(first) != 1 {
		t.Fatalf("elapsed booking not selected for expiry")
	}

	markExpired(&booking, asOf)
	if booking.Active.Status {
		t.Fatal("markExpired must flip the active flag")
	}
	if booking.Active.Message != expiredAutoMessage {
		t.Errorf("message = %q, want %q", booking.Active.Message, expiredAutoMessage)
	}
	if booking.Active.ExpiredAt == nil || !booking.Active.ExpiredAt.Equal(asOf) {
		t.Error("expiry instant not recorded")
	}

	// a second pass over the flipped booking selects nothing, so no
	// duplicate broadcast can ever be emitted
	second := selectExpirable([]models.Booking{booking}, asOf.Add(time.Hour))
	if len(second) != 0 {
		t.Errorf("expired booking re-selected on a second pass: %v", second)
	}
}
