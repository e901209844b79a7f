package services

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"laundry-booking-server/models"
	"laundry-booking-server/timeutil"
)

const maintenanceCancelReason = "Mentenanță programată"

// MaintenanceService registers blackout windows and cascades cancellation to
// bookings they pre-empt.
type MaintenanceService struct {
	db          *gorm.DB
	bookings    *BookingService
	broadcaster Broadcaster
}

func NewMaintenanceService(db *gorm.DB, bookings *BookingService, broadcaster Broadcaster) *MaintenanceService {
	return &MaintenanceService{
		db:          db,
		bookings:    bookings,
		broadcaster: broadcaster,
	}
}

type ScheduleMaintenanceInput struct {
	Machine   models.Machine `json:"machine"`
	Date      interface{}    `json:"date"`
	StartTime string         `json:"start_time"`
	EndTime   string         `json:"end_time"`
	Slots     string         `json:"slots"`
}

// Schedule persists the maintenance window unconditionally, then cancels
// every overlapping active booking on the same machine and day through the
// lifecycle cancel path. Each cancellation is independently fault-tolerant:
// one failure never blocks the next booking's cancellation.
func (s *MaintenanceService) Schedule(input ScheduleMaintenanceInput) (*models.MaintenanceInterval, []models.Booking, error) {
	if !input.Machine.IsValid() {
		return nil, nil, &ValidationError{Field: "machine", Message: "unknown machine identifier"}
	}
	date := timeutil.FormatDate(input.Date)
	if date == "" {
		return nil, nil, &ValidationError{Field: "date", Message: "unrecognized date value"}
	}
	startMin, ok := timeutil.MinutesOfDay(input.StartTime)
	if !ok {
		return nil, nil, &ValidationError{Field: "start_time", Message: "expected HH:mm"}
	}
	endMin, ok := timeutil.MinutesOfDay(input.EndTime)
	if !ok {
		return nil, nil, &ValidationError{Field: "end_time", Message: "expected HH:mm"}
	}
	if endMin <= startMin {
		return nil, nil, &ValidationError{Field: "end_time", Message: "interval must end after it starts"}
	}

	interval := models.MaintenanceInterval{
		Machine:   input.Machine,
		Date:      date,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Slots:     input.Slots,
	}
	if err := s.db.Create(&interval).Error; err != nil {
		return nil, nil, &PersistenceError{Op: "create maintenance interval", Err: err}
	}

	log.Printf("🔧 Maintenance window %s registered: %s on %s %s-%s",
		interval.ID, interval.Machine, interval.Date, interval.StartTime, interval.EndTime)
	s.broadcaster.MaintenanceCreated(&interval)

	var active []models.Booking
	if err := s.db.Where("machine = ? AND active_status = ?", input.Machine, true).
		Find(&active).Error; err != nil {
		return &interval, nil, &PersistenceError{Op: "query active bookings", Err: err}
	}

	var cancelled []models.Booking
	for _, booking := range overlappingBookings(active, date, startMin, endMin) {
		updated, err := s.bookings.CancelWithReason(booking.ID, maintenanceCancelReason, "maintenance")
		if err != nil {
			log.Printf("⚠️ Unable to cancel booking %s for maintenance: %v", booking.ID, err)
			continue
		}
		cancelled = append(cancelled, *updated)
	}

	if len(cancelled) > 0 {
		log.Printf("🔧 Maintenance window %s cancelled %d overlapping booking(s)", interval.ID, len(cancelled))
	}
	return &interval, cancelled, nil
}

// overlappingBookings selects the bookings a maintenance window pre-empts.
// Pure so the cascade selection is testable without a store.
func overlappingBookings(bookings []models.Booking, date string, startMin, endMin int) []models.Booking {
	var hit []models.Booking
	for _, booking := range bookings {
		if timeutil.FormatDate(booking.Date) != date {
			continue
		}
		bStart, ok := timeutil.MinutesOfDay(booking.StartTime)
		if !ok {
			continue
		}
		bEnd, ok := timeutil.MinutesOfDay(booking.EndTime)
		if !ok {
			continue
		}
		if Overlaps(startMin, endMin, bStart, bEnd) {
			hit = append(hit, booking)
		}
	}
	return hit
}

// List returns every maintenance window, newest first.
func (s *MaintenanceService) List() ([]models.MaintenanceInterval, error) {
	var intervals []models.MaintenanceInterval
	if err := s.db.Order("created_at DESC").Find(&intervals).Error; err != nil {
		return nil, &PersistenceError{Op: "list maintenance intervals", Err: err}
	}
	return intervals, nil
}

// Delete removes a maintenance window. Unconditional: bookings it cancelled
// stay cancelled.
func (s *MaintenanceService) Delete(id string) error {
	var interval models.MaintenanceInterval
	if err := s.db.First(&interval, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "maintenance interval", ID: id}
		}
		return &PersistenceError{Op: "load maintenance interval", Err: err}
	}
	if err := s.db.Delete(&models.MaintenanceInterval{}, "id = ?", id).Error; err != nil {
		return &PersistenceError{Op: "delete maintenance interval", Err: err}
	}
	log.Printf("🔧 Maintenance window %s removed", id)
	s.broadcaster.MaintenanceDeleted(id)
	return nil
}
