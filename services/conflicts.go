package services

import (
	"hash/fnv"
	"log"
	"time"

	"gorm.io/gorm"

	"laundry-booking-server/models"
	"laundry-booking-server/timeutil"
)

const expiredAutoMessage = "Programare expirată automat"

// Overlaps reports whether two half-open clock intervals on the same day
// intersect. All four values are minutes since midnight. Bookings never cross
// midnight, so no wraparound handling.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// ConflictResult is the verdict for a candidate interval.
type ConflictResult struct {
	HasConflict          bool                  `json:"has_conflict"`
	Conflicts            []ConflictDetail      `json:"conflicts"`
	MaintenanceConflicts []MaintenanceConflict `json:"maintenance_conflicts"`
}

// evaluateConflicts applies the overlap detector to a candidate interval
// against already-loaded bookings and maintenance windows. Pure so the
// invariant is testable without a store.
func evaluateConflicts(bookings []models.Booking, windows []models.MaintenanceInterval,
	targetDate string, startMin, endMin int, excludeID string) ConflictResult {

	result := ConflictResult{}

	for _, booking := range bookings {
		if excludeID != "" && booking.ID == excludeID {
			continue
		}
		// stored dates are canonical, but older records may carry other shapes
		if timeutil.FormatDate(booking.Date) != targetDate {
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
			result.Conflicts = append(result.Conflicts, ConflictDetail{
				BookingID: booking.ID,
				User:      booking.User.FullName,
				Room:      booking.User.Room,
				StartTime: booking.StartTime,
				EndTime:   booking.EndTime,
			})
		}
	}

	for _, window := range windows {
		if timeutil.FormatDate(window.Date) != targetDate {
			continue
		}
		wStart, ok := timeutil.MinutesOfDay(window.StartTime)
		if !ok {
			continue
		}
		wEnd, ok := timeutil.MinutesOfDay(window.EndTime)
		if !ok {
			continue
		}
		if Overlaps(startMin, endMin, wStart, wEnd) {
			result.MaintenanceConflicts = append(result.MaintenanceConflicts, MaintenanceConflict{
				MaintenanceID: window.ID,
				StartTime:     window.StartTime,
				EndTime:       window.EndTime,
			})
		}
	}

	result.HasConflict = len(result.Conflicts) > 0 || len(result.MaintenanceConflicts) > 0
	return result
}

// FindConflicts returns the conflict verdict for a candidate booking.
// Elapsed duration-based bookings are reconciled to expired before they are
// evaluated, so they never count as conflicts. excludeID removes the booking
// being updated from consideration.
func (s *BookingService) FindConflicts(date interface{}, startTime, endTime string,
	machine models.Machine, excludeID string) (ConflictResult, error) {

	var result ConflictResult
	var flipped []models.Booking

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		result, flipped, err = s.findConflictsTx(tx, date, startTime, endTime, machine, excludeID)
		return err
	})
	if err != nil {
		return ConflictResult{}, err
	}

	s.announceExpired(flipped)
	return result, nil
}

// findConflictsTx runs the conflict check inside an existing transaction.
// Returned flipped bookings must be announced by the caller after commit.
func (s *BookingService) findConflictsTx(tx *gorm.DB, date interface{}, startTime, endTime string,
	machine models.Machine, excludeID string) (ConflictResult, []models.Booking, error) {

	targetDate := timeutil.FormatDate(date)
	if targetDate == "" {
		return ConflictResult{}, nil, &ValidationError{Field: "date", Message: "unrecognized date value"}
	}
	startMin, ok := timeutil.MinutesOfDay(startTime)
	if !ok {
		return ConflictResult{}, nil, &ValidationError{Field: "start_time", Message: "expected HH:mm"}
	}
	endMin, ok := timeutil.MinutesOfDay(endTime)
	if !ok {
		return ConflictResult{}, nil, &ValidationError{Field: "end_time", Message: "expected HH:mm"}
	}

	// Per-machine advisory lock, held until the transaction ends. Row locks
	// alone cannot order two inserts into a free slot: with zero matching
	// rows neither transaction blocks the other, and both would commit
	// overlapping bookings.
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", machineLockKey(machine)).Error; err != nil {
		return ConflictResult{}, nil, &PersistenceError{Op: "acquire machine lock", Err: err}
	}

	flipped, err := reconcileExpiredTx(tx, machine, timeutil.Now())
	if err != nil {
		return ConflictResult{}, nil, err
	}

	var bookings []models.Booking
	if err := tx.Clauses(lockClause).
		Where("machine = ? AND active_status = ?", machine, true).
		Find(&bookings).Error; err != nil {
		return ConflictResult{}, nil, &PersistenceError{Op: "query active bookings", Err: err}
	}

	var windows []models.MaintenanceInterval
	if machine.IsDurationBased() {
		if err := tx.Where("machine = ? AND date = ?", machine, targetDate).
			Find(&windows).Error; err != nil {
			return ConflictResult{}, nil, &PersistenceError{Op: "query maintenance windows", Err: err}
		}
	}

	return evaluateConflicts(bookings, windows, targetDate, startMin, endMin, excludeID), flipped, nil
}

// machineLockKey derives the stable advisory lock key for a machine. Every
// conflict-checked write path for the same machine must hash to the same key.
func machineLockKey(machine models.Machine) int64 {
	h := fnv.New64a()
	h.Write([]byte("bookings/"))
	h.Write([]byte(machine))
	return int64(h.Sum64())
}

// selectExpirable picks the bookings due to expire: still active, carrying an
// end instant, and that instant at or before asOf. An already-expired booking
// is never selected, which keeps reconciliation idempotent. Pure so the
// selection is testable without a store.
func selectExpirable(bookings []models.Booking, asOf time.Time) []models.Booking {
	cutoff := asOf.UnixMilli()
	var due []models.Booking
	for _, booking := range bookings {
		if !booking.Active.Status || booking.EndsAt == nil {
			continue
		}
		if *booking.EndsAt > cutoff {
			continue
		}
		due = append(due, booking)
	}
	return due
}

// markExpired applies the expiry transition to an in-memory booking.
func markExpired(booking *models.Booking, at time.Time) {
	booking.Active.Status = false
	booking.Active.Message = expiredAutoMessage
	booking.Active.ExpiredAt = &at
}

// reconcileExpiredTx flips active duration-based bookings whose end instant
// has elapsed. The guarded update keeps the flip idempotent: a booking
// already expired is untouched, so no duplicate broadcast is possible.
func reconcileExpiredTx(tx *gorm.DB, machine models.Machine, asOf time.Time) ([]models.Booking, error) {
	query := tx.Where("active_status = ? AND ends_at IS NOT NULL AND ends_at <= ?", true, asOf.UnixMilli())
	if machine != "" {
		query = query.Where("machine = ?", machine)
	}

	var candidates []models.Booking
	if err := query.Find(&candidates).Error; err != nil {
		return nil, &PersistenceError{Op: "query elapsed bookings", Err: err}
	}

	due := selectExpirable(candidates, asOf)
	if len(due) == 0 {
		return nil, nil
	}

	var flipped []models.Booking
	for i := range due {
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND active_status = ?", due[i].ID, true).
			Updates(map[string]interface{}{
				"active_status":     false,
				"active_message":    expiredAutoMessage,
				"active_expired_at": asOf,
			})
		if res.Error != nil {
			return nil, &PersistenceError{Op: "expire booking " + due[i].ID, Err: res.Error}
		}
		if res.RowsAffected == 0 {
			continue // lost the race, someone else expired it
		}
		markExpired(&due[i], asOf)
		flipped = append(flipped, due[i])
	}
	return flipped, nil
}

// ReconcileExpired flips every elapsed duration-based booking to expired and
// broadcasts each transition. Invoked by the read path and the periodic
// sweep; safe to run concurrently.
func (s *BookingService) ReconcileExpired(asOf time.Time) ([]models.Booking, error) {
	var flipped []models.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		flipped, err = reconcileExpiredTx(tx, "", asOf)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.announceExpired(flipped)
	return flipped, nil
}

// announceExpired emits one update broadcast per flipped booking, after the
// owning transaction has committed.
func (s *BookingService) announceExpired(flipped []models.Booking) {
	for i := range flipped {
		log.Printf("⏰ Booking %s on %s expired automatically", flipped[i].ID, flipped[i].Machine)
		s.broadcaster.BookingUpdated(&flipped[i])
		if s.metrics != nil {
			s.metrics.BookingsExpired.Inc()
		}
	}
}
