package services

import (
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"laundry-booking-server/metrics"
	"laundry-booking-server/models"
	"laundry-booking-server/timeutil"
)

const autoCancelReasonUser = "Anulat de utilizator"

// BookingService orchestrates the reservation lifecycle: creation, update,
// cancellation, deletion and listing, with the conflict resolver run before
// any state change that affects timing.
type BookingService struct {
	db          *gorm.DB
	mailer      Mailer
	broadcaster Broadcaster
	metrics     *metrics.Metrics
}

func NewBookingService(db *gorm.DB, mailer Mailer, broadcaster Broadcaster, m *metrics.Metrics) *BookingService {
	return &BookingService{
		db:          db,
		mailer:      mailer,
		broadcaster: broadcaster,
		metrics:     m,
	}
}

// CreateBookingInput is a candidate booking. Date and StartsAt accept every
// shape the normalizer understands (strings, epoch ms, timestamp pairs).
type CreateBookingInput struct {
	Machine         models.Machine      `json:"machine"`
	Date            interface{}         `json:"date"`
	StartTime       string              `json:"start_time"`
	EndTime         string              `json:"end_time"`
	DurationMinutes int                 `json:"duration_minutes"`
	StartsAt        interface{}         `json:"starts_at"`
	User            models.UserSnapshot `json:"user"`
}

// Create validates and persists a new booking. The conflict check and the
// insert run in one transaction serialized per machine by an advisory lock,
// so two concurrent requests for the same slot cannot both commit.
func (s *BookingService) Create(input CreateBookingInput) (*models.Booking, error) {
	if !input.Machine.IsValid() {
		return nil, &ValidationError{Field: "machine", Message: "unknown machine identifier"}
	}

	s.enrichSnapshot(&input.User)

	booking := models.Booking{
		Machine: input.Machine,
		User:    input.User,
		Active:  models.ActiveStatus{Status: true},
	}

	if input.Machine.IsDurationBased() {
		if input.DurationMinutes <= 0 {
			return nil, &ValidationError{Field: "duration_minutes", Message: "a positive duration is required"}
		}
		start, ok := s.resolveStartInstant(input)
		if !ok {
			return nil, &ValidationError{Field: "starts_at", Message: "unresolvable start instant"}
		}
		applyDurationTiming(&booking, start, input.DurationMinutes)
	} else {
		date := timeutil.FormatDate(input.Date)
		if date == "" {
			return nil, &ValidationError{Field: "date", Message: "unrecognized date value"}
		}
		duration, err := fixedSlotDuration(input.StartTime, input.EndTime)
		if err != nil {
			return nil, err
		}
		booking.Date = date
		booking.StartTime = input.StartTime
		booking.EndTime = input.EndTime
		booking.DurationMinutes = duration
	}

	var flipped []models.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result, expired, err := s.findConflictsTx(tx, booking.Date, booking.StartTime, booking.EndTime, booking.Machine, "")
		if err != nil {
			return err
		}
		flipped = expired
		if result.HasConflict {
			return &ConflictError{
				Conflicts:            result.Conflicts,
				MaintenanceConflicts: result.MaintenanceConflicts,
			}
		}
		if err := tx.Create(&booking).Error; err != nil {
			return &PersistenceError{Op: "create booking", Err: err}
		}
		return nil
	})

	s.announceExpired(flipped)

	if err != nil {
		var conflictErr *ConflictError
		if errors.As(err, &conflictErr) && s.metrics != nil {
			s.metrics.ConflictsRejected.Inc()
		}
		return nil, err
	}

	log.Printf("✅ Booking %s created: %s on %s %s-%s for %s",
		booking.ID, booking.Machine, booking.Date, booking.StartTime, booking.EndTime, booking.User.FullName)
	if s.metrics != nil {
		s.metrics.BookingsCreated.Inc()
	}

	s.sendEmail("confirmation", func() error {
		return s.mailer.SendConfirmation(s.emailFor(&booking, ""))
	})

	s.broadcaster.BookingCreated(&booking)
	return &booking, nil
}

// UpdateBookingInput carries a partial booking update. Nil fields are left
// untouched; set fields are merged with the stored record before the
// conflict re-check.
type UpdateBookingInput struct {
	Machine         *models.Machine `json:"machine"`
	Date            interface{}     `json:"date"`
	StartTime       *string         `json:"start_time"`
	EndTime         *string         `json:"end_time"`
	DurationMinutes *int            `json:"duration_minutes"`
}

func (u *UpdateBookingInput) touchesTiming() bool {
	return u.Machine != nil || u.Date != nil || u.StartTime != nil || u.EndTime != nil || u.DurationMinutes != nil
}

// Update merges the changed fields into the stored booking. Timing changes
// re-run the conflict resolver excluding the booking's own id; on conflict
// nothing is written.
func (s *BookingService) Update(id string, input UpdateBookingInput) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "booking", ID: id}
		}
		return nil, &PersistenceError{Op: "load booking", Err: err}
	}

	if !input.touchesTiming() {
		return &booking, nil
	}

	merged, err := mergeTiming(&booking, &input)
	if err != nil {
		return nil, err
	}

	var flipped []models.Booking
	err = s.db.Transaction(func(tx *gorm.DB) error {
		result, expired, err := s.findConflictsTx(tx, merged.Date, merged.StartTime, merged.EndTime, merged.Machine, booking.ID)
		if err != nil {
			return err
		}
		flipped = expired
		if result.HasConflict {
			return &ConflictError{
				Conflicts:            result.Conflicts,
				MaintenanceConflicts: result.MaintenanceConflicts,
			}
		}

		updates := map[string]interface{}{
			"machine":          merged.Machine,
			"date":             merged.Date,
			"start_time":       merged.StartTime,
			"end_time":         merged.EndTime,
			"duration_minutes": merged.DurationMinutes,
			"starts_at":        merged.StartsAt,
			"ends_at":          merged.EndsAt,
		}
		if err := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).Updates(updates).Error; err != nil {
			return &PersistenceError{Op: "update booking", Err: err}
		}
		return tx.First(&booking, "id = ?", booking.ID).Error
	})

	s.announceExpired(flipped)

	if err != nil {
		var conflictErr *ConflictError
		if errors.As(err, &conflictErr) && s.metrics != nil {
			s.metrics.ConflictsRejected.Inc()
		}
		return nil, err
	}

	log.Printf("✏️ Booking %s updated: %s on %s %s-%s", booking.ID, booking.Machine, booking.Date, booking.StartTime, booking.EndTime)
	s.broadcaster.BookingUpdated(&booking)
	return &booking, nil
}

// Delete removes a booking outright (self-service path). The owner gets a
// best-effort cancellation email but no persisted Notification record: they
// initiated the removal themselves.
func (s *BookingService) Delete(id string) error {
	var booking models.Booking
	if err := s.db.First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "booking", ID: id}
		}
		return &PersistenceError{Op: "load booking", Err: err}
	}

	if err := s.db.Delete(&models.Booking{}, "id = ?", id).Error; err != nil {
		return &PersistenceError{Op: "delete booking", Err: err}
	}

	log.Printf("🗑️ Booking %s deleted by its owner", id)

	s.sendEmail("cancellation", func() error {
		return s.mailer.SendCancellation(s.emailFor(&booking, autoCancelReasonUser))
	})

	s.broadcaster.BookingDeleted(id)
	return nil
}

// DeleteWithReason removes a booking on an administrator's behalf and writes
// a persisted Notification documenting the forced removal.
func (s *BookingService) DeleteWithReason(id string, reason string) (*models.Notification, error) {
	var booking models.Booking
	if err := s.db.First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "booking", ID: id}
		}
		return nil, &PersistenceError{Op: "load booking", Err: err}
	}

	if reason == "" {
		reason = "Anulare administrativă"
	}

	notification := s.buildNotification(&booking, "booking_deleted", reason)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(notification).Error; err != nil {
			return &PersistenceError{Op: "create notification", Err: err}
		}
		if err := tx.Delete(&models.Booking{}, "id = ?", id).Error; err != nil {
			return &PersistenceError{Op: "delete booking", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🗑️ Booking %s deleted by admin (%s)", id, reason)

	s.sendEmail("deletion", func() error {
		return s.mailer.SendDeletion(s.emailFor(&booking, reason))
	})

	s.broadcaster.BookingDeleted(id)
	s.broadcaster.NotificationCreated(notification)
	return notification, nil
}

// CancelWithReason flips the booking inactive instead of removing it,
// preserving the audit trail. This is the preferred admin path, and the one
// the maintenance cascade uses.
func (s *BookingService) CancelWithReason(id string, reason string, cancelledBy string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "booking", ID: id}
		}
		return nil, &PersistenceError{Op: "load booking", Err: err}
	}
	if !booking.Active.Status {
		return nil, &ValidationError{Field: "id", Message: "booking is no longer active"}
	}
	if cancelledBy == "" {
		cancelledBy = "admin"
	}

	notification := s.buildNotification(&booking, "booking_cancelled", reason)
	cancelledAt := timeutil.Now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND active_status = ?", id, true).
			Updates(map[string]interface{}{
				"active_status":       false,
				"active_message":      reason,
				"active_cancelled_at": cancelledAt,
				"active_cancelled_by": cancelledBy,
			})
		if res.Error != nil {
			return &PersistenceError{Op: "cancel booking", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return &ValidationError{Field: "id", Message: "booking is no longer active"}
		}
		if err := tx.Create(notification).Error; err != nil {
			return &PersistenceError{Op: "create notification", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	booking.Active = models.ActiveStatus{
		Status:      false,
		Message:     reason,
		CancelledAt: &cancelledAt,
		CancelledBy: cancelledBy,
	}

	log.Printf("🚫 Booking %s cancelled by %s (%s)", id, cancelledBy, reason)

	s.sendEmail("cancellation", func() error {
		return s.mailer.SendCancellation(s.emailFor(&booking, reason))
	})

	s.broadcaster.NotificationCreated(notification)
	s.broadcaster.BookingUpdated(&booking)
	return &booking, nil
}

// Get returns a single booking by id.
func (s *BookingService) Get(id string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "booking", ID: id}
		}
		return nil, &PersistenceError{Op: "load booking", Err: err}
	}
	return &booking, nil
}

// ListOptions filter a booking listing. The default view is active bookings
// only, newest date first.
type ListOptions struct {
	UserUID         string
	Date            string
	IncludeInactive bool
	SearchTerm      string
	UpcomingOnly    bool
}

// List returns bookings matching the options. Elapsed duration-based
// bookings are reconciled to expired (with their broadcasts emitted) before
// the listing is built, so every caller observes the reconciled state.
func (s *BookingService) List(opts ListOptions) ([]models.Booking, error) {
	if _, err := s.ReconcileExpired(timeutil.Now()); err != nil {
		return nil, err
	}

	query := s.db.Model(&models.Booking{})
	if opts.UserUID != "" {
		query = query.Where("user_uid = ?", opts.UserUID)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, &PersistenceError{Op: "list bookings", Err: err}
	}

	for i := range bookings {
		s.enrichSnapshot(&bookings[i].User)
	}

	filtered := filterBookings(bookings, opts, timeutil.Now())
	sortBookingsNewestFirst(filtered)
	return filtered, nil
}

// filterBookings applies the listing rules. Currently-active duration-based
// bookings are always included regardless of the date filter: they represent
// "busy right now" state.
func filterBookings(bookings []models.Booking, opts ListOptions, now time.Time) []models.Booking {
	targetDate := ""
	if opts.Date != "" {
		targetDate = timeutil.FormatDate(opts.Date)
	}
	today := timeutil.StartOfDay(now)

	filtered := make([]models.Booking, 0, len(bookings))
	for _, booking := range bookings {
		if !opts.IncludeInactive && !booking.Active.Status {
			continue
		}
		if targetDate != "" && timeutil.FormatDate(booking.Date) != targetDate {
			if !(booking.Machine.IsDurationBased() && booking.Active.Status) {
				continue
			}
		}
		if opts.UpcomingOnly {
			day, ok := timeutil.Normalize(booking.Date)
			if !ok || day.Before(today) {
				continue
			}
		}
		if opts.SearchTerm != "" &&
			!strings.Contains(strings.ToLower(booking.User.FullName), strings.ToLower(opts.SearchTerm)) {
			continue
		}
		filtered = append(filtered, booking)
	}
	return filtered
}

func sortBookingsNewestFirst(bookings []models.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		di, iOK := timeutil.Normalize(bookings[i].Date)
		dj, jOK := timeutil.Normalize(bookings[j].Date)
		if iOK != jOK {
			return iOK
		}
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return bookings[i].StartTime > bookings[j].StartTime
	})
}

// resolveStartInstant finds the start instant of a duration-based booking:
// an explicit starts_at value wins, otherwise date+start_time.
func (s *BookingService) resolveStartInstant(input CreateBookingInput) (time.Time, bool) {
	if input.StartsAt != nil {
		if start, ok := timeutil.Normalize(input.StartsAt); ok {
			return start, true
		}
	}
	if input.Date != nil && input.StartTime != "" {
		if start, ok := timeutil.At(timeutil.FormatDate(input.Date), input.StartTime); ok {
			return start, true
		}
	}
	return time.Time{}, false
}

// applyDurationTiming derives every timing field of a duration-based booking
// from its start instant, keeping starts_at/ends_at consistent with
// date+start_time/end_time.
func applyDurationTiming(booking *models.Booking, start time.Time, durationMinutes int) {
	start = start.In(timeutil.Location())
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	startsAt := start.UnixMilli()
	endsAt := end.UnixMilli()

	booking.Date = start.Format(timeutil.DateLayout)
	booking.StartTime = start.Format("15:04")
	booking.EndTime = end.Format("15:04")
	booking.DurationMinutes = durationMinutes
	booking.StartsAt = &startsAt
	booking.EndsAt = &endsAt
}

// fixedSlotDuration derives the duration of a fixed-slot booking from its
// interval.
func fixedSlotDuration(startTime, endTime string) (int, error) {
	startMin, ok := timeutil.MinutesOfDay(startTime)
	if !ok {
		return 0, &ValidationError{Field: "start_time", Message: "expected HH:mm"}
	}
	endMin, ok := timeutil.MinutesOfDay(endTime)
	if !ok {
		return 0, &ValidationError{Field: "end_time", Message: "expected HH:mm"}
	}
	if endMin <= startMin {
		return 0, &ValidationError{Field: "end_time", Message: "interval must end after it starts"}
	}
	return endMin - startMin, nil
}

// mergeTiming combines an update with the stored booking and re-derives the
// dependent fields.
func mergeTiming(booking *models.Booking, input *UpdateBookingInput) (*models.Booking, error) {
	merged := *booking
	if input.Machine != nil {
		if !input.Machine.IsValid() {
			return nil, &ValidationError{Field: "machine", Message: "unknown machine identifier"}
		}
		merged.Machine = *input.Machine
	}
	if input.Date != nil {
		date := timeutil.FormatDate(input.Date)
		if date == "" {
			return nil, &ValidationError{Field: "date", Message: "unrecognized date value"}
		}
		merged.Date = date
	}
	if input.StartTime != nil {
		merged.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		merged.EndTime = *input.EndTime
	}

	if merged.Machine.IsDurationBased() {
		duration := merged.DurationMinutes
		if input.DurationMinutes != nil {
			duration = *input.DurationMinutes
		}
		if duration <= 0 {
			return nil, &ValidationError{Field: "duration_minutes", Message: "a positive duration is required"}
		}
		start, ok := timeutil.At(merged.Date, merged.StartTime)
		if !ok {
			return nil, &ValidationError{Field: "start_time", Message: "unresolvable start instant"}
		}
		applyDurationTiming(&merged, start, duration)
	} else {
		duration, err := fixedSlotDuration(merged.StartTime, merged.EndTime)
		if err != nil {
			return nil, err
		}
		merged.DurationMinutes = duration
		merged.StartsAt = nil
		merged.EndsAt = nil
	}
	return &merged, nil
}

// enrichSnapshot re-syncs missing contact fields from the user profile.
// Best-effort: lookup failures only warn.
func (s *BookingService) enrichSnapshot(snapshot *models.UserSnapshot) {
	if snapshot.UID == "" || (snapshot.Phone != "" && snapshot.Email != "") {
		return
	}
	var user models.User
	if err := s.db.First(&user, "uid = ?", snapshot.UID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("⚠️ Unable to enrich booking user %s: %v", snapshot.UID, err)
		}
		return
	}
	if snapshot.Phone == "" {
		snapshot.Phone = user.Phone
	}
	if snapshot.Email == "" {
		snapshot.Email = user.PreferredEmail()
	}
	if snapshot.FullName == "" {
		snapshot.FullName = user.FullName
	}
	if snapshot.Room == "" {
		snapshot.Room = user.Room
	}
}

// emailFor builds the outbound email payload, preferring the freshest
// address from the user profile over the booking snapshot.
func (s *BookingService) emailFor(booking *models.Booking, reason string) BookingEmail {
	to := booking.User.Email
	if booking.User.UID != "" {
		var user models.User
		if err := s.db.First(&user, "uid = ?", booking.User.UID).Error; err == nil {
			if preferred := user.PreferredEmail(); preferred != "" {
				to = preferred
			}
		}
	}
	return BookingEmail{
		To:        to,
		FullName:  booking.User.FullName,
		Room:      booking.User.Room,
		Machine:   string(booking.Machine),
		Date:      booking.Date,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		Duration:  booking.DurationMinutes,
		Reason:    reason,
	}
}

// buildNotification snapshots a booking into a persisted Notification.
func (s *BookingService) buildNotification(booking *models.Booking, kind string, reason string) *models.Notification {
	snapshot := booking.User
	s.enrichSnapshot(&snapshot)
	message := "Programarea ta pentru " + string(booking.Machine) + " din data " + booking.Date +
		" (" + booking.StartTime + " - " + booking.EndTime + ") a fost anulată. Motiv: " + reason
	return &models.Notification{
		UserID:    booking.User.UID,
		Type:      kind,
		Message:   message,
		Date:      booking.Date,
		Machine:   booking.Machine,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		Duration:  booking.DurationMinutes,
		Reason:    reason,
		BookingID: booking.ID,
		User:      snapshot,
	}
}

// sendEmail runs a best-effort send: failures are logged and counted, never
// surfaced to the caller.
func (s *BookingService) sendEmail(kind string, send func() error) {
	if s.mailer == nil {
		return
	}
	if err := send(); err != nil {
		log.Printf("⚠️ Error sending %s email: %v", kind, err)
		if s.metrics != nil {
			s.metrics.EmailFailures.WithLabelValues(kind).Inc()
		}
	}
}

// lockClause is the row lock taken on a machine's active bookings during the
// conflict check. Serialization of concurrent writers is the advisory lock's
// job; the row lock pins the evaluated rows for the update paths.
var lockClause = clause.Locking{Strength: "UPDATE"}
