package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"laundry-booking-server/metrics"
	"laundry-booking-server/models"
	"laundry-booking-server/timeutil"
)

// CleanupService purges bookings past the retention window together with
// their linked notifications, batching deletes to respect the store's
// maximum operations per transaction.
type CleanupService struct {
	db            *gorm.DB
	broadcaster   Broadcaster
	metrics       *metrics.Metrics
	retentionDays int
	batchSize     int
}

func NewCleanupService(db *gorm.DB, broadcaster Broadcaster, m *metrics.Metrics,
	retentionDays int, batchSize int) *CleanupService {
	if retentionDays <= 0 {
		retentionDays = 7
	}
	if batchSize <= 0 {
		batchSize = 450
	}
	return &CleanupService{
		db:            db,
		broadcaster:   broadcaster,
		metrics:       m,
		retentionDays: retentionDays,
		batchSize:     batchSize,
	}
}

// PurgeResult summarizes one purge run.
type PurgeResult struct {
	DeletedBookings      int `json:"deleted_bookings"`
	DeletedNotifications int `json:"deleted_notifications"`
}

// PurgeOldBookings deletes every booking dated past the retention window,
// broadcasting a delete per removed booking, then removes every notification
// linkable to a removed booking.
func (s *CleanupService) PurgeOldBookings(now time.Time) (PurgeResult, error) {
	if s.metrics != nil {
		s.metrics.CleanupRuns.Inc()
	}
	cutoff := timeutil.EndOfDay(now.In(timeutil.Location()).AddDate(0, 0, -s.retentionDays))

	var bookings []models.Booking
	if err := s.db.Find(&bookings).Error; err != nil {
		return PurgeResult{}, &PersistenceError{Op: "list bookings for purge", Err: err}
	}

	purgeable := selectPurgeable(bookings, cutoff)
	if len(purgeable) == 0 {
		return PurgeResult{}, nil
	}

	for _, chunk := range chunkBookings(purgeable, s.batchSize) {
		ids := make([]string, len(chunk))
		for i, booking := range chunk {
			ids[i] = booking.ID
		}
		err := s.db.Transaction(func(tx *gorm.DB) error {
			return tx.Delete(&models.Booking{}, "id IN ?", ids).Error
		})
		if err != nil {
			return PurgeResult{}, &PersistenceError{Op: "purge bookings batch", Err: err}
		}
	}

	for i := range purgeable {
		s.broadcaster.BookingDeleted(purgeable[i].ID)
	}
	if s.metrics != nil {
		s.metrics.BookingsPurged.Add(float64(len(purgeable)))
	}

	deletedNotifications, err := s.deleteLinkedNotifications(purgeable)
	if err != nil {
		return PurgeResult{DeletedBookings: len(purgeable)}, err
	}

	return PurgeResult{
		DeletedBookings:      len(purgeable),
		DeletedNotifications: deletedNotifications,
	}, nil
}

// selectPurgeable picks the bookings whose calendar day ended before the
// cutoff. Pure so retention behavior is testable without a store.
func selectPurgeable(bookings []models.Booking, cutoff time.Time) []models.Booking {
	var purgeable []models.Booking
	for _, booking := range bookings {
		day, ok := timeutil.Normalize(booking.Date)
		if !ok {
			continue
		}
		if timeutil.EndOfDay(day).Before(cutoff) {
			purgeable = append(purgeable, booking)
		}
	}
	return purgeable
}

// deleteLinkedNotifications removes notifications referencing the purged
// bookings: by direct booking id, or by user+date+interval when no direct
// reference exists.
func (s *CleanupService) deleteLinkedNotifications(purged []models.Booking) (int, error) {
	ids := make([]string, 0, len(purged))
	userIDs := make(map[string]bool)
	for _, booking := range purged {
		ids = append(ids, booking.ID)
		if booking.User.UID != "" {
			userIDs[booking.User.UID] = true
		}
	}

	toDelete := make(map[string]bool)

	for _, chunk := range chunkStrings(ids, s.batchSize) {
		var linked []models.Notification
		if err := s.db.Where("booking_id IN ?", chunk).Find(&linked).Error; err != nil {
			return 0, &PersistenceError{Op: "query notifications by booking id", Err: err}
		}
		for _, notification := range linked {
			toDelete[notification.ID] = true
		}
	}

	if len(userIDs) > 0 {
		uids := make([]string, 0, len(userIDs))
		for uid := range userIDs {
			uids = append(uids, uid)
		}
		var candidates []models.Notification
		if err := s.db.Where("user_id IN ?", uids).Find(&candidates).Error; err != nil {
			return 0, &PersistenceError{Op: "query notifications by user", Err: err}
		}
		for _, notification := range candidates {
			if toDelete[notification.ID] {
				continue
			}
			for i := range purged {
				if notificationMatchesBooking(&notification, &purged[i]) {
					toDelete[notification.ID] = true
					break
				}
			}
		}
	}

	if len(toDelete) == 0 {
		return 0, nil
	}

	deleteIDs := make([]string, 0, len(toDelete))
	for id := range toDelete {
		deleteIDs = append(deleteIDs, id)
	}
	for _, chunk := range chunkStrings(deleteIDs, s.batchSize) {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			return tx.Delete(&models.Notification{}, "id IN ?", chunk).Error
		})
		if err != nil {
			return 0, &PersistenceError{Op: "purge notifications batch", Err: err}
		}
	}

	log.Printf("🧹 Removed %d notification(s) linked to purged bookings", len(deleteIDs))
	return len(deleteIDs), nil
}

// notificationMatchesBooking links a notification to a booking either by the
// direct id reference or by owner plus date plus interval.
func notificationMatchesBooking(notification *models.Notification, booking *models.Booking) bool {
	if notification.BookingID != "" && notification.BookingID == booking.ID {
		return true
	}
	if notification.UserID == "" || notification.UserID != booking.User.UID {
		return false
	}
	notificationDay, ok := timeutil.Normalize(notification.Date)
	if !ok {
		return false
	}
	bookingDay, ok := timeutil.Normalize(booking.Date)
	if !ok {
		return false
	}
	if !timeutil.StartOfDay(notificationDay).Equal(timeutil.StartOfDay(bookingDay)) {
		return false
	}
	if notification.StartTime == "" || notification.EndTime == "" {
		return false
	}
	return notification.StartTime == booking.StartTime && notification.EndTime == booking.EndTime
}

func chunkBookings(items []models.Booking, size int) [][]models.Booking {
	var chunks [][]models.Booking
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

func chunkStrings(items []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
