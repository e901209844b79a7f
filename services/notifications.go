package services

import (
	"errors"

	"gorm.io/gorm"

	"laundry-booking-server/models"
	"laundry-booking-server/timeutil"
)

// NotificationService reads and maintains the persisted notification
// records. Creation happens on the booking/maintenance paths; here only Read
// ever mutates.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// ListByUser returns a user's notifications, newest first.
func (s *NotificationService) ListByUser(userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, &PersistenceError{Op: "list notifications", Err: err}
	}
	return notifications, nil
}

// ListAll returns every notification, newest first (admin view).
func (s *NotificationService) ListAll() ([]models.Notification, error) {
	var notifications []models.Notification
	if err := s.db.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, &PersistenceError{Op: "list notifications", Err: err}
	}
	return notifications, nil
}

// MarkRead flags a notification as read.
func (s *NotificationService) MarkRead(id string) error {
	readAt := timeutil.Now()
	res := s.db.Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"read": true, "read_at": readAt})
	if res.Error != nil {
		return &PersistenceError{Op: "mark notification read", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "notification", ID: id}
	}
	return nil
}

// Delete removes a single notification record.
func (s *NotificationService) Delete(id string) error {
	var notification models.Notification
	if err := s.db.First(&notification, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "notification", ID: id}
		}
		return &PersistenceError{Op: "load notification", Err: err}
	}
	if err := s.db.Delete(&models.Notification{}, "id = ?", id).Error; err != nil {
		return &PersistenceError{Op: "delete notification", Err: err}
	}
	return nil
}
