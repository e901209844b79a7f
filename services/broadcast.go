package services

import (
	"laundry-booking-server/models"
)

// Broadcaster fans accepted state transitions out to connected viewers.
// Implemented by the websocket hub; a no-op implementation is fine in tests.
type Broadcaster interface {
	BookingCreated(booking *models.Booking)
	BookingUpdated(booking *models.Booking)
	BookingDeleted(bookingID string)
	NotificationCreated(notification *models.Notification)
	MaintenanceCreated(interval *models.MaintenanceInterval)
	MaintenanceDeleted(maintenanceID string)
	SettingsUpdated(setting *models.Setting)
}

// NopBroadcaster drops every event.
type NopBroadcaster struct{}

func (NopBroadcaster) BookingCreated(*models.Booking)                 {}
func (NopBroadcaster) BookingUpdated(*models.Booking)                 {}
func (NopBroadcaster) BookingDeleted(string)                          {}
func (NopBroadcaster) NotificationCreated(*models.Notification)       {}
func (NopBroadcaster) MaintenanceCreated(*models.MaintenanceInterval) {}
func (NopBroadcaster) MaintenanceDeleted(string)                      {}
func (NopBroadcaster) SettingsUpdated(*models.Setting)                {}
