package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaintenanceInterval is an operator-declared blackout window. It behaves as
// an always-active booking for conflict purposes. Deleting one does not
// reinstate bookings it cancelled.
type MaintenanceInterval struct {
	ID        string  `json:"id" gorm:"primaryKey;size:36"`
	Machine   Machine `json:"machine" gorm:"type:varchar(20);not null;index"`
	Date      string  `json:"date" gorm:"size:10;not null"` // canonical DD/MM/YYYY
	StartTime string  `json:"start_time" gorm:"size:5;not null"`
	EndTime   string  `json:"end_time" gorm:"size:5;not null"`
	Slots     string  `json:"slots" gorm:"type:text"` // JSON list of blocked UI slots
	CreatedAt int64   `json:"created_at" gorm:"autoCreateTime:milli"`
}

func (MaintenanceInterval) TableName() string {
	return "maintenance"
}

func (m *MaintenanceInterval) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
