package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification documents a booking cancelled or deleted on a user's behalf.
// Created alongside the triggering state change; removed only when the
// retention cleanup purges its linked booking; otherwise only Read mutates.
type Notification struct {
	ID        string       `json:"id" gorm:"primaryKey;size:36"`
	UserID    string       `json:"user_id" gorm:"size:128;not null;index"`
	Type      string       `json:"type" gorm:"size:50;not null"` // booking_cancelled, booking_deleted
	Message   string       `json:"message" gorm:"type:text"`
	Date      string       `json:"date" gorm:"size:10"`
	Machine   Machine      `json:"machine" gorm:"type:varchar(20)"`
	StartTime string       `json:"start_time" gorm:"size:5"`
	EndTime   string       `json:"end_time" gorm:"size:5"`
	Duration  int          `json:"duration"`
	Reason    string       `json:"reason" gorm:"size:500"`
	BookingID string       `json:"booking_id" gorm:"size:36;index"`
	Read      bool         `json:"read" gorm:"default:false"`
	ReadAt    *time.Time   `json:"read_at,omitempty"`
	CreatedAt time.Time    `json:"created_at" gorm:"autoCreateTime"`
	User      UserSnapshot `json:"user_details" gorm:"embedded;embeddedPrefix:user_"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
