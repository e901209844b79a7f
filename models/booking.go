package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Machine identifies one of the physical laundry machines.
type Machine string

const (
	MachineWasher1 Machine = "washer-1"
	MachineWasher2 Machine = "washer-2"
	MachineDryer   Machine = "dryer"
)

// IsValid reports whether the identifier names a known machine. Unknown
// machines are rejected at the boundary, not deep in the conflict logic.
func (m Machine) IsValid() bool {
	switch m {
	case MachineWasher1, MachineWasher2, MachineDryer:
		return true
	default:
		return false
	}
}

// IsDurationBased reports whether bookings on this machine are defined by a
// start instant plus a duration and auto-expire once the end instant passes.
func (m Machine) IsDurationBased() bool {
	return m == MachineDryer
}

// ActiveStatus is the single source of truth for whether a booking currently
// occupies its slot. A booking with Status=false is logically cancelled or
// expired but retained for audit and notification linking.
type ActiveStatus struct {
	Status      bool       `json:"status" gorm:"column:status;default:true"`
	Message     string     `json:"message,omitempty" gorm:"column:message;size:500"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" gorm:"column:cancelled_at"`
	ExpiredAt   *time.Time `json:"expired_at,omitempty" gorm:"column:expired_at"`
	CancelledBy string     `json:"cancelled_by,omitempty" gorm:"column:cancelled_by;size:50"`
}

// UserSnapshot is the booking owner denormalized at write time.
type UserSnapshot struct {
	UID      string `json:"uid" gorm:"column:uid;size:128;index"`
	FullName string `json:"full_name" gorm:"column:full_name;size:255"`
	Room     string `json:"room" gorm:"column:room;size:20"`
	Phone    string `json:"phone" gorm:"column:phone;size:30"`
	Email    string `json:"email" gorm:"column:email;size:255"`
}

type Booking struct {
	ID              string       `json:"id" gorm:"primaryKey;size:36"`
	Machine         Machine      `json:"machine" gorm:"type:varchar(20);not null;index"`
	Date            string       `json:"date" gorm:"size:10;not null"` // canonical DD/MM/YYYY
	StartTime       string       `json:"start_time" gorm:"size:5;not null"`
	EndTime         string       `json:"end_time" gorm:"size:5;not null"`
	DurationMinutes int          `json:"duration_minutes" gorm:"not null"`
	StartsAt        *int64       `json:"starts_at,omitempty"` // epoch ms, duration-based bookings only
	EndsAt          *int64       `json:"ends_at,omitempty"`
	Active          ActiveStatus `json:"active" gorm:"embedded;embeddedPrefix:active_"`
	User            UserSnapshot `json:"user" gorm:"embedded;embeddedPrefix:user_"`
	CreatedAt       time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// BeforeCreate is a GORM hook that assigns the opaque store id
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
