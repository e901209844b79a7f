package models

import (
	"time"
)

// User is the resident profile. Profile management lives elsewhere; the
// booking engine only reads it to enrich booking snapshots and emails.
type User struct {
	UID         string    `json:"uid" gorm:"primaryKey;size:128"`
	FullName    string    `json:"full_name" gorm:"size:255;not null"`
	Room        string    `json:"room" gorm:"size:20"`
	Phone       string    `json:"phone" gorm:"size:30"`
	Email       string    `json:"email" gorm:"size:255"`
	GoogleEmail string    `json:"google_email" gorm:"size:255"` // federated login address, preferred for outbound mail
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// PreferredEmail picks the address outbound mail should target.
func (u *User) PreferredEmail() string {
	if u.GoogleEmail != "" {
		return u.GoogleEmail
	}
	return u.Email
}
