package services

import (
	"fmt"
)

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictDetail describes one active booking that blocks a requested slot.
type ConflictDetail struct {
	BookingID string `json:"booking_id"`
	User      string `json:"user"`
	Room      string `json:"room"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// MaintenanceConflict describes a maintenance window that blocks a requested
// slot.
type MaintenanceConflict struct {
	MaintenanceID string `json:"maintenance_id"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

// ConflictError is returned when a requested interval overlaps an active
// booking or a maintenance window. It carries the overlapping set so callers
// can present it.
type ConflictError struct {
	Conflicts            []ConflictDetail
	MaintenanceConflicts []MaintenanceConflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("interval conflicts with %d booking(s) and %d maintenance window(s)",
		len(e.Conflicts), len(e.MaintenanceConflicts))
}

// NotFoundError reports an unknown entity id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// PersistenceError wraps a failed store operation. Never silently swallowed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NotificationError wraps a failed email or notification write. Always
// recovered locally and logged; booking correctness never depends on it.
type NotificationError struct {
	Op  string
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
