package models

import (
	"time"

	"github.com/google/uuid"
)

// ReservationHold is a temporary claim on a teacher slot taken during a
// multi-step booking flow. A hold past ExpiresAt is treated as absent by
// every reader; the row is deleted on release, confirmation or by the
// periodic sweep. Expiry is never owned by the client.
type ReservationHold struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StudentID uuid.UUID `gorm:"not null;index" json:"student_id"`
	TeacherID uuid.UUID `gorm:"not null;uniqueIndex:uq_hold_teacher_slot" json:"teacher_id"`
	SlotStart time.Time `gorm:"not null;uniqueIndex:uq_hold_teacher_slot" json:"slot_start"`
	SlotEnd   time.Time `gorm:"not null" json:"slot_end"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}

// Expired reports whether the hold should be treated as absent.
func (h *ReservationHold) Expired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}
