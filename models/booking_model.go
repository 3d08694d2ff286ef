package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the closed set of class booking states. Transitions are
// validated by the scheduling engine; handlers never write raw strings.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// ActiveBookingStatuses are the states that occupy a teacher slot.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingConfirmed}

// Terminal reports whether no further transition is allowed.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// ClassBooking is a confirmed (or once-confirmed) lesson reservation.
// The partial unique index on (teacher_id, start_time) over active statuses
// is the race arbiter for double booking: concurrent inserts for the same
// slot surface as a duplicate-key error, not as a lost update.
type ClassBooking struct {
	ID        uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StudentID uuid.UUID     `gorm:"not null;index" json:"student_id"`
	TeacherID uuid.UUID     `gorm:"not null;index:idx_teacher_slot_active,unique,where:status IN ('pending','confirmed')" json:"teacher_id"`
	StartTime time.Time     `gorm:"not null;index:idx_teacher_slot_active,unique,where:status IN ('pending','confirmed')" json:"start_time"`
	EndTime   time.Time     `gorm:"not null" json:"end_time"`
	Status    BookingStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	Notes     *string       `gorm:"type:text" json:"notes,omitempty"`

	// RecurringGroupID links the occurrences of a recurring series.
	RecurringGroupID *uuid.UUID `gorm:"type:uuid;index" json:"recurring_group_id,omitempty"`

	Student User `gorm:"foreignkey:StudentID" json:"student,omitempty"`
	Teacher User `gorm:"foreignkey:TeacherID" json:"teacher,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
