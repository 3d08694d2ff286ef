package models

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilityWindow is a teacher-declared open interval. Bookable slots
// are derived from windows at query time and never stored.
type AvailabilityWindow struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TeacherID uuid.UUID `gorm:"not null;index" json:"teacher_id"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	Teacher User `gorm:"foreignkey:TeacherID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
