package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	CreditReasonBooking = "booking"
	CreditReasonRefund  = "refund"
	CreditReasonGrant   = "grant"
)

// CreditTransaction is the audit row written alongside every balance
// change. Amount is signed: debits negative, credits positive.
type CreditTransaction struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StudentID uuid.UUID  `gorm:"not null;index" json:"student_id"`
	Amount    int        `gorm:"not null" json:"amount"`
	Reason    string     `gorm:"size:20;not null" json:"reason"`
	BookingID *uuid.UUID `gorm:"type:uuid;index" json:"booking_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
