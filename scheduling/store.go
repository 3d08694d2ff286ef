package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/edaline/tutorhub/models"
)

// ErrDuplicateKey is returned by Store implementations when an insert or
// update loses the uniqueness race on a (teacher, slot start) key. The
// engine translates it to ErrSlotConflict.
var ErrDuplicateKey = errors.New("duplicate slot key")

// Store is the persistence surface the engine runs on. The production
// implementation is GORM over Postgres (database.Store); tests run an
// in-memory one. Methods called inside Transact must observe and join the
// transaction of the receiver they are called on.
type Store interface {
	// Transact runs fn atomically; any returned error rolls back every
	// write made through the Store handed to fn.
	Transact(ctx context.Context, fn func(tx Store) error) error

	ActiveTeacher(ctx context.Context, teacherID uuid.UUID) (bool, error)
	WindowsOverlapping(ctx context.Context, teacherID uuid.UUID, from, to time.Time) ([]models.AvailabilityWindow, error)

	BookingByID(ctx context.Context, id uuid.UUID) (*models.ClassBooking, error)
	ActiveBookings(ctx context.Context, teacherID uuid.UUID, from, to time.Time) ([]models.ClassBooking, error)
	// ActiveBookingAt returns the pending/confirmed booking occupying the
	// slot, or nil. Implementations lock the row when inside a transaction.
	ActiveBookingAt(ctx context.Context, teacherID uuid.UUID, start time.Time) (*models.ClassBooking, error)
	GroupBookings(ctx context.Context, groupID uuid.UUID) ([]models.ClassBooking, error)
	InsertBooking(ctx context.Context, b *models.ClassBooking) error
	// UpdateBookingStatus is a compare-and-set: the transition applies only
	// if the current status is one of from. Returns false when it was not.
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, from []models.BookingStatus, to models.BookingStatus) (bool, error)
	// UpdateBookingSlot moves a booking to a new slot; the unique index
	// re-checks and the call fails with ErrDuplicateKey on collision.
	UpdateBookingSlot(ctx context.Context, id uuid.UUID, start, end time.Time) error
	UpdateBookingNotes(ctx context.Context, id uuid.UUID, notes *string) error

	HoldByID(ctx context.Context, id uuid.UUID) (*models.ReservationHold, error)
	// UnexpiredHoldAt returns the live hold on the slot, or nil. Holds past
	// expiry are invisible here regardless of whether the sweep ran.
	UnexpiredHoldAt(ctx context.Context, teacherID uuid.UUID, start, now time.Time) (*models.ReservationHold, error)
	UnexpiredHolds(ctx context.Context, teacherID uuid.UUID, from, to, now time.Time) ([]models.ReservationHold, error)
	InsertHold(ctx context.Context, h *models.ReservationHold) error
	// DeleteHold reports whether a row was actually removed.
	DeleteHold(ctx context.Context, id uuid.UUID) (bool, error)
	// PurgeExpiredHolds clears expired rows on one slot key so a fresh
	// insert does not trip the unique index.
	PurgeExpiredHolds(ctx context.Context, teacherID uuid.UUID, start, now time.Time) error
	DeleteExpiredHolds(ctx context.Context, now time.Time) (int64, error)

	CreditBalance(ctx context.Context, studentID uuid.UUID) (int, error)
	// AdjustCredits applies delta with compare-and-set semantics: it
	// returns false, writing nothing, when the result would be negative.
	AdjustCredits(ctx context.Context, studentID uuid.UUID, delta int) (bool, error)
	InsertCreditTransaction(ctx context.Context, t *models.CreditTransaction) error
}
