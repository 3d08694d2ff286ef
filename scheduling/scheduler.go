package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edaline/tutorhub/lock"
	"github.com/edaline/tutorhub/models"
)

// slotLockTTL bounds how long a crashed request can keep a slot key
// locked. Well above any request deadline.
const slotLockTTL = 10 * time.Second

func slotKey(teacherID uuid.UUID, start time.Time) string {
	return fmt.Sprintf("slot:%s:%d", teacherID, start.Unix())
}

type ScheduleRequest struct {
	StudentID uuid.UUID
	TeacherID uuid.UUID
	SlotStart time.Time
	SlotEnd   time.Time
	Notes     *string

	// GroupID is set when the booking belongs to a recurring series.
	GroupID *uuid.UUID
}

// Scheduler turns an availability slot into a confirmed class booking.
// Schedule runs the admission checks in a fixed order and commits the
// booking insert and the credit debit as one transaction; a failure at
// any point leaves no partial effect.
type Scheduler struct {
	store  Store
	locker lock.Locker
	policy *Policy
	ledger *Ledger
}

func NewScheduler(store Store, locker lock.Locker, policy *Policy, ledger *Ledger) *Scheduler {
	return &Scheduler{store: store, locker: locker, policy: policy, ledger: ledger}
}

func (s *Scheduler) Schedule(ctx context.Context, req ScheduleRequest) (*models.ClassBooking, error) {
	return s.schedule(ctx, req, uuid.Nil)
}

// schedule optionally consumes the caller's own hold (confirmation path).
// Check order: lead time, credits, teacher availability, slot conflict,
// then the atomic commit. The partial unique index on bookings is the
// final arbiter under concurrency; the slot lock only shrinks the window.
func (s *Scheduler) schedule(ctx context.Context, req ScheduleRequest, consumeHold uuid.UUID) (*models.ClassBooking, error) {
	const op = "scheduling.Scheduler.Schedule"

	if req.SlotEnd.Sub(req.SlotStart) != SlotDuration {
		return nil, validationf("slot must be exactly %s long", SlotDuration)
	}
	if !s.policy.IsBookable(req.SlotStart) {
		return nil, ErrLeadTimeViolation
	}

	key := slotKey(req.TeacherID, req.SlotStart)
	locked, err := s.locker.Lock(ctx, key, slotLockTTL)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if !locked {
		return nil, ErrSlotConflict
	}
	defer s.locker.Unlock(ctx, key)

	var booking *models.ClassBooking
	err = s.store.Transact(ctx, func(tx Store) error {
		now := s.policy.now()

		balance, err := tx.CreditBalance(ctx, req.StudentID)
		if err != nil {
			return storeErr(op, err)
		}
		if balance < SlotCost {
			return ErrInsufficientCredits
		}

		if err := s.checkTeacherSlot(ctx, tx, req.TeacherID, req.SlotStart, req.SlotEnd); err != nil {
			return err
		}

		existing, err := tx.ActiveBookingAt(ctx, req.TeacherID, req.SlotStart)
		if err != nil {
			return storeErr(op, err)
		}
		if existing != nil {
			return ErrSlotConflict
		}

		if err := tx.PurgeExpiredHolds(ctx, req.TeacherID, req.SlotStart, now); err != nil {
			return storeErr(op, err)
		}
		held, err := tx.UnexpiredHoldAt(ctx, req.TeacherID, req.SlotStart, now)
		if err != nil {
			return storeErr(op, err)
		}
		if held != nil && held.StudentID != req.StudentID {
			return ErrSlotConflict
		}
		if consumeHold != uuid.Nil && (held == nil || held.ID != consumeHold) {
			// The hold lapsed between the confirm read and this transaction.
			return ErrHoldExpired
		}

		booking = &models.ClassBooking{
			ID:               uuid.New(),
			StudentID:        req.StudentID,
			TeacherID:        req.TeacherID,
			StartTime:        req.SlotStart,
			EndTime:          req.SlotEnd,
			Status:           models.BookingConfirmed,
			Notes:            req.Notes,
			RecurringGroupID: req.GroupID,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := tx.InsertBooking(ctx, booking); err != nil {
			if errors.Is(err, ErrDuplicateKey) {
				return ErrSlotConflict
			}
			return storeErr(op, err)
		}

		if err := s.ledger.debitTx(ctx, tx, req.StudentID, SlotCost, models.CreditReasonBooking, &booking.ID); err != nil {
			return err
		}

		// The student's own hold is spent by the booking whether or not
		// this was an explicit confirmation.
		if held != nil {
			if _, err := tx.DeleteHold(ctx, held.ID); err != nil {
				return storeErr(op, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// checkTeacherSlot verifies the teacher is active and that a declared
// window fully covers the slot, aligned to the window's own partition.
func (s *Scheduler) checkTeacherSlot(ctx context.Context, tx Store, teacherID uuid.UUID, start, end time.Time) error {
	const op = "scheduling.Scheduler.checkTeacherSlot"

	active, err := tx.ActiveTeacher(ctx, teacherID)
	if err != nil {
		return storeErr(op, err)
	}
	if !active {
		return ErrTeacherUnavailable
	}

	windows, err := tx.WindowsOverlapping(ctx, teacherID, start, end)
	if err != nil {
		return storeErr(op, err)
	}
	for _, w := range windows {
		if start.Before(w.StartTime) || end.After(w.EndTime) {
			continue
		}
		if start.Sub(w.StartTime)%SlotDuration != 0 {
			continue
		}
		return nil
	}
	return ErrTeacherUnavailable
}

// Cancel cancels a single booking. Inside the free-cancellation window the
// credit is refunded; closer to class start the caller must confirm with
// force=true and the credit is forfeited. Returns whether a refund was
// issued.
func (s *Scheduler) Cancel(ctx context.Context, bookingID uuid.UUID, force bool) (bool, error) {
	const op = "scheduling.Scheduler.Cancel"

	b, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return false, storeErr(op, err)
	}
	if b == nil {
		return false, ErrBookingNotFound
	}
	if b.Status.Terminal() {
		return false, ErrInvalidState
	}

	refund := s.policy.IsFreeCancellation(b.StartTime)
	if !refund && !force {
		return false, ErrRequiresConfirmation
	}

	err = s.store.Transact(ctx, func(tx Store) error {
		ok, err := tx.UpdateBookingStatus(ctx, b.ID, models.ActiveBookingStatuses, models.BookingCancelled)
		if err != nil {
			return storeErr(op, err)
		}
		if !ok {
			// Lost the race against another cancel or the completion sweep.
			return ErrInvalidState
		}
		if refund {
			return s.ledger.creditTx(ctx, tx, b.StudentID, SlotCost, models.CreditReasonRefund, &b.ID)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return refund, nil
}

type EditRequest struct {
	StartTime *time.Time
	EndTime   *time.Time
	Notes     *string
}

// Reschedule edits a booking. Edits are lead-time gated the same way
// cancellation is: inside 24 hours of class start nothing may change.
// Moving the slot re-runs the lead-time, window and conflict checks
// against the new time; the unique index re-arbitrates at the write.
func (s *Scheduler) Reschedule(ctx context.Context, bookingID uuid.UUID, req EditRequest) (*models.ClassBooking, error) {
	const op = "scheduling.Scheduler.Reschedule"

	b, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if b.Status.Terminal() {
		return nil, ErrInvalidState
	}
	if b.StartTime.Sub(s.policy.now()) < FreeCancellationWindow {
		return nil, ErrLeadTimeViolation
	}

	newStart, newEnd := b.StartTime, b.EndTime
	if req.StartTime != nil {
		newStart = *req.StartTime
	}
	if req.EndTime != nil {
		newEnd = *req.EndTime
	}
	if newEnd.Sub(newStart) != SlotDuration {
		return nil, validationf("slot must be exactly %s long", SlotDuration)
	}

	moved := !newStart.Equal(b.StartTime)
	if moved {
		if !s.policy.IsBookable(newStart) {
			return nil, ErrLeadTimeViolation
		}

		key := slotKey(b.TeacherID, newStart)
		locked, err := s.locker.Lock(ctx, key, slotLockTTL)
		if err != nil {
			return nil, storeErr(op, err)
		}
		if !locked {
			return nil, ErrSlotConflict
		}
		defer s.locker.Unlock(ctx, key)
	}

	err = s.store.Transact(ctx, func(tx Store) error {
		if moved {
			if err := s.checkTeacherSlot(ctx, tx, b.TeacherID, newStart, newEnd); err != nil {
				return err
			}
			if err := tx.PurgeExpiredHolds(ctx, b.TeacherID, newStart, s.policy.now()); err != nil {
				return storeErr(op, err)
			}
			held, err := tx.UnexpiredHoldAt(ctx, b.TeacherID, newStart, s.policy.now())
			if err != nil {
				return storeErr(op, err)
			}
			if held != nil && held.StudentID != b.StudentID {
				return ErrSlotConflict
			}
			if err := tx.UpdateBookingSlot(ctx, b.ID, newStart, newEnd); err != nil {
				if errors.Is(err, ErrDuplicateKey) {
					return ErrSlotConflict
				}
				return storeErr(op, err)
			}
			b.StartTime, b.EndTime = newStart, newEnd
		}
		if req.Notes != nil {
			if err := tx.UpdateBookingNotes(ctx, b.ID, req.Notes); err != nil {
				return storeErr(op, err)
			}
			b.Notes = req.Notes
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}
