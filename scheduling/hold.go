package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/edaline/tutorhub/lock"
	"github.com/edaline/tutorhub/models"
)

// HoldManager lets a multi-step signup flow claim a slot before final
// confirmation. A hold is authoritative in the store: expiry is enforced
// by reads treating stale rows as absent plus a periodic sweep, never by
// a timer in the requester's process.
type HoldManager struct {
	store     Store
	locker    lock.Locker
	policy    *Policy
	scheduler *Scheduler

	DefaultTTL time.Duration
	MaxTTL     time.Duration
}

func NewHoldManager(store Store, locker lock.Locker, policy *Policy, scheduler *Scheduler, defaultTTL time.Duration) *HoldManager {
	return &HoldManager{
		store:      store,
		locker:     locker,
		policy:     policy,
		scheduler:  scheduler,
		DefaultTTL: defaultTTL,
		MaxTTL:     4 * defaultTTL,
	}
}

// Acquire claims (teacherID, slotStart) for the student. It fails with
// ErrSlotConflict when an active booking or another live hold occupies
// the slot.
func (m *HoldManager) Acquire(ctx context.Context, studentID, teacherID uuid.UUID, slotStart, slotEnd time.Time, ttl time.Duration) (*models.ReservationHold, error) {
	const op = "scheduling.HoldManager.Acquire"

	if slotEnd.Sub(slotStart) != SlotDuration {
		return nil, validationf("slot must be exactly %s long", SlotDuration)
	}
	if !m.policy.IsBookable(slotStart) {
		return nil, ErrLeadTimeViolation
	}
	if ttl <= 0 {
		ttl = m.DefaultTTL
	}
	if ttl > m.MaxTTL {
		ttl = m.MaxTTL
	}

	key := slotKey(teacherID, slotStart)
	locked, err := m.locker.Lock(ctx, key, slotLockTTL)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if !locked {
		return nil, ErrSlotConflict
	}
	defer m.locker.Unlock(ctx, key)

	var hold *models.ReservationHold
	err = m.store.Transact(ctx, func(tx Store) error {
		now := m.policy.now()

		booked, err := tx.ActiveBookingAt(ctx, teacherID, slotStart)
		if err != nil {
			return storeErr(op, err)
		}
		if booked != nil {
			return ErrSlotConflict
		}

		// Clear any expired row first so the unique index does not block
		// a legitimate re-acquire of a lapsed hold.
		if err := tx.PurgeExpiredHolds(ctx, teacherID, slotStart, now); err != nil {
			return storeErr(op, err)
		}

		hold = &models.ReservationHold{
			ID:        uuid.New(),
			StudentID: studentID,
			TeacherID: teacherID,
			SlotStart: slotStart,
			SlotEnd:   slotEnd,
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
		}
		if err := tx.InsertHold(ctx, hold); err != nil {
			if errors.Is(err, ErrDuplicateKey) {
				return ErrSlotConflict
			}
			return storeErr(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hold, nil
}

// Release drops a hold. Releasing an unknown, already-confirmed or
// already-expired hold is a no-op.
func (m *HoldManager) Release(ctx context.Context, holdID uuid.UUID) error {
	const op = "scheduling.HoldManager.Release"

	if _, err := m.store.DeleteHold(ctx, holdID); err != nil {
		return storeErr(op, err)
	}
	return nil
}

// Confirm promotes a hold into a scheduled booking. The hold is consumed
// inside the booking transaction, so confirmation and slot release are
// atomic. A hold past expiry fails with ErrHoldExpired even if the sweep
// has not deleted it yet.
func (m *HoldManager) Confirm(ctx context.Context, holdID uuid.UUID, notes *string) (*models.ClassBooking, error) {
	const op = "scheduling.HoldManager.Confirm"

	h, err := m.store.HoldByID(ctx, holdID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if h == nil {
		return nil, ErrHoldNotFound
	}
	if h.Expired(m.policy.now()) {
		return nil, ErrHoldExpired
	}

	return m.scheduler.schedule(ctx, ScheduleRequest{
		StudentID: h.StudentID,
		TeacherID: h.TeacherID,
		SlotStart: h.SlotStart,
		SlotEnd:   h.SlotEnd,
		Notes:     notes,
	}, h.ID)
}

// SweepExpired deletes every lapsed hold. Lazy expiry keeps correctness
// without it; the sweep just keeps the table small.
func (m *HoldManager) SweepExpired(ctx context.Context) (int64, error) {
	const op = "scheduling.HoldManager.SweepExpired"

	n, err := m.store.DeleteExpiredHolds(ctx, m.policy.now())
	if err != nil {
		return 0, storeErr(op, err)
	}
	return n, nil
}
