package scheduling

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/edaline/tutorhub/models"
)

// OccurrenceSpec is one requested occurrence of a recurring series.
type OccurrenceSpec struct {
	SlotStart time.Time
	SlotEnd   time.Time
}

// RecurringGroupManager links bookings into a weekly-lesson style series
// and applies bulk operations to it.
type RecurringGroupManager struct {
	store     Store
	scheduler *Scheduler
	policy    *Policy
	ledger    *Ledger
}

func NewRecurringGroupManager(store Store, scheduler *Scheduler, policy *Policy, ledger *Ledger) *RecurringGroupManager {
	return &RecurringGroupManager{store: store, scheduler: scheduler, policy: policy, ledger: ledger}
}

// CreateSeries schedules every occurrence under one group ID. All or
// nothing: the first failing occurrence aborts the series and every
// occurrence already committed in this call is compensated with a
// cancellation and a full refund.
func (g *RecurringGroupManager) CreateSeries(ctx context.Context, studentID, teacherID uuid.UUID, occurrences []OccurrenceSpec, notes *string) (uuid.UUID, []*models.ClassBooking, error) {
	if len(occurrences) == 0 {
		return uuid.Nil, nil, validationf("a series needs at least one occurrence")
	}

	groupID := uuid.New()
	booked := make([]*models.ClassBooking, 0, len(occurrences))
	for _, oc := range occurrences {
		b, err := g.scheduler.schedule(ctx, ScheduleRequest{
			StudentID: studentID,
			TeacherID: teacherID,
			SlotStart: oc.SlotStart,
			SlotEnd:   oc.SlotEnd,
			Notes:     notes,
			GroupID:   &groupID,
		}, uuid.Nil)
		if err != nil {
			g.rollback(ctx, booked)
			return uuid.Nil, nil, fmt.Errorf("series occurrence at %s: %w", oc.SlotStart.Format(time.RFC3339), err)
		}
		booked = append(booked, b)
	}
	return groupID, booked, nil
}

// rollback compensates already-committed occurrences of a failed series
// creation. Refunds here are unconditional; the student never attempted
// a late cancellation.
func (g *RecurringGroupManager) rollback(ctx context.Context, booked []*models.ClassBooking) {
	for _, b := range booked {
		err := g.store.Transact(ctx, func(tx Store) error {
			ok, err := tx.UpdateBookingStatus(ctx, b.ID, models.ActiveBookingStatuses, models.BookingCancelled)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			return g.ledger.creditTx(ctx, tx, b.StudentID, SlotCost, models.CreditReasonRefund, &b.ID)
		})
		if err != nil {
			// The booking stays visible and can still be cancelled by hand.
			log.Printf("🔥 Failed to roll back series occurrence %s: %v", b.ID, err)
		}
	}
}

// CancelSeries cancels every active member of the group starting at or
// after from, and reports how many were cancelled. Each occurrence is
// refunded independently under the single-cancellation rule, so a
// far-future member refunds while a near-term one does not. Bulk
// cancellation carries no confirmation guard.
func (g *RecurringGroupManager) CancelSeries(ctx context.Context, groupID uuid.UUID, from time.Time) (int, error) {
	const op = "scheduling.RecurringGroupManager.CancelSeries"

	members, err := g.store.GroupBookings(ctx, groupID)
	if err != nil {
		return 0, storeErr(op, err)
	}

	cancelled := 0
	for i := range members {
		m := members[i]
		if m.Status.Terminal() || m.StartTime.Before(from) {
			continue
		}
		refund := g.policy.IsFreeCancellation(m.StartTime)
		err := g.store.Transact(ctx, func(tx Store) error {
			ok, err := tx.UpdateBookingStatus(ctx, m.ID, models.ActiveBookingStatuses, models.BookingCancelled)
			if err != nil {
				return storeErr(op, err)
			}
			if !ok {
				return nil
			}
			cancelled++
			if refund {
				return g.ledger.creditTx(ctx, tx, m.StudentID, SlotCost, models.CreditReasonRefund, &m.ID)
			}
			return nil
		})
		if err != nil {
			return cancelled, err
		}
	}
	return cancelled, nil
}
