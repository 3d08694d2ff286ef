package scheduling

import (
	"context"

	"github.com/google/uuid"

	"github.com/edaline/tutorhub/models"
)

// Ledger is the single entry point for credit balance changes. Every
// mutation is a compare-and-set on the balance column plus an audit row;
// nothing else in the codebase touches CreditBalance.
type Ledger struct {
	store  Store
	policy *Policy
}

func NewLedger(store Store, policy *Policy) *Ledger {
	return &Ledger{store: store, policy: policy}
}

// Debit removes credits, failing with ErrInsufficientCredits when the
// balance cannot cover the amount. Nothing is written on failure.
func (l *Ledger) Debit(ctx context.Context, studentID uuid.UUID, amount int, reason string, bookingID *uuid.UUID) error {
	return l.store.Transact(ctx, func(tx Store) error {
		return l.debitTx(ctx, tx, studentID, amount, reason, bookingID)
	})
}

// Credit adds credits; it always succeeds for a positive amount.
func (l *Ledger) Credit(ctx context.Context, studentID uuid.UUID, amount int, reason string, bookingID *uuid.UUID) error {
	return l.store.Transact(ctx, func(tx Store) error {
		return l.creditTx(ctx, tx, studentID, amount, reason, bookingID)
	})
}

func (l *Ledger) Balance(ctx context.Context, studentID uuid.UUID) (int, error) {
	const op = "scheduling.Ledger.Balance"
	bal, err := l.store.CreditBalance(ctx, studentID)
	if err != nil {
		return 0, storeErr(op, err)
	}
	return bal, nil
}

func (l *Ledger) debitTx(ctx context.Context, tx Store, studentID uuid.UUID, amount int, reason string, bookingID *uuid.UUID) error {
	const op = "scheduling.Ledger.debit"

	if amount <= 0 {
		return validationf("debit amount must be positive, got %d", amount)
	}
	ok, err := tx.AdjustCredits(ctx, studentID, -amount)
	if err != nil {
		return storeErr(op, err)
	}
	if !ok {
		return ErrInsufficientCredits
	}
	return l.record(ctx, tx, studentID, -amount, reason, bookingID)
}

func (l *Ledger) creditTx(ctx context.Context, tx Store, studentID uuid.UUID, amount int, reason string, bookingID *uuid.UUID) error {
	const op = "scheduling.Ledger.credit"

	if amount <= 0 {
		return validationf("credit amount must be positive, got %d", amount)
	}
	if _, err := tx.AdjustCredits(ctx, studentID, amount); err != nil {
		return storeErr(op, err)
	}
	return l.record(ctx, tx, studentID, amount, reason, bookingID)
}

func (l *Ledger) record(ctx context.Context, tx Store, studentID uuid.UUID, amount int, reason string, bookingID *uuid.UUID) error {
	const op = "scheduling.Ledger.record"

	entry := &models.CreditTransaction{
		ID:        uuid.New(),
		StudentID: studentID,
		Amount:    amount,
		Reason:    reason,
		BookingID: bookingID,
		CreatedAt: l.policy.now(),
	}
	if err := tx.InsertCreditTransaction(ctx, entry); err != nil {
		return storeErr(op, err)
	}
	return nil
}
