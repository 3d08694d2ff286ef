package scheduling

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrLeadTimeViolation: the requested class start is earlier than the
	// minimum booking lead time (one business day, cutoff-normalized).
	ErrLeadTimeViolation = errors.New("class start violates the minimum booking lead time")

	// ErrInsufficientCredits: the student cannot cover the booking cost.
	ErrInsufficientCredits = errors.New("insufficient credit balance")

	// ErrTeacherUnavailable: the teacher does not exist, is not active, or
	// has no availability window covering the requested slot.
	ErrTeacherUnavailable = errors.New("teacher is not available for the requested slot")

	// ErrSlotConflict: the slot is occupied by an active booking or by an
	// unexpired hold belonging to another student.
	ErrSlotConflict = errors.New("slot is already booked or held")

	// ErrHoldExpired: the hold passed its expiry before confirmation.
	ErrHoldExpired = errors.New("reservation hold has expired")

	ErrHoldNotFound    = errors.New("reservation hold not found")
	ErrBookingNotFound = errors.New("booking not found")

	// ErrRequiresConfirmation is a soft guard, not a failure: a cancellation
	// inside the 24-hour window must be re-submitted with force=true.
	ErrRequiresConfirmation = errors.New("late cancellation forfeits the credit and requires confirmation")

	// ErrInvalidState: the booking is already cancelled or completed.
	ErrInvalidState = errors.New("booking is in a terminal state")

	// ErrStoreTimeout wraps context expiry on store calls. It is the only
	// error class a caller should retry.
	ErrStoreTimeout = errors.New("store operation timed out")
)

// ValidationError rejects malformed input before any state is touched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// storeErr classifies a failed store call: context expiry becomes the
// retryable ErrStoreTimeout, everything else is passed through wrapped.
func storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, ErrStoreTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}
