package scheduling

import "time"

// SlotDuration is the single lesson length the engine models.
const SlotDuration = time.Hour

// SlotCost is the credit price of one confirmed booking.
const SlotCost = 1

// FreeCancellationWindow is measured in calendar hours. Booking lead time
// is measured in business hours instead; the asymmetry is deliberate and
// matches the product's refund policy.
const FreeCancellationWindow = 24 * time.Hour

// Policy holds the temporal booking rules. Now is injectable so the
// boundary arithmetic is unit-testable against a fixed clock.
type Policy struct {
	// CutoffHour is the hour-of-day the minimum bookable instant is
	// normalized to after advancing one business day.
	CutoffHour int

	Now func() time.Time
}

func NewPolicy(cutoffHour int) *Policy {
	return &Policy{CutoffHour: cutoffHour, Now: time.Now}
}

func (p *Policy) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// MinBookableTime advances now by one business day, skipping weekends,
// and normalizes the result to CutoffHour. New bookings must start at or
// after this instant.
func (p *Policy) MinBookableTime() time.Time {
	d := p.now().AddDate(0, 0, 1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), p.CutoffHour, 0, 0, 0, d.Location())
}

// IsBookable reports whether a class may start at the given instant.
func (p *Policy) IsBookable(start time.Time) bool {
	return !start.Before(p.MinBookableTime())
}

// IsFreeCancellation reports whether cancelling a class starting at the
// given instant still refunds the credit.
func (p *Policy) IsFreeCancellation(classStart time.Time) bool {
	return classStart.Sub(p.now()) >= FreeCancellationWindow
}
