package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func policyAt(t time.Time, cutoff int) *Policy {
	p := NewPolicy(cutoff)
	p.Now = newFakeClock(t).Now
	return p
}

func TestMinBookableTimeSkipsWeekend(t *testing.T) {
	// Monday -> Tuesday 00:00.
	monday := time.Date(2026, time.September, 7, 9, 30, 0, 0, time.UTC)
	p := policyAt(monday, 0)
	assert.Equal(t, time.Date(2026, time.September, 8, 0, 0, 0, 0, time.UTC), p.MinBookableTime())

	// Friday -> the next day is Saturday, so the earliest bookable day is Monday.
	friday := time.Date(2026, time.September, 11, 16, 0, 0, 0, time.UTC)
	p = policyAt(friday, 0)
	assert.Equal(t, time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC), p.MinBookableTime())

	// Saturday -> Sunday is skipped too.
	saturday := time.Date(2026, time.September, 12, 10, 0, 0, 0, time.UTC)
	p = policyAt(saturday, 0)
	assert.Equal(t, time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC), p.MinBookableTime())
}

func TestMinBookableTimeNormalizesToCutoffHour(t *testing.T) {
	monday := time.Date(2026, time.September, 7, 23, 45, 0, 0, time.UTC)
	p := policyAt(monday, 6)
	assert.Equal(t, time.Date(2026, time.September, 8, 6, 0, 0, 0, time.UTC), p.MinBookableTime())
}

func TestIsBookableBoundary(t *testing.T) {
	monday := time.Date(2026, time.September, 7, 9, 0, 0, 0, time.UTC)
	p := policyAt(monday, 0)
	cutoff := p.MinBookableTime()

	assert.True(t, p.IsBookable(cutoff), "exactly at the cutoff must be accepted")
	assert.True(t, p.IsBookable(cutoff.Add(time.Hour)))
	assert.False(t, p.IsBookable(cutoff.Add(-time.Millisecond)), "a millisecond before the cutoff must be rejected")
}

func TestIsFreeCancellationBoundary(t *testing.T) {
	p := policyAt(baseNow, 0)

	assert.True(t, p.IsFreeCancellation(baseNow.Add(FreeCancellationWindow)))
	assert.True(t, p.IsFreeCancellation(baseNow.Add(48*time.Hour)))
	assert.False(t, p.IsFreeCancellation(baseNow.Add(FreeCancellationWindow-time.Second)))
	assert.False(t, p.IsFreeCancellation(baseNow.Add(2*time.Hour)))
}

func TestCancellationWindowUsesCalendarHours(t *testing.T) {
	// Friday evening: a Saturday class is cancellable for free even though
	// no business day fits in between. Booking lead time would reject the
	// same gap; the asymmetry is intentional.
	friday := time.Date(2026, time.September, 11, 10, 0, 0, 0, time.UTC)
	p := policyAt(friday, 0)

	saturdayClass := friday.Add(26 * time.Hour)
	assert.True(t, p.IsFreeCancellation(saturdayClass))
	assert.False(t, p.IsBookable(saturdayClass))
}
