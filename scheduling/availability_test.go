package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverPartitionsWindows(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	windowStart, _ := env.slotAt(0)
	from := windowStart
	to := windowStart.Add(4 * time.Hour)

	slots, err := env.engine.Resolver.Slots(ctx, env.teacher, from, to)
	require.NoError(t, err)
	require.Len(t, slots, 4)
	for i, s := range slots {
		assert.Equal(t, windowStart.Add(time.Duration(i)*time.Hour), s.StartTime)
		assert.Equal(t, SlotDuration, s.EndTime.Sub(s.StartTime))
		assert.Equal(t, env.teacher, s.TeacherID)
	}
}

func TestResolverExcludesPartialTail(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// A 90-minute window yields exactly one full slot.
	teacher := uuid.New()
	env.store.addTeacher(teacher)
	start, _ := env.slotAt(0)
	env.store.addWindow(teacher, start, start.Add(90*time.Minute))

	slots, err := env.engine.Resolver.Slots(ctx, teacher, start, start.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, start, slots[0].StartTime)
}

func TestResolverSubtractsBookingsAndHolds(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	bookedStart, _ := env.slotAt(1)
	env.store.addBooking(confirmedBooking(env, bookedStart, nil))

	heldStart, heldEnd := env.slotAt(2)
	_, err := env.engine.Holds.Acquire(ctx, uuid.New(), env.teacher, heldStart, heldEnd, 0)
	require.NoError(t, err)

	from, _ := env.slotAt(0)
	slots, err := env.engine.Resolver.Slots(ctx, env.teacher, from, from.Add(4*time.Hour))
	require.NoError(t, err)

	starts := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.StartTime)
	}
	assert.NotContains(t, starts, bookedStart)
	assert.NotContains(t, starts, heldStart)
	assert.Len(t, slots, 2)
}

func TestResolverSeesExpiredHoldSlotAsFree(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	heldStart, heldEnd := env.slotAt(3)
	_, err := env.engine.Holds.Acquire(ctx, uuid.New(), env.teacher, heldStart, heldEnd, 10*time.Minute)
	require.NoError(t, err)

	env.clock.Advance(11 * time.Minute)

	from, _ := env.slotAt(0)
	slots, err := env.engine.Resolver.Slots(ctx, env.teacher, from, from.Add(6*time.Hour))
	require.NoError(t, err)

	starts := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.StartTime)
	}
	assert.Contains(t, starts, heldStart, "an expired hold must not block the slot even before the sweep runs")
}

func TestResolverHidesSlotsInsideLeadTime(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// A window covering today: every slot in it is inside the lead time.
	teacher := uuid.New()
	env.store.addTeacher(teacher)
	todayStart := baseNow.Truncate(24 * time.Hour)
	env.store.addWindow(teacher, todayStart, todayStart.Add(24*time.Hour))

	slots, err := env.engine.Resolver.Slots(ctx, teacher, todayStart, todayStart.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestResolverUnknownTeacherIsEmptyNotError(t *testing.T) {
	env := newTestEnv()

	slots, err := env.engine.Resolver.Slots(context.Background(), uuid.New(), baseNow, baseNow.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestResolverRejectsMalformedRange(t *testing.T) {
	env := newTestEnv()

	_, err := env.engine.Resolver.Slots(context.Background(), env.teacher, baseNow, baseNow.Add(-time.Hour))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestResolverRecomputesPerCall(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	from, _ := env.slotAt(0)
	first, err := env.engine.Resolver.Slots(ctx, env.teacher, from, from.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, first, 3)

	env.store.addBooking(confirmedBooking(env, first[0].StartTime, nil))

	second, err := env.engine.Resolver.Slots(ctx, env.teacher, from, from.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Len(t, second, 2, "slots are derived fresh on every call, never cached")
}
