package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edaline/tutorhub/models"
)

// weeklyAt returns n daily occurrences at the given hour, starting from
// the fixture window's first day.
func weeklyAt(env *testEnv, hour, n int) []OccurrenceSpec {
	specs := make([]OccurrenceSpec, 0, n)
	for i := 0; i < n; i++ {
		start, end := env.slotAt(hour + 24*i)
		specs = append(specs, OccurrenceSpec{SlotStart: start, SlotEnd: end})
	}
	return specs
}

func TestCreateSeries(t *testing.T) {
	env := newTestEnv()

	groupID, booked, err := env.engine.Groups.CreateSeries(context.Background(), env.student, env.teacher, weeklyAt(env, 10, 3), strptr("grammar block"))
	require.NoError(t, err)

	require.Len(t, booked, 3)
	for _, b := range booked {
		require.NotNil(t, b.RecurringGroupID)
		assert.Equal(t, groupID, *b.RecurringGroupID)
		assert.Equal(t, models.BookingConfirmed, b.Status)
	}
	assert.Equal(t, 2, env.balance(env.student), "one credit per occurrence")
	assert.Equal(t, 3, env.activeBookingCount())
}

func TestCreateSeriesRejectsEmpty(t *testing.T) {
	env := newTestEnv()

	var ve *ValidationError
	_, _, err := env.engine.Groups.CreateSeries(context.Background(), env.student, env.teacher, nil, nil)
	assert.ErrorAs(t, err, &ve)
}

func TestCreateSeriesAllOrNothingOnCredits(t *testing.T) {
	env := newTestEnv()
	env.store.setBalance(env.student, 2)

	_, _, err := env.engine.Groups.CreateSeries(context.Background(), env.student, env.teacher, weeklyAt(env, 10, 3), nil)
	require.ErrorIs(t, err, ErrInsufficientCredits)

	assert.Equal(t, 2, env.balance(env.student), "compensating refunds restore the balance")
	assert.Equal(t, 0, env.activeBookingCount(), "no occurrence survives a failed series")
}

func TestCreateSeriesAllOrNothingOnConflict(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// Occupy the middle occurrence's slot.
	blocked, _ := env.slotAt(34)
	env.store.addBooking(models.ClassBooking{
		ID: uuid.New(), StudentID: uuid.New(), TeacherID: env.teacher,
		StartTime: blocked, EndTime: blocked.Add(SlotDuration),
		Status: models.BookingConfirmed,
	})

	_, _, err := env.engine.Groups.CreateSeries(ctx, env.student, env.teacher, weeklyAt(env, 10, 3), nil)
	require.ErrorIs(t, err, ErrSlotConflict)

	assert.Equal(t, 5, env.balance(env.student))
	assert.Equal(t, 1, env.activeBookingCount(), "only the pre-existing booking remains")
}

func TestCancelSeriesSkipsPastAndRefundsPerOccurrence(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	groupID, booked, err := env.engine.Groups.CreateSeries(ctx, env.student, env.teacher, weeklyAt(env, 10, 5), nil)
	require.NoError(t, err)
	require.Equal(t, 0, env.balance(env.student))

	// Jump to Thursday noon: two occurrences are already in the past,
	// Friday's class is 22 hours out, Saturday's and Sunday's further.
	firstStart := booked[0].StartTime
	env.clock.Advance(firstStart.Add(26 * time.Hour).Sub(baseNow))
	now := env.clock.Now()

	cancelled, err := env.engine.Groups.CancelSeries(ctx, groupID, now)
	require.NoError(t, err)
	assert.Equal(t, 3, cancelled, "past occurrences are left alone")

	assert.Equal(t, 2, env.balance(env.student), "the occurrence inside 24 hours is forfeited, the rest refund")
	assert.Equal(t, 2, env.activeBookingCount(), "the two past occurrences keep their status")
}

func TestCancelSeriesIsIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	groupID, _, err := env.engine.Groups.CreateSeries(ctx, env.student, env.teacher, weeklyAt(env, 10, 2), nil)
	require.NoError(t, err)

	cancelled, err := env.engine.Groups.CancelSeries(ctx, groupID, env.clock.Now())
	require.NoError(t, err)
	require.Equal(t, 2, cancelled)
	require.Equal(t, 5, env.balance(env.student))

	cancelled, err = env.engine.Groups.CancelSeries(ctx, groupID, env.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, cancelled)
	assert.Equal(t, 5, env.balance(env.student), "no double refund on repeat cancellation")
}

func TestCancelSeriesUnknownGroup(t *testing.T) {
	env := newTestEnv()

	cancelled, err := env.engine.Groups.CancelSeries(context.Background(), uuid.New(), env.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, cancelled)
}

func TestCancelledSeriesMemberFreesItsSlot(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	groupID, booked, err := env.engine.Groups.CreateSeries(ctx, env.student, env.teacher, weeklyAt(env, 10, 2), nil)
	require.NoError(t, err)

	_, err = env.engine.Groups.CancelSeries(ctx, groupID, env.clock.Now())
	require.NoError(t, err)

	other := uuid.New()
	env.store.setBalance(other, 1)
	_, err = env.engine.Scheduler.Schedule(ctx, ScheduleRequest{
		StudentID: other, TeacherID: env.teacher,
		SlotStart: booked[0].StartTime, SlotEnd: booked[0].EndTime,
	})
	assert.NoError(t, err)
}
