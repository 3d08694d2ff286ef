package scheduling

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edaline/tutorhub/lock"
	"github.com/edaline/tutorhub/models"
)

// baseNow is a Monday morning; keeps the business-day arithmetic in the
// fixtures easy to follow.
var baseNow = time.Date(2026, time.September, 7, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	engine *Engine
	store  *memStore
	clock  *fakeClock

	student uuid.UUID
	teacher uuid.UUID
}

// newTestEnv builds an engine over the in-memory store with a fixed
// clock, one active teacher with a week-long availability window two
// days out, and a student holding 5 credits.
func newTestEnv() *testEnv {
	store := newMemStore()
	clock := newFakeClock(baseNow)

	engine := NewEngine(store, lock.NewKeyMutex(), Config{CutoffHour: 0, HoldTTL: 15 * time.Minute})
	engine.Policy.Now = clock.Now

	env := &testEnv{
		engine:  engine,
		store:   store,
		clock:   clock,
		student: uuid.New(),
		teacher: uuid.New(),
	}
	store.addTeacher(env.teacher)
	store.addWindow(env.teacher, baseNow.AddDate(0, 0, 2).Truncate(24*time.Hour), baseNow.AddDate(0, 0, 9).Truncate(24*time.Hour))
	store.setBalance(env.student, 5)
	return env
}

// slotAt returns an aligned bookable slot n hours after the window start
// (Wednesday 00:00 UTC).
func (e *testEnv) slotAt(hours int) (time.Time, time.Time) {
	start := baseNow.AddDate(0, 0, 2).Truncate(24 * time.Hour).Add(time.Duration(hours) * time.Hour)
	return start, start.Add(SlotDuration)
}

func (e *testEnv) balance(id uuid.UUID) int {
	return e.store.data.balances[id]
}

func (e *testEnv) activeBookingCount() int {
	n := 0
	for _, b := range e.store.data.bookings {
		if isActive(b.Status) {
			n++
		}
	}
	return n
}

func strptr(s string) *string { return &s }

func confirmedBooking(e *testEnv, start time.Time, group *uuid.UUID) models.ClassBooking {
	return models.ClassBooking{
		ID:               uuid.New(),
		StudentID:        e.student,
		TeacherID:        e.teacher,
		StartTime:        start,
		EndTime:          start.Add(SlotDuration),
		Status:           models.BookingConfirmed,
		RecurringGroupID: group,
	}
}
