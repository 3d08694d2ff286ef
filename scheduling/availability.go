package scheduling

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Slot is a derived bookable interval. Slots are recomputed on every
// query and never persisted.
type Slot struct {
	TeacherID uuid.UUID `json:"teacher_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Resolver computes the free slots of a teacher inside a date range:
// availability windows partitioned into fixed slots, minus active
// bookings and unexpired holds, minus anything inside the lead time.
type Resolver struct {
	store  Store
	policy *Policy
}

func NewResolver(store Store, policy *Policy) *Resolver {
	return &Resolver{store: store, policy: policy}
}

// Slots returns the available slots ordered by start time. An unknown
// teacher yields an empty result, not an error.
func (r *Resolver) Slots(ctx context.Context, teacherID uuid.UUID, from, to time.Time) ([]Slot, error) {
	const op = "scheduling.Resolver.Slots"

	if to.Before(from) {
		return nil, validationf("range end %s is before range start %s", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}

	windows, err := r.store.WindowsOverlapping(ctx, teacherID, from, to)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if len(windows) == 0 {
		return []Slot{}, nil
	}

	bookings, err := r.store.ActiveBookings(ctx, teacherID, from, to)
	if err != nil {
		return nil, storeErr(op, err)
	}
	holds, err := r.store.UnexpiredHolds(ctx, teacherID, from, to, r.policy.now())
	if err != nil {
		return nil, storeErr(op, err)
	}

	busy := make(map[int64]bool, len(bookings)+len(holds))
	for _, b := range bookings {
		busy[b.StartTime.Unix()] = true
	}
	for _, h := range holds {
		busy[h.SlotStart.Unix()] = true
	}

	seen := make(map[int64]bool)
	slots := []Slot{}
	for _, w := range windows {
		// Partition aligned to the window start; partial tail intervals
		// shorter than one slot are not bookable.
		for t := w.StartTime; !t.Add(SlotDuration).After(w.EndTime); t = t.Add(SlotDuration) {
			if t.Before(from) || t.Add(SlotDuration).After(to) {
				continue
			}
			key := t.Unix()
			if seen[key] || busy[key] {
				continue
			}
			if !r.policy.IsBookable(t) {
				continue
			}
			seen[key] = true
			slots = append(slots, Slot{TeacherID: teacherID, StartTime: t, EndTime: t.Add(SlotDuration)})
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].StartTime.Before(slots[j].StartTime) })
	return slots, nil
}
