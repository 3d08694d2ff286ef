package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edaline/tutorhub/models"
)

// memStore is the in-memory Store the engine tests run on. Transact is
// serializable (one global mutex) and rolls back by snapshot, matching
// the transactional guarantees of the Postgres store closely enough for
// the invariant tests.
type memStore struct {
	mu   *sync.Mutex
	data *memData
	inTx bool
}

type memData struct {
	teachers map[uuid.UUID]bool
	windows  []models.AvailabilityWindow
	bookings map[uuid.UUID]*models.ClassBooking
	holds    map[uuid.UUID]*models.ReservationHold
	balances map[uuid.UUID]int
	entries  []models.CreditTransaction
}

func newMemStore() *memStore {
	return &memStore{
		mu: &sync.Mutex{},
		data: &memData{
			teachers: make(map[uuid.UUID]bool),
			bookings: make(map[uuid.UUID]*models.ClassBooking),
			holds:    make(map[uuid.UUID]*models.ReservationHold),
			balances: make(map[uuid.UUID]int),
		},
	}
}

func (s *memStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (d *memData) clone() *memData {
	c := &memData{
		teachers: make(map[uuid.UUID]bool, len(d.teachers)),
		windows:  append([]models.AvailabilityWindow(nil), d.windows...),
		bookings: make(map[uuid.UUID]*models.ClassBooking, len(d.bookings)),
		holds:    make(map[uuid.UUID]*models.ReservationHold, len(d.holds)),
		balances: make(map[uuid.UUID]int, len(d.balances)),
		entries:  append([]models.CreditTransaction(nil), d.entries...),
	}
	for k, v := range d.teachers {
		c.teachers[k] = v
	}
	for k, v := range d.bookings {
		b := *v
		c.bookings[k] = &b
	}
	for k, v := range d.holds {
		h := *v
		c.holds[k] = &h
	}
	for k, v := range d.balances {
		c.balances[k] = v
	}
	return c
}

func (s *memStore) Transact(_ context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &memStore{mu: s.mu, data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

// fixture helpers

func (s *memStore) addTeacher(id uuid.UUID) {
	s.data.teachers[id] = true
}

func (s *memStore) addWindow(teacherID uuid.UUID, start, end time.Time) {
	s.data.windows = append(s.data.windows, models.AvailabilityWindow{
		ID:        uuid.New(),
		TeacherID: teacherID,
		StartTime: start,
		EndTime:   end,
	})
}

func (s *memStore) setBalance(studentID uuid.UUID, n int) {
	s.data.balances[studentID] = n
}

func (s *memStore) addBooking(b models.ClassBooking) uuid.UUID {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	s.data.bookings[b.ID] = &b
	return b.ID
}

// Store implementation

func (s *memStore) ActiveTeacher(_ context.Context, teacherID uuid.UUID) (bool, error) {
	defer s.lock()()
	return s.data.teachers[teacherID], nil
}

func (s *memStore) WindowsOverlapping(_ context.Context, teacherID uuid.UUID, from, to time.Time) ([]models.AvailabilityWindow, error) {
	defer s.lock()()
	var out []models.AvailabilityWindow
	for _, w := range s.data.windows {
		if w.TeacherID == teacherID && w.StartTime.Before(to) && w.EndTime.After(from) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *memStore) BookingByID(_ context.Context, id uuid.UUID) (*models.ClassBooking, error) {
	defer s.lock()()
	b, ok := s.data.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (s *memStore) ActiveBookings(_ context.Context, teacherID uuid.UUID, from, to time.Time) ([]models.ClassBooking, error) {
	defer s.lock()()
	var out []models.ClassBooking
	for _, b := range s.data.bookings {
		if b.TeacherID == teacherID && isActive(b.Status) && b.StartTime.Before(to) && b.EndTime.After(from) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *memStore) ActiveBookingAt(_ context.Context, teacherID uuid.UUID, start time.Time) (*models.ClassBooking, error) {
	defer s.lock()()
	for _, b := range s.data.bookings {
		if b.TeacherID == teacherID && b.StartTime.Equal(start) && isActive(b.Status) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) GroupBookings(_ context.Context, groupID uuid.UUID) ([]models.ClassBooking, error) {
	defer s.lock()()
	var out []models.ClassBooking
	for _, b := range s.data.bookings {
		if b.RecurringGroupID != nil && *b.RecurringGroupID == groupID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *memStore) InsertBooking(_ context.Context, b *models.ClassBooking) error {
	defer s.lock()()
	for _, other := range s.data.bookings {
		if other.TeacherID == b.TeacherID && other.StartTime.Equal(b.StartTime) && isActive(other.Status) {
			return ErrDuplicateKey
		}
	}
	cp := *b
	s.data.bookings[b.ID] = &cp
	return nil
}

func (s *memStore) UpdateBookingStatus(_ context.Context, id uuid.UUID, from []models.BookingStatus, to models.BookingStatus) (bool, error) {
	defer s.lock()()
	b, ok := s.data.bookings[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if b.Status == f {
			b.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) UpdateBookingSlot(_ context.Context, id uuid.UUID, start, end time.Time) error {
	defer s.lock()()
	b, ok := s.data.bookings[id]
	if !ok {
		return nil
	}
	for _, other := range s.data.bookings {
		if other.ID != id && other.TeacherID == b.TeacherID && other.StartTime.Equal(start) && isActive(other.Status) {
			return ErrDuplicateKey
		}
	}
	b.StartTime, b.EndTime = start, end
	return nil
}

func (s *memStore) UpdateBookingNotes(_ context.Context, id uuid.UUID, notes *string) error {
	defer s.lock()()
	if b, ok := s.data.bookings[id]; ok {
		b.Notes = notes
	}
	return nil
}

func (s *memStore) HoldByID(_ context.Context, id uuid.UUID) (*models.ReservationHold, error) {
	defer s.lock()()
	h, ok := s.data.holds[id]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

func (s *memStore) UnexpiredHoldAt(_ context.Context, teacherID uuid.UUID, start, now time.Time) (*models.ReservationHold, error) {
	defer s.lock()()
	for _, h := range s.data.holds {
		if h.TeacherID == teacherID && h.SlotStart.Equal(start) && h.ExpiresAt.After(now) {
			cp := *h
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) UnexpiredHolds(_ context.Context, teacherID uuid.UUID, from, to, now time.Time) ([]models.ReservationHold, error) {
	defer s.lock()()
	var out []models.ReservationHold
	for _, h := range s.data.holds {
		if h.TeacherID == teacherID && h.ExpiresAt.After(now) && h.SlotStart.Before(to) && h.SlotEnd.After(from) {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (s *memStore) InsertHold(_ context.Context, h *models.ReservationHold) error {
	defer s.lock()()
	for _, other := range s.data.holds {
		if other.TeacherID == h.TeacherID && other.SlotStart.Equal(h.SlotStart) {
			return ErrDuplicateKey
		}
	}
	cp := *h
	s.data.holds[h.ID] = &cp
	return nil
}

func (s *memStore) DeleteHold(_ context.Context, id uuid.UUID) (bool, error) {
	defer s.lock()()
	if _, ok := s.data.holds[id]; !ok {
		return false, nil
	}
	delete(s.data.holds, id)
	return true, nil
}

func (s *memStore) PurgeExpiredHolds(_ context.Context, teacherID uuid.UUID, start, now time.Time) error {
	defer s.lock()()
	for id, h := range s.data.holds {
		if h.TeacherID == teacherID && h.SlotStart.Equal(start) && !h.ExpiresAt.After(now) {
			delete(s.data.holds, id)
		}
	}
	return nil
}

func (s *memStore) DeleteExpiredHolds(_ context.Context, now time.Time) (int64, error) {
	defer s.lock()()
	var n int64
	for id, h := range s.data.holds {
		if !h.ExpiresAt.After(now) {
			delete(s.data.holds, id)
			n++
		}
	}
	return n, nil
}

func (s *memStore) CreditBalance(_ context.Context, studentID uuid.UUID) (int, error) {
	defer s.lock()()
	return s.data.balances[studentID], nil
}

func (s *memStore) AdjustCredits(_ context.Context, studentID uuid.UUID, delta int) (bool, error) {
	defer s.lock()()
	if s.data.balances[studentID]+delta < 0 {
		return false, nil
	}
	s.data.balances[studentID] += delta
	return true, nil
}

func (s *memStore) InsertCreditTransaction(_ context.Context, t *models.CreditTransaction) error {
	defer s.lock()()
	s.data.entries = append(s.data.entries, *t)
	return nil
}

func isActive(status models.BookingStatus) bool {
	return status == models.BookingPending || status == models.BookingConfirmed
}
