package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edaline/tutorhub/models"
	"github.com/edaline/tutorhub/scheduling"
)

// Store implements scheduling.Store on GORM/Postgres. Uniqueness races
// surface as gorm.ErrDuplicatedKey (TranslateError) and are mapped to
// scheduling.ErrDuplicateKey; balance changes are conditional updates so
// concurrent cancel+book on one account cannot lose a write.
type Store struct {
	db   *gorm.DB
	inTx bool
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Transact(ctx context.Context, fn func(tx scheduling.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, inTx: true})
	})
}

func (s *Store) ActiveTeacher(ctx context.Context, teacherID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Teacher{}).
		Where("user_id = ? AND status = ?", teacherID, models.TeacherStatusActive).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) WindowsOverlapping(ctx context.Context, teacherID uuid.UUID, from, to time.Time) ([]models.AvailabilityWindow, error) {
	var windows []models.AvailabilityWindow
	err := s.db.WithContext(ctx).
		Where("teacher_id = ? AND start_time < ? AND end_time > ?", teacherID, to, from).
		Order("start_time asc").
		Find(&windows).Error
	return windows, err
}

func (s *Store) BookingByID(ctx context.Context, id uuid.UUID) (*models.ClassBooking, error) {
	var b models.ClassBooking
	err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) ActiveBookings(ctx context.Context, teacherID uuid.UUID, from, to time.Time) ([]models.ClassBooking, error) {
	var bookings []models.ClassBooking
	err := s.db.WithContext(ctx).
		Where("teacher_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			teacherID, models.ActiveBookingStatuses, to, from).
		Find(&bookings).Error
	return bookings, err
}

func (s *Store) ActiveBookingAt(ctx context.Context, teacherID uuid.UUID, start time.Time) (*models.ClassBooking, error) {
	q := s.db.WithContext(ctx)
	if s.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var b models.ClassBooking
	err := q.Where("teacher_id = ? AND start_time = ? AND status IN ?",
		teacherID, start, models.ActiveBookingStatuses).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) GroupBookings(ctx context.Context, groupID uuid.UUID) ([]models.ClassBooking, error) {
	var bookings []models.ClassBooking
	err := s.db.WithContext(ctx).
		Where("recurring_group_id = ?", groupID).
		Order("start_time asc").
		Find(&bookings).Error
	return bookings, err
}

func (s *Store) InsertBooking(ctx context.Context, b *models.ClassBooking) error {
	err := s.db.WithContext(ctx).Create(b).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return scheduling.ErrDuplicateKey
	}
	return err
}

func (s *Store) UpdateBookingStatus(ctx context.Context, id uuid.UUID, from []models.BookingStatus, to models.BookingStatus) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.ClassBooking{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}

func (s *Store) UpdateBookingSlot(ctx context.Context, id uuid.UUID, start, end time.Time) error {
	err := s.db.WithContext(ctx).Model(&models.ClassBooking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"start_time": start, "end_time": end}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return scheduling.ErrDuplicateKey
	}
	return err
}

func (s *Store) UpdateBookingNotes(ctx context.Context, id uuid.UUID, notes *string) error {
	return s.db.WithContext(ctx).Model(&models.ClassBooking{}).
		Where("id = ?", id).
		Update("notes", notes).Error
}

func (s *Store) HoldByID(ctx context.Context, id uuid.UUID) (*models.ReservationHold, error) {
	var h models.ReservationHold
	err := s.db.WithContext(ctx).First(&h, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *Store) UnexpiredHoldAt(ctx context.Context, teacherID uuid.UUID, start, now time.Time) (*models.ReservationHold, error) {
	q := s.db.WithContext(ctx)
	if s.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var h models.ReservationHold
	err := q.Where("teacher_id = ? AND slot_start = ? AND expires_at > ?", teacherID, start, now).
		First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *Store) UnexpiredHolds(ctx context.Context, teacherID uuid.UUID, from, to, now time.Time) ([]models.ReservationHold, error) {
	var holds []models.ReservationHold
	err := s.db.WithContext(ctx).
		Where("teacher_id = ? AND expires_at > ? AND slot_start < ? AND slot_end > ?",
			teacherID, now, to, from).
		Find(&holds).Error
	return holds, err
}

func (s *Store) InsertHold(ctx context.Context, h *models.ReservationHold) error {
	err := s.db.WithContext(ctx).Create(h).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return scheduling.ErrDuplicateKey
	}
	return err
}

func (s *Store) DeleteHold(ctx context.Context, id uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&models.ReservationHold{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (s *Store) PurgeExpiredHolds(ctx context.Context, teacherID uuid.UUID, start, now time.Time) error {
	return s.db.WithContext(ctx).
		Where("teacher_id = ? AND slot_start = ? AND expires_at <= ?", teacherID, start, now).
		Delete(&models.ReservationHold{}).Error
}

func (s *Store) DeleteExpiredHolds(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&models.ReservationHold{})
	return res.RowsAffected, res.Error
}

func (s *Store) CreditBalance(ctx context.Context, studentID uuid.UUID) (int, error) {
	var balance int
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", studentID).
		Select("credit_balance").
		Scan(&balance).Error
	return balance, err
}

func (s *Store) AdjustCredits(ctx context.Context, studentID uuid.UUID, delta int) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND credit_balance + ? >= 0", studentID, delta).
		Update("credit_balance", gorm.Expr("credit_balance + ?", delta))
	return res.RowsAffected > 0, res.Error
}

func (s *Store) InsertCreditTransaction(ctx context.Context, t *models.CreditTransaction) error {
	return s.db.WithContext(ctx).Create(t).Error
}
