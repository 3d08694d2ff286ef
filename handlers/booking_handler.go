package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/edaline/tutorhub/database"
	"github.com/edaline/tutorhub/models"
	"github.com/edaline/tutorhub/notifications"
	"github.com/edaline/tutorhub/scheduling"
)

type CreateHoldRequest struct {
	TeacherID  string `json:"teacher_id" validate:"required,uuid"`
	SlotStart  string `json:"slot_start" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	SlotEnd    string `json:"slot_end" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	TTLSeconds int    `json:"ttl_seconds,omitempty"`
}

// CreateHold claims a slot for the duration of a guided signup flow.
func CreateHold(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	var req CreateHoldRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	teacherID, _ := uuid.Parse(req.TeacherID)
	slotStart, _ := time.Parse(time.RFC3339, req.SlotStart)
	slotEnd, _ := time.Parse(time.RFC3339, req.SlotEnd)

	ctx, cancel := requestContext(c)
	defer cancel()

	hold, err := engine.Holds.Acquire(ctx, studentID, teacherID, slotStart, slotEnd, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		return schedulingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"hold_id":    hold.ID,
		"expires_at": hold.ExpiresAt,
	})
}

// ReleaseHold drops a hold; releasing an unknown or expired hold is a
// no-op so retried requests stay safe.
func ReleaseHold(c *fiber.Ctx) error {
	holdID, err := uuid.Parse(c.Params("holdId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid hold id"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := engine.Holds.Release(ctx, holdID); err != nil {
		return schedulingError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type ConfirmHoldRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// ConfirmHold converts a live hold into a confirmed booking.
func ConfirmHold(c *fiber.Ctx) error {
	studentID := currentUserID(c)
	holdID, err := uuid.Parse(c.Params("holdId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid hold id"})
	}

	var req ConfirmHoldRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
	}

	var held models.ReservationHold
	if err := database.DB.First(&held, "id = ?", holdID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reservation hold not found"})
	}
	if held.StudentID != studentID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your hold"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	booking, err := engine.Holds.Confirm(ctx, holdID, req.Notes)
	if err != nil {
		return schedulingError(c, err)
	}

	go notifyBookingConfirmed(booking)

	return c.Status(fiber.StatusCreated).JSON(booking)
}

type CreateBookingRequest struct {
	TeacherID string  `json:"teacher_id" validate:"required,uuid"`
	SlotStart string  `json:"slot_start" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	SlotEnd   string  `json:"slot_end" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Notes     *string `json:"notes,omitempty"`
}

// CreateBooking schedules a class directly, debiting one credit.
func CreateBooking(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	teacherID, _ := uuid.Parse(req.TeacherID)
	slotStart, _ := time.Parse(time.RFC3339, req.SlotStart)
	slotEnd, _ := time.Parse(time.RFC3339, req.SlotEnd)

	ctx, cancel := requestContext(c)
	defer cancel()

	booking, err := engine.Scheduler.Schedule(ctx, scheduling.ScheduleRequest{
		StudentID: studentID,
		TeacherID: teacherID,
		SlotStart: slotStart,
		SlotEnd:   slotEnd,
		Notes:     req.Notes,
	})
	if err != nil {
		return schedulingError(c, err)
	}

	go notifyBookingConfirmed(booking)

	return c.Status(fiber.StatusCreated).JSON(booking)
}

type CreateSeriesRequest struct {
	TeacherID  string   `json:"teacher_id" validate:"required,uuid"`
	SlotStarts []string `json:"slot_starts" validate:"required,min=1,dive,datetime=2006-01-02T15:04:05Z07:00"`
	Notes      *string  `json:"notes,omitempty"`
}

// CreateSeries books a recurring group of one-hour occurrences. All or
// nothing: a single failed occurrence aborts and refunds the rest.
func CreateSeries(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	var req CreateSeriesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	teacherID, _ := uuid.Parse(req.TeacherID)
	occurrences := make([]scheduling.OccurrenceSpec, 0, len(req.SlotStarts))
	for _, raw := range req.SlotStarts {
		start, _ := time.Parse(time.RFC3339, raw)
		occurrences = append(occurrences, scheduling.OccurrenceSpec{
			SlotStart: start,
			SlotEnd:   start.Add(scheduling.SlotDuration),
		})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	groupID, bookings, err := engine.Groups.CreateSeries(ctx, studentID, teacherID, occurrences, req.Notes)
	if err != nil {
		return schedulingError(c, err)
	}

	if len(bookings) > 0 {
		go notifyBookingConfirmed(bookings[0])
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"recurring_group_id": groupID,
		"bookings":           bookings,
	})
}

type CancelBookingRequest struct {
	Scope string `json:"scope,omitempty" validate:"omitempty,oneof=single series"`
	Force bool   `json:"force,omitempty"`
}

// CancelBooking cancels one booking or the future members of its series.
// A late single cancellation returns requires_confirmation until the
// caller re-submits with force=true.
func CancelBooking(c *fiber.Ctx) error {
	studentID := currentUserID(c)
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req CancelBookingRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	var booking models.ClassBooking
	if err := database.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.StudentID != studentID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your booking"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if req.Scope == "series" {
		if booking.RecurringGroupID == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Booking is not part of a recurring series"})
		}
		count, err := engine.Groups.CancelSeries(ctx, *booking.RecurringGroupID, time.Now())
		if err != nil {
			return schedulingError(c, err)
		}
		go notifyBookingCancelled(&booking, fmt.Sprintf("%d upcoming classes in your series were cancelled.", count))
		return c.JSON(fiber.Map{"cancelled": count})
	}

	refunded, err := engine.Scheduler.Cancel(ctx, bookingID, req.Force)
	if err != nil {
		return schedulingError(c, err)
	}

	go notifyBookingCancelled(&booking, "Your class was cancelled.")

	return c.JSON(fiber.Map{"refunded": refunded})
}

type EditBookingRequest struct {
	StartTime *string `json:"start_time,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime   *string `json:"end_time,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Notes     *string `json:"notes,omitempty"`
}

// EditBooking updates a booking's slot or notes. Like cancellation, edits
// are rejected inside 24 hours of class start.
func EditBooking(c *fiber.Ctx) error {
	studentID := currentUserID(c)
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req EditBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var booking models.ClassBooking
	if err := database.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.StudentID != studentID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your booking"})
	}

	edit := scheduling.EditRequest{Notes: req.Notes}
	if req.StartTime != nil {
		t, _ := time.Parse(time.RFC3339, *req.StartTime)
		edit.StartTime = &t
	}
	if req.EndTime != nil {
		t, _ := time.Parse(time.RFC3339, *req.EndTime)
		edit.EndTime = &t
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := engine.Scheduler.Reschedule(ctx, bookingID, edit)
	if err != nil {
		return schedulingError(c, err)
	}
	return c.JSON(updated)
}

func GetMyBookings(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	var bookings []models.ClassBooking
	database.DB.
		Preload("Teacher").
		Where("student_id = ?", studentID).
		Order("start_time desc").
		Find(&bookings)

	return c.JSON(bookings)
}

func GetMyTeacherBookings(c *fiber.Ctx) error {
	teacherID := currentUserID(c)

	var bookings []models.ClassBooking
	database.DB.
		Preload("Student").
		Where("teacher_id = ?", teacherID).
		Order("start_time desc").
		Find(&bookings)

	return c.JSON(bookings)
}

// notifyBookingConfirmed emails both parties after the commit. Failures
// here never touch the committed reservation.
func notifyBookingConfirmed(b *models.ClassBooking) {
	var student, teacher models.User
	if err := database.DB.First(&student, "id = ?", b.StudentID).Error; err != nil {
		return
	}
	if err := database.DB.First(&teacher, "id = ?", b.TeacherID).Error; err != nil {
		return
	}
	when := b.StartTime.Format(time.RFC1123)
	notifications.SendEmail(student.FullName, student.Email, "Your Booking is Confirmed!",
		fmt.Sprintf("<h1>Booking Confirmed</h1><p>Your class on %s has been booked.</p>", when))
	notifications.SendEmail(teacher.FullName, teacher.Email, "You Have a New Booking!",
		fmt.Sprintf("<h1>New Booking</h1><p>A student has booked your %s slot.</p>", when))
}

func notifyBookingCancelled(b *models.ClassBooking, message string) {
	var teacher models.User
	if err := database.DB.First(&teacher, "id = ?", b.TeacherID).Error; err != nil {
		return
	}
	notifications.SendEmail(teacher.FullName, teacher.Email, "A Booking Was Cancelled",
		"<h1>Booking Cancelled</h1><p>"+message+"</p>")
}
