package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edaline/tutorhub/database"
	"github.com/edaline/tutorhub/models"
)

type TeacherApplicationRequest struct {
	Headline string `json:"headline" validate:"required"`
	Bio      string `json:"bio" validate:"required"`
}

func ApplyToBeATeacher(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req TeacherApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var existing models.Teacher
	err := database.DB.Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You have already submitted an application."})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	application := models.Teacher{
		UserID:   userID,
		Headline: &req.Headline,
		Bio:      &req.Bio,
	}
	if err := database.DB.Create(&application).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create application"})
	}

	return c.Status(fiber.StatusCreated).JSON(application)
}

func ListActiveTeachers(c *fiber.Ctx) error {
	var teachers []models.Teacher
	database.DB.Preload("User").
		Where("status = ?", models.TeacherStatusActive).
		Find(&teachers)

	return c.JSON(teachers)
}

type CreateAvailabilityWindowRequest struct {
	StartTime string `json:"start_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime   string `json:"end_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// CreateAvailabilityWindow declares an open interval. Bookable slots are
// derived from windows by the resolver; the window itself is opaque to
// students.
func CreateAvailabilityWindow(c *fiber.Ctx) error {
	teacherID := currentUserID(c)

	var req CreateAvailabilityWindowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	startTime, _ := time.Parse(time.RFC3339, req.StartTime)
	endTime, _ := time.Parse(time.RFC3339, req.EndTime)

	if !endTime.After(startTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Start time must be before end time"})
	}

	window := models.AvailabilityWindow{
		TeacherID: teacherID,
		StartTime: startTime,
		EndTime:   endTime,
	}
	if err := database.DB.Create(&window).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create availability window"})
	}

	return c.Status(fiber.StatusCreated).JSON(window)
}

func GetMyAvailabilityWindows(c *fiber.Ctx) error {
	teacherID := currentUserID(c)

	var windows []models.AvailabilityWindow
	database.DB.Where("teacher_id = ?", teacherID).
		Order("start_time asc").
		Find(&windows)

	return c.JSON(windows)
}

func DeleteAvailabilityWindow(c *fiber.Ctx) error {
	teacherID := currentUserID(c)
	windowID := c.Params("windowId")

	res := database.DB.Where("id = ? AND teacher_id = ?", windowID, teacherID).
		Delete(&models.AvailabilityWindow{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete availability window"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Availability window not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetTeacherAvailability returns the teacher's free one-hour slots inside
// the requested range: declared windows minus booked and held slots,
// minus anything inside the booking lead time.
func GetTeacherAvailability(c *fiber.Ctx) error {
	teacherID, err := uuid.Parse(c.Params("teacherId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher id"})
	}

	from := time.Now()
	to := from.AddDate(0, 0, 14)
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid 'from' timestamp"})
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid 'to' timestamp"})
		}
		to = t
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	slots, err := engine.Resolver.Slots(ctx, teacherID, from, to)
	if err != nil {
		return schedulingError(c, err)
	}

	return c.JSON(slots)
}
