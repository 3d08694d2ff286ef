package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/edaline/tutorhub/database"
	"github.com/edaline/tutorhub/models"
)

type GrantCreditsRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	Amount    int    `json:"amount" validate:"required,min=1"`
}

// GrantCredits tops up a student's balance through the ledger. This is
// the only inbound credit path besides cancellation refunds.
func GrantCredits(c *fiber.Ctx) error {
	var req GrantCreditsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	studentID, _ := uuid.Parse(req.StudentID)
	var student models.User
	if err := database.DB.First(&student, "id = ?", studentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := engine.Ledger.Credit(ctx, studentID, req.Amount, models.CreditReasonGrant, nil); err != nil {
		return schedulingError(c, err)
	}

	balance, err := engine.Ledger.Balance(ctx, studentID)
	if err != nil {
		return schedulingError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Credits granted", "credit_balance": balance})
}

type ManageApplicationRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
}

func ManageTeacherApplication(c *fiber.Ctx) error {
	teacherID := c.Params("teacherId")

	var req ManageApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var teacher models.Teacher
	if err := database.DB.Where("user_id = ?", teacherID).First(&teacher).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Application not found"})
	}

	status := models.TeacherStatusSuspended
	role := "student"
	if req.Action == "approve" {
		status = models.TeacherStatusActive
		role = "teacher"
	}

	if err := database.DB.Model(&teacher).Update("status", status).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update application"})
	}
	database.DB.Model(&models.User{}).Where("id = ?", teacherID).Update("role", role)

	return c.JSON(fiber.Map{"message": "Application " + req.Action + "d"})
}

func GetAllUsers(c *fiber.Ctx) error {
	var users []models.User
	database.DB.Order("created_at desc").Find(&users)
	return c.JSON(users)
}

func ToggleUserStatus(c *fiber.Ctx) error {
	userID := c.Params("userId")

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	user.IsActive = !user.IsActive
	if err := database.DB.Model(&user).Update("is_active", user.IsActive).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}

	return c.JSON(fiber.Map{"message": "User status updated", "is_active": user.IsActive})
}
