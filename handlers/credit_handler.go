package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/edaline/tutorhub/database"
	"github.com/edaline/tutorhub/models"
)

func GetMyCreditBalance(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	balance, err := engine.Ledger.Balance(ctx, studentID)
	if err != nil {
		return schedulingError(c, err)
	}

	return c.JSON(fiber.Map{"credit_balance": balance})
}

func GetMyCreditHistory(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	var entries []models.CreditTransaction
	database.DB.Where("student_id = ?", studentID).
		Order("created_at desc").
		Limit(100).
		Find(&entries)

	return c.JSON(entries)
}
