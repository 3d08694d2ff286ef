package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/edaline/tutorhub/scheduling"
)

var engine *scheduling.Engine

// SetEngine wires the scheduling engine into the HTTP handlers. Called
// once from main before routes are registered.
func SetEngine(e *scheduling.Engine) {
	engine = e
}

// requestTimeout bounds every store-touching call made from a handler.
const requestTimeout = 5 * time.Second

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), requestTimeout)
}

func currentUserID(c *fiber.Ctx) uuid.UUID {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	id, _ := uuid.Parse(claims["user_id"].(string))
	return id
}

// schedulingError maps the engine's typed errors onto HTTP statuses.
func schedulingError(c *fiber.Ctx, err error) error {
	var ve *scheduling.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Reason})
	case errors.Is(err, scheduling.ErrLeadTimeViolation):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "The requested time is inside the minimum booking lead time"})
	case errors.Is(err, scheduling.ErrInsufficientCredits):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "Insufficient credit balance"})
	case errors.Is(err, scheduling.ErrTeacherUnavailable):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher is not available for the requested slot"})
	case errors.Is(err, scheduling.ErrSlotConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "This slot is no longer available"})
	case errors.Is(err, scheduling.ErrHoldExpired):
		return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": "The reservation hold has expired"})
	case errors.Is(err, scheduling.ErrHoldNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reservation hold not found"})
	case errors.Is(err, scheduling.ErrBookingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	case errors.Is(err, scheduling.ErrRequiresConfirmation):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"requires_confirmation": true,
			"message":               "Cancelling this close to the class forfeits the credit. Re-submit with force=true to confirm.",
		})
	case errors.Is(err, scheduling.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Booking is already cancelled or completed"})
	case errors.Is(err, scheduling.ErrStoreTimeout):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Temporary storage failure, please retry"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
