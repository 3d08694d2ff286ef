package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/edaline/tutorhub/handlers"
	"github.com/edaline/tutorhub/middleware"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	holds := api.Group("/holds", middleware.Protected())
	holds.Post("", handlers.CreateHold)
	holds.Delete("/:holdId", handlers.ReleaseHold)
	holds.Post("/:holdId/confirm", handlers.ConfirmHold)

	booking := api.Group("/bookings", middleware.Protected())
	booking.Get("/me", handlers.GetMyBookings)
	booking.Post("", handlers.CreateBooking)
	booking.Post("/series", handlers.CreateSeries)
	booking.Post("/:bookingId/cancel", handlers.CancelBooking)
	booking.Patch("/:bookingId", handlers.EditBooking)

	credits := api.Group("/credits", middleware.Protected())
	credits.Get("/me", handlers.GetMyCreditBalance)
	credits.Get("/me/history", handlers.GetMyCreditHistory)
}
