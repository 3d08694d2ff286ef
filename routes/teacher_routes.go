package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/edaline/tutorhub/handlers"
	"github.com/edaline/tutorhub/middleware"
)

func TeacherRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/teachers", handlers.ListActiveTeachers)
	api.Get("/teachers/:teacherId/availability", handlers.GetTeacherAvailability)

	teacher := api.Group("/teacher", middleware.Protected())
	teacher.Post("/apply", handlers.ApplyToBeATeacher)
	teacher.Get("/bookings", middleware.TeacherRequired(), handlers.GetMyTeacherBookings)

	availability := teacher.Group("/availability", middleware.TeacherRequired())
	availability.Post("", handlers.CreateAvailabilityWindow)
	availability.Get("/me", handlers.GetMyAvailabilityWindows)
	availability.Delete("/:windowId", handlers.DeleteAvailabilityWindow)
}
