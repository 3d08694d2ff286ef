package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/edaline/tutorhub/handlers"
	"github.com/edaline/tutorhub/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Post("/credits/grant", handlers.GrantCredits)
	admin.Post("/teachers/:teacherId/application", handlers.ManageTeacherApplication)
	admin.Get("/users", handlers.GetAllUsers)
	admin.Post("/users/:userId/toggle-status", handlers.ToggleUserStatus)
}
