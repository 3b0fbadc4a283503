package admin

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/middleware"
)

// SetupRoutes настраивает маршруты администратора.
// Права администратора проверяются в каждой операции.
func (s *AdminService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/admin", middleware.AuthMiddleware(s.verifier))

	api.Get("/users", s.GetAllUsers)
	api.Put("/users/:id/ban", s.BanUser)
	api.Get("/stats", s.GetStats)
	api.Get("/requests", s.GetAllRequests)
	api.Delete("/requests/:id", s.DeleteAnyRequest)
}
