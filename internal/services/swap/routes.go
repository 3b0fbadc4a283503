package swap

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API обменов
func (s *SwapService) SetupRoutes(app *fiber.App) {
	// Все маршруты требуют авторизации
	api := app.Group("/api/requests", middleware.AuthMiddleware(s.verifier))

	api.Post("/", s.CreateRequest)
	api.Get("/", s.GetMyRequests)
	api.Get("/:id", s.GetRequest)
	api.Put("/:id", s.UpdateRequestStatus)
	api.Delete("/:id", s.DeleteRequest)
}
