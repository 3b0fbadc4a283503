package directory

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API пользователей
func (s *DirectoryService) SetupRoutes(app *fiber.App) {
	// Токен необязателен для чтения; изменения проверяют пользователя в обработчиках
	api := app.Group("/api/users", middleware.OptionalAuth(s.verifier))

	api.Get("/", s.ListUsers)
	api.Get("/search", s.SearchUsers)
	api.Get("/:id", s.GetUser)
	api.Put("/:id", s.UpdateUser)
	api.Post("/:id/photo", s.UploadUserPhoto)
	api.Get("/:id/photo/params", s.GetPhotoUploadParams)
	api.Put("/:id/password", s.ChangeUserPassword)
}
