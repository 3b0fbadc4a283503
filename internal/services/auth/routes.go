package auth

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/middleware"
)

// SetupRoutes регистрирует маршруты в Fiber
func (s *AuthService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/auth", middleware.OptionalAuth(s.verifier))

	api.Post("/register", s.RegisterHandler)
	api.Post("/login", s.LoginHandler)
	api.Post("/logout", s.LogoutHandler)

	// Требует токен: проверка внутри обработчика
	api.Get("/me", s.MeHandler)
}
