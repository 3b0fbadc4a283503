package chat

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API чатов
func (s *ChatService) SetupRoutes(app *fiber.App) {
	// Группа для API чатов, все маршруты требуют авторизации
	api := app.Group("/api/chat", middleware.AuthMiddleware(s.verifier))

	// Чат по ID предложения обмена
	api.Get("/room/:requestId", s.GetRoom)

	// Все чаты пользователя
	api.Get("/user/:userId", s.GetUserChats)

	// Сообщения чата
	api.Get("/:roomId", s.GetChatMessages)
	api.Post("/:roomId", s.SendMessage)
}
