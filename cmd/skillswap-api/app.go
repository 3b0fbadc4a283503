package main

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rajivgeraev/skillswap-api/internal/apperrors"
	"github.com/rajivgeraev/skillswap-api/internal/auth"
	"github.com/rajivgeraev/skillswap-api/internal/blob"
	"github.com/rajivgeraev/skillswap-api/internal/config"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/services/admin"
	authservice "github.com/rajivgeraev/skillswap-api/internal/services/auth"
	"github.com/rajivgeraev/skillswap-api/internal/services/chat"
	"github.com/rajivgeraev/skillswap-api/internal/services/directory"
	"github.com/rajivgeraev/skillswap-api/internal/services/swap"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

// deps — всё, что нужно для сборки приложения
type deps struct {
	cfg      *config.Config
	store    db.Store
	verifier *auth.Verifier
	hasher   *utils.PasswordHasher
	limiter  *middleware.RateLimiter
	blobs    blob.Store
	log      zerolog.Logger
}

// newApp создаёт экземпляр Fiber со всеми маршрутами
func newApp(d deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Skill Swap API",
		ErrorHandler: errorHandler(d.log),
		// Запас сверх лимита фото на заголовки multipart
		BodyLimit: int(d.cfg.MaxUploadBytes) + 1<<20,
	})

	// Добавляем middleware
	app.Use(recover.New())
	if d.cfg.IsDevelopment() {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.cfg.AllowedOrigins(),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))
	app.Use(middleware.Metrics())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/api/health", func(c fiber.Ctx) error {
		ctx, cancel := db.GetContext()
		defer cancel()

		if err := d.store.Ping(ctx); err != nil {
			d.log.Error().Err(err).Msg("база данных недоступна")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy"})
		}
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	// Создаём сервисы
	authService := authservice.NewAuthService(d.store, d.verifier, d.hasher, d.limiter, d.log)
	directoryService := directory.NewDirectoryService(d.store, d.verifier, d.blobs, d.hasher, d.cfg.MaxUploadBytes, d.log)
	swapService := swap.NewSwapService(d.store, d.verifier, d.log)
	chatService := chat.NewChatService(d.store, d.verifier, d.limiter, d.log)
	adminService := admin.NewAdminService(d.store, d.verifier, directoryService, swapService, d.log)

	// Регистрируем маршруты
	authService.SetupRoutes(app)
	directoryService.SetupRoutes(app)
	swapService.SetupRoutes(app)
	chatService.SetupRoutes(app)
	adminService.SetupRoutes(app)

	return app
}

// errorHandler превращает ошибки в ответ {"error": "..."}.
// Причины внутренних ошибок пишутся в лог, клиенту уходит общее сообщение.
func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var appErr *apperrors.Error
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &appErr):
			code = appErr.Status()
			if code != fiber.StatusInternalServerError {
				message = appErr.PublicMessage()
			}
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("ошибка обработки запроса")
		}

		return c.Status(code).JSON(fiber.Map{
			"error": message,
		})
	}
}
