package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/apperrors"
	"github.com/rajivgeraev/skillswap-api/internal/auth"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/models"
)

const userKey = "user"

// bearerToken достаёт токен из заголовка Authorization: Bearer <token>
func bearerToken(c fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func resolve(c fiber.Ctx, verifier *auth.Verifier) *models.User {
	token := bearerToken(c)
	if token == "" {
		return nil
	}

	ctx, cancel := db.GetContext()
	defer cancel()
	return verifier.Resolve(ctx, token)
}

// AuthMiddleware пропускает запрос дальше только с действующим токеном
// незабаненного пользователя
func AuthMiddleware(verifier *auth.Verifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		user := resolve(c, verifier)
		if user == nil {
			return apperrors.Unauthorized("Authentication required")
		}

		// Добавляем пользователя в контекст
		c.Locals(userKey, user)
		return c.Next()
	}
}

// OptionalAuth добавляет пользователя в контекст, если токен действителен,
// и пропускает анонимные запросы
func OptionalAuth(verifier *auth.Verifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		if user := resolve(c, verifier); user != nil {
			c.Locals(userKey, user)
		}
		return c.Next()
	}
}

// CurrentUser возвращает пользователя, установленного middleware, или nil
func CurrentUser(c fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

// RequireUser возвращает текущего пользователя или ошибку 401
func RequireUser(c fiber.Ctx) (*models.User, error) {
	user := CurrentUser(c)
	if user == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	return user, nil
}
