package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/rajivgeraev/skillswap-api/internal/apperrors"
	"github.com/rajivgeraev/skillswap-api/internal/auth"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/metrics"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

// AuthService – структура для регистрации и входа пользователей
type AuthService struct {
	store    db.Store
	verifier *auth.Verifier
	hasher   *utils.PasswordHasher
	limiter  *middleware.RateLimiter
	validate *validator.Validate
	log      zerolog.Logger
}

// NewAuthService – конструктор AuthService
func NewAuthService(store db.Store, verifier *auth.Verifier, hasher *utils.PasswordHasher, limiter *middleware.RateLimiter, log zerolog.Logger) *AuthService {
	return &AuthService{
		store:    store,
		verifier: verifier,
		hasher:   hasher,
		limiter:  limiter,
		validate: utils.NewValidator(),
		log:      log,
	}
}

// RegisterInput — данные регистрации
type RegisterInput struct {
	Email         string   `json:"email" validate:"required,email"`
	Password      string   `json:"password" validate:"required,min=6,max=72"`
	Name          string   `json:"name" validate:"required"`
	Location      string   `json:"location"`
	Availability  string   `json:"availability"`
	SkillsOffered []string `json:"skills_offered"`
	SkillsWanted  []string `json:"skills_wanted"`
	IsPublic      *bool    `json:"is_public"`
}

// LoginInput — данные для входа
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создаёт обычного пользователя и выпускает для него токен
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := utils.ValidateStruct(s.validate, in); err != nil {
		return nil, "", err
	}
	if err := utils.CheckPasswordLength(in.Password); err != nil {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("ошибка хеширования пароля")
		return nil, "", apperrors.Wrap(err, "Failed to register user")
	}

	user := &models.User{
		Email:         in.Email,
		PasswordHash:  hash,
		Name:          in.Name,
		Location:      in.Location,
		Availability:  in.Availability,
		SkillsOffered: in.SkillsOffered,
		SkillsWanted:  in.SkillsWanted,
		IsPublic:      in.IsPublic == nil || *in.IsPublic,
		Role:          models.RoleUser,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, "", apperrors.Conflict("User with this email already exists")
		}
		s.log.Error().Err(err).Str("email", user.Email).Msg("ошибка создания пользователя")
		return nil, "", apperrors.Wrap(err, "Failed to register user")
	}

	token, err := s.verifier.Issue(user)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID.String()).Msg("ошибка генерации токена")
		return nil, "", apperrors.Wrap(err, "Failed to generate token")
	}

	metrics.UsersRegistered.Inc()
	s.log.Info().Str("user_id", user.ID.String()).Msg("зарегистрирован новый пользователь")
	return user, token, nil
}

// Login проверяет email и пароль и выпускает токен
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	if in.Email == "" || in.Password == "" {
		return nil, "", apperrors.Validation("Email and password are required")
	}

	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, "", apperrors.Unauthorized("Invalid credentials")
		}
		s.log.Error().Err(err).Msg("ошибка поиска пользователя")
		return nil, "", apperrors.Wrap(err, "Failed to login")
	}

	if !s.hasher.Check(user.PasswordHash, in.Password) {
		return nil, "", apperrors.Unauthorized("Invalid credentials")
	}

	if user.IsBanned {
		return nil, "", apperrors.Forbidden("Account is banned")
	}

	token, err := s.verifier.Issue(user)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID.String()).Msg("ошибка генерации токена")
		return nil, "", apperrors.Wrap(err, "Failed to generate token")
	}
	return user, token, nil
}

func authResponse(message string, user *models.User, token string) fiber.Map {
	return fiber.Map{
		"message": message,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
		"token": token,
	}
}

// RegisterHandler регистрирует пользователя
func (s *AuthService) RegisterHandler(c fiber.Ctx) error {
	if err := s.limiter.Allow(c, "register", 10, time.Hour); err != nil {
		return err
	}

	var in RegisterInput
	if err := utils.BindBody(c, &in); err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	user, token, err := s.Register(ctx, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse("User registered successfully", user, token))
}

// LoginHandler выполняет вход по email и паролю
func (s *AuthService) LoginHandler(c fiber.Ctx) error {
	if err := s.limiter.Allow(c, "login", 10, time.Minute); err != nil {
		return err
	}

	var in LoginInput
	if err := utils.BindBody(c, &in); err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	user, token, err := s.Login(ctx, in)
	if err != nil {
		return err
	}
	return c.JSON(authResponse("Login successful", user, token))
}

// LogoutHandler ничего не хранит на сервере: клиент просто удаляет токен
func (s *AuthService) LogoutHandler(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Logout successful"})
}

// MeHandler возвращает текущего пользователя
func (s *AuthService) MeHandler(c fiber.Ctx) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}
