package utils

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/skillswap-api/internal/apperrors"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// NewValidator создаёт валидатор, который называет поля по json-тегам
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationMessage переводит первую ошибку валидатора в сообщение для клиента
func ValidationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "Invalid request data"
	}

	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}

// BindBody читает JSON-тело запроса
func BindBody(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		return apperrors.Validation("Invalid request data")
	}
	return nil
}

// ValidateStruct проверяет теги validate и возвращает ошибку валидации
func ValidateStruct(v *validator.Validate, in any) error {
	if err := v.Struct(in); err != nil {
		return apperrors.Validation(ValidationMessage(err))
	}
	return nil
}

// ParseUUIDParam читает UUID из параметра пути
func ParseUUIDParam(c fiber.Ctx, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.NotFound(label + " not found")
	}
	return id, nil
}

// Pagination — смещение и размер страницы
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePagination читает page и limit из строки запроса.
// page >= 1 (по умолчанию 1), limit в диапазоне 1..100 (по умолчанию 20).
func ParsePagination(c fiber.Ctx) (Pagination, error) {
	p := Pagination{Page: 1, Limit: DefaultPageLimit}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return p, apperrors.Validation("page must be a positive integer")
		}
		p.Page = page
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxPageLimit {
			return p, apperrors.Validation(fmt.Sprintf("limit must be between 1 and %d", MaxPageLimit))
		}
		p.Limit = limit
	}

	if p.Page-1 > math.MaxInt/p.Limit {
		return p, apperrors.Validation("page is too large")
	}
	p.Offset = (p.Page - 1) * p.Limit
	return p, nil
}

// PageOf возвращает срез items для страницы p
func PageOf[T any](items []T, p Pagination) []T {
	if p.Offset < 0 || p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if p.Limit < 0 || end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}
