package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/rajivgeraev/skillswap-api/internal/apperrors"
)

const (
	MinPasswordLength = 6
	// bcrypt не принимает пароли длиннее 72 байт
	MaxPasswordBytes = 72
)

// CheckPasswordLength возвращает ошибку валидации для слишком короткого
// или слишком длинного пароля
func CheckPasswordLength(password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.Validation(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordBytes {
		return apperrors.Validation(fmt.Sprintf("Password must be at most %d bytes", MaxPasswordBytes))
	}
	return nil
}

// PasswordHasher хеширует и проверяет пароли через bcrypt
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher создаёт PasswordHasher; cost <= 0 означает bcrypt.DefaultCost
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash возвращает bcrypt-хеш пароля
func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Check сообщает, соответствует ли пароль хешу
func (h *PasswordHasher) Check(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
