package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

// UserLookup — источник актуальных данных о пользователе
type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Verifier выпускает токены и сопоставляет их с текущими пользователями.
// Роль из токена не используется: права и бан всегда читаются из хранилища.
type Verifier struct {
	jwt   *utils.JWTService
	users UserLookup
	log   zerolog.Logger
}

// NewVerifier создаёт Verifier
func NewVerifier(jwtService *utils.JWTService, users UserLookup, log zerolog.Logger) *Verifier {
	return &Verifier{jwt: jwtService, users: users, log: log}
}

// Issue выпускает токен для пользователя
func (v *Verifier) Issue(user *models.User) (string, error) {
	return v.jwt.GenerateToken(user.ID, user.Email, string(user.Role))
}

// Resolve возвращает пользователя по токену или nil, если токен испорчен,
// просрочен, подписан чужим ключом, пользователь не существует или забанен
func (v *Verifier) Resolve(ctx context.Context, token string) *models.User {
	userID, err := v.jwt.ExtractUserID(token)
	if err != nil {
		return nil
	}

	user, err := v.users.GetUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			v.log.Error().Err(err).Str("user_id", userID.String()).Msg("ошибка загрузки пользователя по токену")
		}
		return nil
	}

	if user.IsBanned {
		return nil
	}
	return user
}
