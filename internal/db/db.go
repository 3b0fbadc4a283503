package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rajivgeraev/skillswap-api/internal/config"
	"github.com/rajivgeraev/skillswap-api/internal/models"
)

var (
	// ErrNotFound — запись не найдена
	ErrNotFound = errors.New("record not found")
	// ErrConflict — нарушено ограничение уникальности
	ErrConflict = errors.New("unique constraint violated")
	// ErrStatusChanged — статус предложения изменился между чтением и записью
	ErrStatusChanged = errors.New("swap request status changed concurrently")
	// ErrNotAccepted — чат нельзя создать, потому что предложение не принято
	ErrNotAccepted = errors.New("swap request is not accepted")
)

// Store описывает хранилище пользователей, предложений обмена и чатов.
// Реализации: PostgresStore и SQLiteStore.
type Store interface {
	Close()
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error

	// Пользователи
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListPublicUsers(ctx context.Context, excludeID uuid.UUID) ([]models.User, error)
	UpdateUserProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error)
	SetUserPhoto(ctx context.Context, id uuid.UUID, photoURL string) (*models.User, error)
	SetUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetUserBanned(ctx context.Context, id uuid.UUID, banned bool) (*models.User, error)
	SetUserRole(ctx context.Context, id uuid.UUID, role models.Role) error

	// Предложения обмена
	CreateSwapRequest(ctx context.Context, req *models.SwapRequest) error
	GetSwapRequest(ctx context.Context, id uuid.UUID) (*models.SwapRequest, error)
	ListSwapRequestsForUser(ctx context.Context, userID uuid.UUID) ([]models.SwapRequest, error)
	ListSwapRequests(ctx context.Context) ([]models.SwapRequest, error)
	TransitionSwapRequest(ctx context.Context, id uuid.UUID, from, to models.RequestStatus) (*models.SwapRequest, *models.ChatRoom, error)
	DeleteSwapRequest(ctx context.Context, id uuid.UUID, onlyPending bool) error

	// Чаты
	EnsureChatRoom(ctx context.Context, requestID uuid.UUID) (*models.ChatRoom, bool, error)
	GetChatRoom(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error)
	GetChatRoomByRequest(ctx context.Context, requestID uuid.UUID) (*models.ChatRoom, error)
	ListChatRoomsForUser(ctx context.Context, userID uuid.UUID) ([]models.ChatRoomWithRequest, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, roomID uuid.UUID, afterSeq int64, limit int) ([]models.Message, error)

	// Администрирование
	Stats(ctx context.Context, since time.Time) (*models.PlatformStats, error)
}

// Open открывает хранилище, выбранное в конфигурации, и применяет схему
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var (
		store Store
		err   error
	)
	switch cfg.DBDriver {
	case "sqlite":
		log.Info().Str("path", cfg.SQLitePath).Msg("подключение к SQLite")
		store, err = NewSQLiteStore(ctx, cfg.SQLitePath)
	default:
		log.Info().Str("host", cfg.PGHost).Str("database", cfg.PGDatabase).Msg("подключение к PostgreSQL")
		store, err = NewPostgresStore(ctx, cfg.DatabaseURL)
	}
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ошибка применения схемы: %w", err)
	}

	log.Info().Str("driver", cfg.DBDriver).Msg("✅ Успешное подключение к базе данных")
	return store, nil
}

// GetContext возвращает контекст с таймаутом для запросов к базе данных
func GetContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
