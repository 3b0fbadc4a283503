package chat

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rajivgeraev/skillswap-api/internal/apperrors"
	"github.com/rajivgeraev/skillswap-api/internal/auth"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/metrics"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/models"
)

// MaxMessageLength — максимальная длина сообщения в символах
const MaxMessageLength = 5000

// ChatService представляет сервис для работы с чатами принятых обменов
type ChatService struct {
	store    db.Store
	verifier *auth.Verifier
	limiter  *middleware.RateLimiter
	log      zerolog.Logger
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(store db.Store, verifier *auth.Verifier, limiter *middleware.RateLimiter, log zerolog.Logger) *ChatService {
	return &ChatService{
		store:    store,
		verifier: verifier,
		limiter:  limiter,
		log:      log,
	}
}

// RoomView — чат вместе с предложением и сообщениями
type RoomView struct {
	ChatRoom    *models.ChatRoom    `json:"chat_room"`
	SwapRequest *models.SwapRequest `json:"swap_request"`
	Messages    []models.Message    `json:"messages"`
}

// ResolveOrCreate возвращает чат принятого предложения, создавая его при первом
// обращении. Повторные и параллельные вызовы получают один и тот же чат.
func (s *ChatService) ResolveOrCreate(ctx context.Context, caller *models.User, requestID uuid.UUID) (*models.ChatRoom, *models.SwapRequest, error) {
	req, err := s.store.GetSwapRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil, apperrors.NotFound("Request not found")
		}
		s.log.Error().Err(err).Str("request_id", requestID.String()).Msg("ошибка получения предложения обмена")
		return nil, nil, apperrors.Wrap(err, "Failed to load request")
	}

	if !req.IsParticipant(caller.ID) && !caller.IsAdmin() {
		return nil, nil, apperrors.Forbidden("Unauthorized")
	}

	if req.Status != models.StatusAccepted {
		return nil, nil, apperrors.InvalidOperation("Chat room not available for this request")
	}

	room, created, err := s.store.EnsureChatRoom(ctx, requestID)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			return nil, nil, apperrors.NotFound("Request not found")
		case errors.Is(err, db.ErrNotAccepted):
			return nil, nil, apperrors.InvalidOperation("Chat room not available for this request")
		}
		s.log.Error().Err(err).Str("request_id", requestID.String()).Msg("ошибка создания чата")
		return nil, nil, apperrors.Wrap(err, "Failed to open chat room")
	}

	if created {
		metrics.ChatRoomsCreated.Inc()
		s.log.Info().Str("request_id", requestID.String()).Str("chat_room_id", room.ID.String()).Msg("создан чат")
	}
	return room, req, nil
}

// Room возвращает чат предложения вместе с сообщениями
func (s *ChatService) Room(ctx context.Context, caller *models.User, requestID uuid.UUID) (*RoomView, error) {
	room, req, err := s.ResolveOrCreate(ctx, caller, requestID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.store.ListMessages(ctx, room.ID, 0, 0)
	if err != nil {
		s.log.Error().Err(err).Str("chat_room_id", room.ID.String()).Msg("ошибка получения сообщений")
		return nil, apperrors.Wrap(err, "Failed to load messages")
	}

	cache := db.NewUserCache(s.store)
	cache.Put(caller)
	if err := cache.EnrichRequest(ctx, req); err != nil {
		return nil, apperrors.Wrap(err, "Failed to load request participants")
	}
	if err := cache.EnrichMessages(ctx, msgs); err != nil {
		return nil, apperrors.Wrap(err, "Failed to load message senders")
	}

	return &RoomView{ChatRoom: room, SwapRequest: req, Messages: msgs}, nil
}

// accessRoom загружает чат и проверяет, что вызывающий — участник или администратор
func (s *ChatService) accessRoom(ctx context.Context, caller *models.User, roomID uuid.UUID) (*models.ChatRoom, error) {
	room, err := s.store.GetChatRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperrors.NotFound("Chat room not found")
		}
		s.log.Error().Err(err).Str("chat_room_id", roomID.String()).Msg("ошибка получения чата")
		return nil, apperrors.Wrap(err, "Failed to load chat room")
	}

	if !room.HasParticipant(caller.ID) && !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Unauthorized")
	}
	return room, nil
}

// ListMessages возвращает сообщения чата по времени создания.
// afterSeq > 0 продолжает чтение после сообщения с этим seq, limit <= 0 — без ограничения.
func (s *ChatService) ListMessages(ctx context.Context, caller *models.User, roomID uuid.UUID, afterSeq int64, limit int) ([]models.Message, error) {
	room, err := s.accessRoom(ctx, caller, roomID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.store.ListMessages(ctx, room.ID, afterSeq, limit)
	if err != nil {
		s.log.Error().Err(err).Str("chat_room_id", room.ID.String()).Msg("ошибка получения сообщений")
		return nil, apperrors.Wrap(err, "Failed to load messages")
	}

	cache := db.NewUserCache(s.store)
	cache.Put(caller)
	if err := cache.EnrichMessages(ctx, msgs); err != nil {
		return nil, apperrors.Wrap(err, "Failed to load message senders")
	}
	return msgs, nil
}

// PostMessage сохраняет сообщение от имени вызывающего
func (s *ChatService) PostMessage(ctx context.Context, caller *models.User, roomID uuid.UUID, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.Validation("Message text is required")
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, apperrors.Validation("Message text is too long")
	}

	room, err := s.accessRoom(ctx, caller, roomID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ChatRoomID: room.ID,
		SenderID:   caller.ID,
		Text:       text,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("chat_room_id", room.ID.String()).Msg("ошибка сохранения сообщения")
		return nil, apperrors.Wrap(err, "Failed to send message")
	}

	metrics.MessagesPosted.Inc()
	msg.Sender = caller.Summary()
	return msg, nil
}

// ListConversations возвращает чаты пользователя вместе с предложениями.
// Смотреть чужие чаты может только администратор.
func (s *ChatService) ListConversations(ctx context.Context, caller *models.User, userID uuid.UUID) ([]models.ChatRoomWithRequest, error) {
	if caller.ID != userID && !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Unauthorized")
	}

	rooms, err := s.store.ListChatRoomsForUser(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID.String()).Msg("ошибка получения списка чатов")
		return nil, apperrors.Wrap(err, "Failed to load chat rooms")
	}

	cache := db.NewUserCache(s.store)
	cache.Put(caller)
	for i := range rooms {
		if err := cache.EnrichRequest(ctx, &rooms[i].SwapRequest); err != nil {
			return nil, apperrors.Wrap(err, "Failed to load request participants")
		}
	}
	return rooms, nil
}
