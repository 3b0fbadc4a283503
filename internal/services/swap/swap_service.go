package swap

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rajivgeraev/skillswap-api/internal/apperrors"
	"github.com/rajivgeraev/skillswap-api/internal/auth"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/metrics"
	"github.com/rajivgeraev/skillswap-api/internal/models"
)

// SwapService представляет сервис для работы с предложениями обмена навыками
type SwapService struct {
	store    db.Store
	verifier *auth.Verifier
	log      zerolog.Logger
}

// NewSwapService создает новый экземпляр SwapService
func NewSwapService(store db.Store, verifier *auth.Verifier, log zerolog.Logger) *SwapService {
	return &SwapService{
		store:    store,
		verifier: verifier,
		log:      log,
	}
}

// CreateInput — данные нового предложения обмена
type CreateInput struct {
	ToUser       string `json:"to_user"`
	SkillOffered string `json:"skill_offered"`
	SkillWanted  string `json:"skill_wanted"`
	Message      string `json:"message"`
}

// ListFilter ограничивает список предложений пользователя
type ListFilter struct {
	// Type: incoming, outgoing или all (пусто = all)
	Type   string
	Status string
}

func (s *SwapService) loadRequest(ctx context.Context, id uuid.UUID) (*models.SwapRequest, error) {
	req, err := s.store.GetSwapRequest(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperrors.NotFound("Request not found")
		}
		s.log.Error().Err(err).Str("request_id", id.String()).Msg("ошибка получения предложения обмена")
		return nil, apperrors.Wrap(err, "Failed to load request")
	}
	return req, nil
}

func (s *SwapService) enrich(ctx context.Context, cache *db.UserCache, reqs ...*models.SwapRequest) error {
	for _, req := range reqs {
		if err := cache.EnrichRequest(ctx, req); err != nil {
			s.log.Error().Err(err).Str("request_id", req.ID.String()).Msg("ошибка загрузки участников обмена")
			return apperrors.Wrap(err, "Failed to load request participants")
		}
	}
	return nil
}

// Create создаёт предложение в статусе pending. Чат при этом не создаётся.
func (s *SwapService) Create(ctx context.Context, caller *models.User, in CreateInput) (*models.SwapRequest, error) {
	in.ToUser = strings.TrimSpace(in.ToUser)
	in.SkillOffered = strings.TrimSpace(in.SkillOffered)
	in.SkillWanted = strings.TrimSpace(in.SkillWanted)

	switch {
	case in.ToUser == "":
		return nil, apperrors.Validation("to_user is required")
	case in.SkillOffered == "":
		return nil, apperrors.Validation("skill_offered is required")
	case in.SkillWanted == "":
		return nil, apperrors.Validation("skill_wanted is required")
	}

	targetID, err := uuid.Parse(in.ToUser)
	if err != nil {
		return nil, apperrors.NotFound("Target user not found")
	}

	cache := db.NewUserCache(s.store)
	cache.Put(caller)
	target, err := cache.Get(ctx, targetID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", targetID.String()).Msg("ошибка получения пользователя")
		return nil, apperrors.Wrap(err, "Failed to load target user")
	}
	if target == nil {
		return nil, apperrors.NotFound("Target user not found")
	}

	if target.ID == caller.ID {
		return nil, apperrors.InvalidOperation("Cannot create request to yourself")
	}

	req := &models.SwapRequest{
		FromUserID:   caller.ID,
		ToUserID:     target.ID,
		SkillOffered: in.SkillOffered,
		SkillWanted:  in.SkillWanted,
		Message:      in.Message,
	}
	if err := s.store.CreateSwapRequest(ctx, req); err != nil {
		s.log.Error().Err(err).Str("from_user_id", caller.ID.String()).Msg("ошибка создания предложения обмена")
		return nil, apperrors.Wrap(err, "Failed to create request")
	}

	metrics.SwapRequestsCreated.Inc()
	if err := s.enrich(ctx, cache, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Get возвращает предложение его участнику или администратору
func (s *SwapService) Get(ctx context.Context, caller *models.User, id uuid.UUID) (*models.SwapRequest, error) {
	req, err := s.loadRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsParticipant(caller.ID) && !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Unauthorized")
	}

	cache := db.NewUserCache(s.store)
	cache.Put(caller)
	if err := s.enrich(ctx, cache, req); err != nil {
		return nil, err
	}
	return req, nil
}

// List возвращает предложения, где вызывающий — отправитель или получатель
func (s *SwapService) List(ctx context.Context, caller *models.User, filter ListFilter) ([]models.SwapRequest, error) {
	switch filter.Type {
	case "", "all", "incoming", "outgoing":
	default:
		return nil, apperrors.Validation("type must be one of: incoming, outgoing, all")
	}
	if filter.Status != "" && !models.RequestStatus(filter.Status).Valid() {
		return nil, apperrors.Validation("Invalid status")
	}

	all, err := s.store.ListSwapRequestsForUser(ctx, caller.ID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", caller.ID.String()).Msg("ошибка получения предложений обмена")
		return nil, apperrors.Wrap(err, "Failed to load requests")
	}

	reqs := make([]models.SwapRequest, 0, len(all))
	for _, req := range all {
		if filter.Type == "incoming" && req.ToUserID != caller.ID {
			continue
		}
		if filter.Type == "outgoing" && req.FromUserID != caller.ID {
			continue
		}
		if filter.Status != "" && string(req.Status) != filter.Status {
			continue
		}
		reqs = append(reqs, req)
	}

	cache := db.NewUserCache(s.store)
	cache.Put(caller)
	if err := cache.EnrichRequests(ctx, reqs); err != nil {
		s.log.Error().Err(err).Msg("ошибка загрузки участников обмена")
		return nil, apperrors.Wrap(err, "Failed to load request participants")
	}
	return reqs, nil
}

// Transition переводит pending-предложение в accepted или rejected.
// Менять статус может только получатель или администратор. При принятии
// в той же транзакции создаётся единственный чат.
func (s *SwapService) Transition(ctx context.Context, caller *models.User, id uuid.UUID, newStatus string) (*models.SwapRequest, *models.ChatRoom, error) {
	req, err := s.loadRequest(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if req.ToUserID != caller.ID && !caller.IsAdmin() {
		return nil, nil, apperrors.Forbidden("Unauthorized")
	}

	to := models.RequestStatus(newStatus)
	if to != models.StatusAccepted && to != models.StatusRejected {
		return nil, nil, apperrors.Validation("Invalid status")
	}

	if req.Status.Terminal() {
		return nil, nil, apperrors.InvalidOperation("Request is already " + string(req.Status))
	}

	updated, room, err := s.store.TransitionSwapRequest(ctx, id, models.StatusPending, to)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			return nil, nil, apperrors.NotFound("Request not found")
		case errors.Is(err, db.ErrStatusChanged):
			return nil, nil, apperrors.InvalidOperation("Request is no longer pending")
		}
		s.log.Error().Err(err).Str("request_id", id.String()).Msg("ошибка изменения статуса предложения")
		return nil, nil, apperrors.Wrap(err, "Failed to update request")
	}

	metrics.SwapRequestTransitions.WithLabelValues(string(to)).Inc()
	if room != nil {
		// pending -> accepted происходит один раз, и до него чата быть не может
		metrics.ChatRoomsCreated.Inc()
		s.log.Info().Str("request_id", id.String()).Str("chat_room_id", room.ID.String()).Msg("создан чат для принятого обмена")
	}

	cache := db.NewUserCache(s.store)
	cache.Put(caller)
	if err := s.enrich(ctx, cache, updated); err != nil {
		return nil, nil, err
	}
	return updated, room, nil
}

// Delete удаляет предложение. Отправитель может удалить только pending-предложение,
// администратор — любое (вместе с чатом и сообщениями).
func (s *SwapService) Delete(ctx context.Context, caller *models.User, id uuid.UUID) error {
	req, err := s.loadRequest(ctx, id)
	if err != nil {
		return err
	}

	admin := caller.IsAdmin()
	if req.FromUserID != caller.ID && !admin {
		return apperrors.Forbidden("Unauthorized")
	}
	if req.Status != models.StatusPending && !admin {
		return apperrors.InvalidOperation("Can only delete pending requests")
	}

	if err := s.store.DeleteSwapRequest(ctx, id, !admin); err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			return apperrors.NotFound("Request not found")
		case errors.Is(err, db.ErrStatusChanged):
			return apperrors.InvalidOperation("Can only delete pending requests")
		}
		s.log.Error().Err(err).Str("request_id", id.String()).Msg("ошибка удаления предложения")
		return apperrors.Wrap(err, "Failed to delete request")
	}

	s.log.Info().Str("request_id", id.String()).Str("user_id", caller.ID.String()).Bool("admin", admin).Msg("предложение обмена удалено")
	return nil
}
