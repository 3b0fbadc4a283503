package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rajivgeraev/skillswap-api/internal/apperrors"
	"github.com/rajivgeraev/skillswap-api/internal/auth"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/services/directory"
	"github.com/rajivgeraev/skillswap-api/internal/services/swap"
)

// RecentWindow — окно «недавней активности» в статистике
const RecentWindow = 7 * 24 * time.Hour

// AdminService — административные операции над пользователями и обменами
type AdminService struct {
	store     db.Store
	verifier  *auth.Verifier
	directory *directory.DirectoryService
	swaps     *swap.SwapService
	log       zerolog.Logger
	now       func() time.Time
}

// NewAdminService создает новый экземпляр AdminService
func NewAdminService(store db.Store, verifier *auth.Verifier, directory *directory.DirectoryService, swaps *swap.SwapService, log zerolog.Logger) *AdminService {
	return &AdminService{
		store:     store,
		verifier:  verifier,
		directory: directory,
		swaps:     swaps,
		log:       log,
		now:       time.Now,
	}
}

func requireAdmin(caller *models.User) error {
	if !caller.IsAdmin() {
		return apperrors.Forbidden("Admin access required")
	}
	return nil
}

// ListUsers возвращает всех пользователей, включая закрытых и забаненных
func (s *AdminService) ListUsers(ctx context.Context, caller *models.User) ([]models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("ошибка получения списка пользователей")
		return nil, apperrors.Wrap(err, "Failed to load users")
	}
	return users, nil
}

// SetBan банит или разбанивает пользователя
func (s *AdminService) SetBan(ctx context.Context, caller *models.User, userID uuid.UUID, banned bool) (*models.User, error) {
	return s.directory.SetBanStatus(ctx, caller, userID, banned)
}

// Stats считает статистику платформы за всё время и за последние 7 дней
func (s *AdminService) Stats(ctx context.Context, caller *models.User) (*models.PlatformStats, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	stats, err := s.store.Stats(ctx, s.now().Add(-RecentWindow))
	if err != nil {
		s.log.Error().Err(err).Msg("ошибка расчёта статистики")
		return nil, apperrors.Wrap(err, "Failed to load stats")
	}
	return stats, nil
}

// ListRequests возвращает все предложения обмена
func (s *AdminService) ListRequests(ctx context.Context, caller *models.User) ([]models.SwapRequest, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	reqs, err := s.store.ListSwapRequests(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("ошибка получения предложений обмена")
		return nil, apperrors.Wrap(err, "Failed to load requests")
	}

	if err := db.NewUserCache(s.store).EnrichRequests(ctx, reqs); err != nil {
		s.log.Error().Err(err).Msg("ошибка загрузки участников обмена")
		return nil, apperrors.Wrap(err, "Failed to load request participants")
	}
	return reqs, nil
}

// DeleteRequest удаляет предложение в любом статусе
func (s *AdminService) DeleteRequest(ctx context.Context, caller *models.User, id uuid.UUID) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return s.swaps.Delete(ctx, caller, id)
}
