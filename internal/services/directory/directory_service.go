package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rajivgeraev/skillswap-api/internal/apperrors"
	"github.com/rajivgeraev/skillswap-api/internal/auth"
	"github.com/rajivgeraev/skillswap-api/internal/blob"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/metrics"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

var allowedPhotoExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// DirectoryService отвечает за профили пользователей и поиск по навыкам
type DirectoryService struct {
	store          db.Store
	verifier       *auth.Verifier
	blobs          blob.Store
	hasher         *utils.PasswordHasher
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewDirectoryService создает новый экземпляр DirectoryService.
// blobs может быть nil: тогда загрузка фото отключена.
func NewDirectoryService(store db.Store, verifier *auth.Verifier, blobs blob.Store, hasher *utils.PasswordHasher, maxUploadBytes int64, log zerolog.Logger) *DirectoryService {
	return &DirectoryService{
		store:          store,
		verifier:       verifier,
		blobs:          blobs,
		hasher:         hasher,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// canManage — владелец профиля или администратор
func canManage(caller *models.User, userID uuid.UUID) bool {
	return caller != nil && (caller.ID == userID || caller.IsAdmin())
}

func callerID(caller *models.User) uuid.UUID {
	if caller == nil {
		return uuid.Nil
	}
	return caller.ID
}

// ParseSkillTerms разбирает список навыков через запятую: пробелы по краям
// убираются, регистр не учитывается, пустые элементы отбрасываются
func ParseSkillTerms(raw string) []string {
	var terms []string
	for _, part := range strings.Split(raw, ",") {
		if term := strings.ToLower(strings.TrimSpace(part)); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// MatchesSkills сообщает, содержит ли хотя бы один предлагаемый или желаемый
// навык пользователя хотя бы один из терминов
func MatchesSkills(user *models.User, terms []string) bool {
	for _, list := range [][]string{user.SkillsOffered, user.SkillsWanted} {
		for _, skill := range list {
			skill = strings.ToLower(skill)
			for _, term := range terms {
				if strings.Contains(skill, term) {
					return true
				}
			}
		}
	}
	return false
}

func (s *DirectoryService) publicUsers(ctx context.Context, caller *models.User) ([]models.User, error) {
	users, err := s.store.ListPublicUsers(ctx, callerID(caller))
	if err != nil {
		s.log.Error().Err(err).Msg("ошибка получения списка пользователей")
		return nil, apperrors.Wrap(err, "Failed to load users")
	}
	return users, nil
}

func filterBySkills(users []models.User, terms []string) []models.User {
	filtered := make([]models.User, 0, len(users))
	for i := range users {
		if MatchesSkills(&users[i], terms) {
			filtered = append(filtered, users[i])
		}
	}
	return filtered
}

// List возвращает страницу публичных пользователей без администраторов и без
// самого вызывающего. Непустой search фильтрует по навыкам до пагинации.
func (s *DirectoryService) List(ctx context.Context, caller *models.User, search string, p utils.Pagination) ([]models.User, int, error) {
	users, err := s.publicUsers(ctx, caller)
	if err != nil {
		return nil, 0, err
	}

	if terms := ParseSkillTerms(search); len(terms) > 0 {
		metrics.SearchQueries.Inc()
		users = filterBySkills(users, terms)
	}
	return utils.PageOf(users, p), len(users), nil
}

// Search ищет публичных пользователей по навыкам
func (s *DirectoryService) Search(ctx context.Context, caller *models.User, skills string, p utils.Pagination) ([]models.User, int, error) {
	terms := ParseSkillTerms(skills)
	if len(terms) == 0 {
		return nil, 0, apperrors.Validation("Skills parameter is required")
	}

	users, err := s.publicUsers(ctx, caller)
	if err != nil {
		return nil, 0, err
	}

	metrics.SearchQueries.Inc()
	filtered := filterBySkills(users, terms)
	return utils.PageOf(filtered, p), len(filtered), nil
}

func (s *DirectoryService) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		s.log.Error().Err(err).Str("user_id", id.String()).Msg("ошибка получения пользователя")
		return nil, apperrors.Wrap(err, "Failed to load user")
	}
	return user, nil
}

// Get возвращает профиль. Закрытый профиль видят только владелец и администраторы.
func (s *DirectoryService) Get(ctx context.Context, caller *models.User, id uuid.UUID) (*models.User, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsPublic && !canManage(caller, id) {
		return nil, apperrors.Forbidden("User profile is private")
	}
	return user, nil
}

func cleanSkills(skills []string) []string {
	cleaned := make([]string, 0, len(skills))
	for _, skill := range skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			cleaned = append(cleaned, skill)
		}
	}
	return cleaned
}

// UpdateProfile меняет разрешённые поля профиля. Остальные поля запроса
// (email, роль, бан) сюда просто не попадают.
func (s *DirectoryService) UpdateProfile(ctx context.Context, caller *models.User, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error) {
	if !canManage(caller, id) {
		return nil, apperrors.Forbidden("Unauthorized")
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, apperrors.Validation("name cannot be empty")
		}
		upd.Name = &name
	}
	if upd.SkillsOffered != nil {
		skills := cleanSkills(*upd.SkillsOffered)
		upd.SkillsOffered = &skills
	}
	if upd.SkillsWanted != nil {
		skills := cleanSkills(*upd.SkillsWanted)
		upd.SkillsWanted = &skills
	}

	if upd.Empty() {
		return s.loadUser(ctx, id)
	}

	user, err := s.store.UpdateUserProfile(ctx, id, upd)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		s.log.Error().Err(err).Str("user_id", id.String()).Msg("ошибка обновления профиля")
		return nil, apperrors.Wrap(err, "Failed to update user")
	}
	return user, nil
}

// PhotoUpload — загружаемый файл фотографии
type PhotoUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

func (s *DirectoryService) photoKey(userID uuid.UUID) string {
	return fmt.Sprintf("avatars/%s_%d", userID, time.Now().UnixNano())
}

// UploadPhoto сохраняет фото в хранилище файлов и записывает URL в профиль
func (s *DirectoryService) UploadPhoto(ctx context.Context, caller *models.User, id uuid.UUID, photo PhotoUpload) (*models.User, error) {
	if !canManage(caller, id) {
		return nil, apperrors.Forbidden("Unauthorized")
	}
	if _, err := s.loadUser(ctx, id); err != nil {
		return nil, err
	}
	if s.blobs == nil {
		return nil, apperrors.InvalidOperation("photo uploads are disabled")
	}

	if photo.Filename == "" {
		return nil, apperrors.Validation("No file selected")
	}
	contentType, ok := allowedPhotoExtensions[strings.ToLower(filepath.Ext(photo.Filename))]
	if !ok {
		return nil, apperrors.Validation("Invalid file type")
	}
	if s.maxUploadBytes > 0 && photo.Size > s.maxUploadBytes {
		return nil, apperrors.Validation(fmt.Sprintf("File is too large (max %d bytes)", s.maxUploadBytes))
	}

	key := s.photoKey(id)
	photoURL, err := s.blobs.Put(ctx, key, contentType, photo.Body)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", id.String()).Str("key", key).Msg("ошибка загрузки фото")
		return nil, apperrors.Wrap(err, "Failed to upload photo")
	}

	user, err := s.store.SetUserPhoto(ctx, id, photoURL)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		s.log.Error().Err(err).Str("user_id", id.String()).Msg("ошибка сохранения URL фото")
		return nil, apperrors.Wrap(err, "Failed to save photo")
	}
	return user, nil
}

// PhotoUploadParams возвращает подписанные параметры для загрузки фото клиентом
// напрямую в хранилище (поддерживается только Cloudinary)
func (s *DirectoryService) PhotoUploadParams(ctx context.Context, caller *models.User, id uuid.UUID) (map[string]string, error) {
	if !canManage(caller, id) {
		return nil, apperrors.Forbidden("Unauthorized")
	}
	if _, err := s.loadUser(ctx, id); err != nil {
		return nil, err
	}

	signer, ok := s.blobs.(blob.UploadSigner)
	if !ok {
		return nil, apperrors.InvalidOperation("direct photo uploads are not supported")
	}
	params, err := signer.SignUpload(s.photoKey(id))
	if err != nil {
		s.log.Error().Err(err).Str("user_id", id.String()).Msg("ошибка подписи параметров загрузки")
		return nil, apperrors.Wrap(err, "Failed to sign upload")
	}
	return params, nil
}

// ChangePasswordInput — текущий и новый пароль
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword меняет пароль после проверки текущего
func (s *DirectoryService) ChangePassword(ctx context.Context, caller *models.User, id uuid.UUID, in ChangePasswordInput) error {
	if !canManage(caller, id) {
		return apperrors.Forbidden("Unauthorized")
	}

	user, err := s.loadUser(ctx, id)
	if err != nil {
		return err
	}

	if in.CurrentPassword == "" || in.NewPassword == "" {
		return apperrors.Validation("Current password and new password are required")
	}
	if err := utils.CheckPasswordLength(in.NewPassword); err != nil {
		return err
	}
	if !s.hasher.Check(user.PasswordHash, in.CurrentPassword) {
		return apperrors.Validation("Current password is incorrect")
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		s.log.Error().Err(err).Msg("ошибка хеширования пароля")
		return apperrors.Wrap(err, "Failed to change password")
	}

	if err := s.store.SetUserPassword(ctx, id, hash); err != nil {
		s.log.Error().Err(err).Str("user_id", id.String()).Msg("ошибка смены пароля")
		return apperrors.Wrap(err, "Failed to change password")
	}
	return nil
}

// SetBanStatus банит или разбанивает пользователя. Только для администраторов.
func (s *DirectoryService) SetBanStatus(ctx context.Context, caller *models.User, id uuid.UUID, banned bool) (*models.User, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Admin access required")
	}

	user, err := s.store.SetUserBanned(ctx, id, banned)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		s.log.Error().Err(err).Str("user_id", id.String()).Msg("ошибка изменения статуса бана")
		return nil, apperrors.Wrap(err, "Failed to update ban status")
	}

	s.log.Info().Str("user_id", id.String()).Bool("banned", banned).Str("admin_id", caller.ID.String()).Msg("изменён статус бана")
	return user, nil
}
