package db

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/rajivgeraev/skillswap-api/internal/models"
)

const (
	userColumns    = `id, email, password_hash, name, photo_url, location, availability, skills_offered, skills_wanted, is_public, role, is_banned, created_at, updated_at`
	requestColumns = `id, from_user_id, to_user_id, skill_offered, skill_wanted, message, status, created_at, updated_at`
	roomColumns    = `id, user1_id, user2_id, request_id, created_at`
	messageColumns = `seq, id, chat_room_id, sender_id, text, created_at`
)

// sqlStore содержит запросы, общие для PostgreSQL и SQLite.
// Диалекты отличаются подключением, транзакциями и кодами ошибок.
type sqlStore struct {
	db                conn
	begin             func(ctx context.Context) (txConn, error)
	isUniqueViolation func(err error) bool
}

// withTx выполняет fn в транзакции; при ошибке изменения откатываются
func (s *sqlStore) withTx(ctx context.Context, fn func(tx conn) error) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

func (s *sqlStore) mapErr(err error) error {
	if err != nil && s.isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// now подменяется в тестах
var now = func() time.Time {
	return time.Now().UTC()
}

func encodeSkills(skills []string) string {
	if skills == nil {
		skills = []string{}
	}
	data, _ := json.Marshal(skills)
	return string(data)
}

func decodeSkills(data []byte) []string {
	skills := []string{}
	if len(data) == 0 {
		return skills
	}
	if err := json.Unmarshal(data, &skills); err != nil {
		return []string{}
	}
	return skills
}

func scanUser(r row) (*models.User, error) {
	var (
		u              models.User
		role           string
		offered, wants []byte
	)
	err := r.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.PhotoURL,
		&u.Location,
		&u.Availability,
		&offered,
		&wants,
		&u.IsPublic,
		&role,
		&u.IsBanned,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	u.SkillsOffered = decodeSkills(offered)
	u.SkillsWanted = decodeSkills(wants)
	return &u, nil
}

func scanRequest(r row) (*models.SwapRequest, error) {
	var (
		req    models.SwapRequest
		status string
	)
	err := r.Scan(
		&req.ID,
		&req.FromUserID,
		&req.ToUserID,
		&req.SkillOffered,
		&req.SkillWanted,
		&req.Message,
		&status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.Status = models.RequestStatus(status)
	return &req, nil
}

func scanRoom(r row) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := r.Scan(&room.ID, &room.User1ID, &room.User2ID, &room.RequestID, &room.CreatedAt); err != nil {
		return nil, err
	}
	return &room, nil
}

func scanMessage(r row) (*models.Message, error) {
	var msg models.Message
	if err := r.Scan(&msg.Seq, &msg.ID, &msg.ChatRoomID, &msg.SenderID, &msg.Text, &msg.CreatedAt); err != nil {
		return nil, err
	}
	return &msg, nil
}

func collect[T any](rs rows, scan func(row) (*T, error)) ([]T, error) {
	defer rs.Close()

	items := []T{}
	for rs.Next() {
		item, err := scan(rs)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rs.Err()
}

// --- Пользователи ---

func (s *sqlStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	if u.SkillsOffered == nil {
		u.SkillsOffered = []string{}
	}
	if u.SkillsWanted == nil {
		u.SkillsWanted = []string{}
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, u.ID, u.Email, u.PasswordHash, u.Name, u.PhotoURL, u.Location, u.Availability,
		encodeSkills(u.SkillsOffered), encodeSkills(u.SkillsWanted),
		u.IsPublic, string(u.Role), u.IsBanned, u.CreatedAt, u.UpdatedAt)
	return s.mapErr(err)
}

func (s *sqlStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *sqlStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *sqlStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rs, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	return collect(rs, scanUser)
}

// ListPublicUsers возвращает публичных пользователей без прав администратора,
// исключая excludeID (uuid.Nil — никого не исключать)
func (s *sqlStore) ListPublicUsers(ctx context.Context, excludeID uuid.UUID) ([]models.User, error) {
	rs, err := s.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE is_public = TRUE AND role = 'user' AND id <> $1
		ORDER BY created_at ASC, id ASC
	`, excludeID)
	if err != nil {
		return nil, err
	}
	return collect(rs, scanUser)
}

func (s *sqlStore) UpdateUserProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error) {
	var offered, wanted any
	if upd.SkillsOffered != nil {
		offered = encodeSkills(*upd.SkillsOffered)
	}
	if upd.SkillsWanted != nil {
		wanted = encodeSkills(*upd.SkillsWanted)
	}

	var user *models.User
	err := s.withTx(ctx, func(tx conn) error {
		affected, err := tx.Exec(ctx, `
			UPDATE users SET
				name = COALESCE($2, name),
				location = COALESCE($3, location),
				availability = COALESCE($4, availability),
				skills_offered = COALESCE($5, skills_offered),
				skills_wanted = COALESCE($6, skills_wanted),
				is_public = COALESCE($7, is_public),
				updated_at = $8
			WHERE id = $1
		`, id, upd.Name, upd.Location, upd.Availability, offered, wanted, upd.IsPublic, now())
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		user, err = scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *sqlStore) updateUserField(ctx context.Context, id uuid.UUID, column string, value any) (*models.User, error) {
	var user *models.User
	err := s.withTx(ctx, func(tx conn) error {
		affected, err := tx.Exec(ctx, `UPDATE users SET `+column+` = $2, updated_at = $3 WHERE id = $1`, id, value, now())
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		user, err = scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *sqlStore) SetUserPhoto(ctx context.Context, id uuid.UUID, photoURL string) (*models.User, error) {
	return s.updateUserField(ctx, id, "photo_url", photoURL)
}

func (s *sqlStore) SetUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := s.updateUserField(ctx, id, "password_hash", passwordHash)
	return err
}

func (s *sqlStore) SetUserBanned(ctx context.Context, id uuid.UUID, banned bool) (*models.User, error) {
	return s.updateUserField(ctx, id, "is_banned", banned)
}

func (s *sqlStore) SetUserRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	_, err := s.updateUserField(ctx, id, "role", string(role))
	return err
}

// --- Предложения обмена ---

func (s *sqlStore) CreateSwapRequest(ctx context.Context, req *models.SwapRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.Status = models.StatusPending
	req.CreatedAt = now()
	req.UpdatedAt = req.CreatedAt

	_, err := s.db.Exec(ctx, `
		INSERT INTO swap_requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, req.ID, req.FromUserID, req.ToUserID, req.SkillOffered, req.SkillWanted, req.Message,
		string(req.Status), req.CreatedAt, req.UpdatedAt)
	return s.mapErr(err)
}

func (s *sqlStore) GetSwapRequest(ctx context.Context, id uuid.UUID) (*models.SwapRequest, error) {
	return scanRequest(s.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM swap_requests WHERE id = $1`, id))
}

func (s *sqlStore) ListSwapRequestsForUser(ctx context.Context, userID uuid.UUID) ([]models.SwapRequest, error) {
	rs, err := s.db.Query(ctx, `
		SELECT `+requestColumns+`
		FROM swap_requests
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC, id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rs, scanRequest)
}

func (s *sqlStore) ListSwapRequests(ctx context.Context) ([]models.SwapRequest, error) {
	rs, err := s.db.Query(ctx, `SELECT `+requestColumns+` FROM swap_requests ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	return collect(rs, scanRequest)
}

// TransitionSwapRequest меняет статус только если текущий статус равен from.
// При переходе в accepted в той же транзакции создаётся чат (если его ещё нет).
func (s *sqlStore) TransitionSwapRequest(ctx context.Context, id uuid.UUID, from, to models.RequestStatus) (*models.SwapRequest, *models.ChatRoom, error) {
	var (
		req  *models.SwapRequest
		room *models.ChatRoom
	)
	err := s.withTx(ctx, func(tx conn) error {
		affected, err := tx.Exec(ctx, `
			UPDATE swap_requests SET status = $1, updated_at = $2
			WHERE id = $3 AND status = $4
		`, string(to), now(), id, string(from))
		if err != nil {
			return err
		}
		if affected == 0 {
			if _, err := scanRequest(tx.QueryRow(ctx, `SELECT `+requestColumns+` FROM swap_requests WHERE id = $1`, id)); err != nil {
				return err
			}
			return ErrStatusChanged
		}

		if to == models.StatusAccepted {
			if room, _, err = ensureChatRoom(ctx, tx, id); err != nil {
				return err
			}
		}

		req, err = scanRequest(tx.QueryRow(ctx, `SELECT `+requestColumns+` FROM swap_requests WHERE id = $1`, id))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return req, room, nil
}

// DeleteSwapRequest удаляет предложение. При onlyPending удаление выполняется,
// только если статус всё ещё pending.
func (s *sqlStore) DeleteSwapRequest(ctx context.Context, id uuid.UUID, onlyPending bool) error {
	return s.withTx(ctx, func(tx conn) error {
		query := `DELETE FROM swap_requests WHERE id = $1`
		args := []any{id}
		if onlyPending {
			query += ` AND status = $2`
			args = append(args, string(models.StatusPending))
		}

		affected, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if affected > 0 {
			return nil
		}

		if _, err := scanRequest(tx.QueryRow(ctx, `SELECT `+requestColumns+` FROM swap_requests WHERE id = $1`, id)); err != nil {
			return err
		}
		return ErrStatusChanged
	})
}

// --- Чаты ---

// ensureChatRoom создаёт чат для принятого предложения, если его ещё нет.
// Уникальность request_id гарантирует не более одного чата на предложение.
func ensureChatRoom(ctx context.Context, tx conn, requestID uuid.UUID) (*models.ChatRoom, bool, error) {
	req, err := scanRequest(tx.QueryRow(ctx, `SELECT `+requestColumns+` FROM swap_requests WHERE id = $1`, requestID))
	if err != nil {
		return nil, false, err
	}
	// accepted — конечный статус, поэтому проверка не устареет до вставки
	if req.Status != models.StatusAccepted {
		return nil, false, ErrNotAccepted
	}

	created, err := tx.Exec(ctx, `
		INSERT INTO chat_rooms (`+roomColumns+`)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (request_id) DO NOTHING
	`, uuid.New(), req.FromUserID, req.ToUserID, req.ID, now())
	if err != nil {
		return nil, false, err
	}

	room, err := scanRoom(tx.QueryRow(ctx, `SELECT `+roomColumns+` FROM chat_rooms WHERE request_id = $1`, requestID))
	if err != nil {
		return nil, false, err
	}
	return room, created > 0, nil
}

func (s *sqlStore) EnsureChatRoom(ctx context.Context, requestID uuid.UUID) (*models.ChatRoom, bool, error) {
	var (
		room    *models.ChatRoom
		created bool
	)
	err := s.withTx(ctx, func(tx conn) error {
		var err error
		room, created, err = ensureChatRoom(ctx, tx, requestID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return room, created, nil
}

func (s *sqlStore) GetChatRoom(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error) {
	return scanRoom(s.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM chat_rooms WHERE id = $1`, id))
}

func (s *sqlStore) GetChatRoomByRequest(ctx context.Context, requestID uuid.UUID) (*models.ChatRoom, error) {
	return scanRoom(s.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM chat_rooms WHERE request_id = $1`, requestID))
}

func (s *sqlStore) ListChatRoomsForUser(ctx context.Context, userID uuid.UUID) ([]models.ChatRoomWithRequest, error) {
	rs, err := s.db.Query(ctx, `
		SELECT c.id, c.user1_id, c.user2_id, c.request_id, c.created_at,
		       r.id, r.from_user_id, r.to_user_id, r.skill_offered, r.skill_wanted,
		       r.message, r.status, r.created_at, r.updated_at
		FROM chat_rooms c
		JOIN swap_requests r ON r.id = c.request_id
		WHERE c.user1_id = $1 OR c.user2_id = $1
		ORDER BY c.created_at DESC, c.id ASC
	`, userID)
	if err != nil {
		return nil, err
	}

	return collect(rs, func(r row) (*models.ChatRoomWithRequest, error) {
		var (
			item   models.ChatRoomWithRequest
			status string
		)
		err := r.Scan(
			&item.ID, &item.User1ID, &item.User2ID, &item.RequestID, &item.CreatedAt,
			&item.SwapRequest.ID, &item.SwapRequest.FromUserID, &item.SwapRequest.ToUserID,
			&item.SwapRequest.SkillOffered, &item.SwapRequest.SkillWanted, &item.SwapRequest.Message,
			&status, &item.SwapRequest.CreatedAt, &item.SwapRequest.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		item.SwapRequest.Status = models.RequestStatus(status)
		return &item, nil
	})
}

func (s *sqlStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	msg.CreatedAt = now()

	return s.db.QueryRow(ctx, `
		INSERT INTO messages (id, chat_room_id, sender_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq
	`, msg.ID, msg.ChatRoomID, msg.SenderID, msg.Text, msg.CreatedAt).Scan(&msg.Seq)
}

// ListMessages возвращает сообщения чата по возрастанию времени создания,
// при равном времени в порядке вставки. Курсор afterSeq сравнивается по той же
// паре (created_at, seq), поэтому повторное чтение не теряет и не повторяет сообщения.
func (s *sqlStore) ListMessages(ctx context.Context, roomID uuid.UUID, afterSeq int64, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = math.MaxInt32
	}
	if afterSeq <= 0 {
		rs, err := s.db.Query(ctx, `
			SELECT `+messageColumns+`
			FROM messages
			WHERE chat_room_id = $1
			ORDER BY created_at ASC, seq ASC
			LIMIT $2
		`, roomID, limit)
		if err != nil {
			return nil, err
		}
		return collect(rs, scanMessage)
	}

	rs, err := s.db.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE chat_room_id = $1
		  AND (created_at, seq) > (
			SELECT created_at, seq FROM messages WHERE seq = $2 AND chat_room_id = $1
		  )
		ORDER BY created_at ASC, seq ASC
		LIMIT $3
	`, roomID, afterSeq, limit)
	if err != nil {
		return nil, err
	}
	return collect(rs, scanMessage)
}

// --- Администрирование ---

func (s *sqlStore) Stats(ctx context.Context, since time.Time) (*models.PlatformStats, error) {
	var stats models.PlatformStats

	err := s.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN is_banned THEN 0 ELSE 1 END), 0),
			COALESCE(SUM(CASE WHEN is_banned THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN role = 'admin' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN created_at >= $1 THEN 1 ELSE 0 END), 0)
		FROM users
	`, since.UTC()).Scan(
		&stats.Users.Total,
		&stats.Users.Active,
		&stats.Users.Banned,
		&stats.Users.Admins,
		&stats.Users.RecentSignups,
	)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'accepted' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN created_at >= $1 THEN 1 ELSE 0 END), 0)
		FROM swap_requests
	`, since.UTC()).Scan(
		&stats.Requests.Total,
		&stats.Requests.Pending,
		&stats.Requests.Accepted,
		&stats.Requests.Rejected,
		&stats.Requests.Recent,
	)
	if err != nil {
		return nil, err
	}

	if stats.Requests.Total > 0 {
		rate := float64(stats.Requests.Accepted) / float64(stats.Requests.Total) * 100
		stats.SuccessRate = math.Round(rate*10) / 10
	}
	return &stats, nil
}
