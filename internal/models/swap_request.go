package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus определяет состояние предложения обмена навыками
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
)

// Valid сообщает, является ли значение известным статусом
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Terminal сообщает, что из статуса нет переходов
func (s RequestStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// SwapRequest представляет предложение обмена навыками
type SwapRequest struct {
	ID           uuid.UUID     `json:"id"`
	FromUserID   uuid.UUID     `json:"from_user_id"`
	ToUserID     uuid.UUID     `json:"to_user_id"`
	SkillOffered string        `json:"skill_offered"`
	SkillWanted  string        `json:"skill_wanted"`
	Message      string        `json:"message"`
	Status       RequestStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	// Дополнительные поля для API
	FromUser *UserSummary `json:"from_user,omitempty"`
	ToUser   *UserSummary `json:"to_user,omitempty"`
}

// IsParticipant сообщает, является ли пользователь одной из сторон обмена
func (r *SwapRequest) IsParticipant(userID uuid.UUID) bool {
	return r.FromUserID == userID || r.ToUserID == userID
}
