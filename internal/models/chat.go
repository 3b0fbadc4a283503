package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatRoom представляет приватный чат двух участников принятого обмена
type ChatRoom struct {
	ID        uuid.UUID `json:"id"`
	User1ID   uuid.UUID `json:"user1_id"`
	User2ID   uuid.UUID `json:"user2_id"`
	RequestID uuid.UUID `json:"request_id"`
	CreatedAt time.Time `json:"created_at"`
}

// HasParticipant сообщает, является ли пользователь участником чата
func (r *ChatRoom) HasParticipant(userID uuid.UUID) bool {
	return r.User1ID == userID || r.User2ID == userID
}

// ChatRoomWithRequest — чат вместе с предложением обмена, из которого он создан
type ChatRoomWithRequest struct {
	ChatRoom
	SwapRequest SwapRequest `json:"swap_request"`
}

// Message представляет сообщение в чате
type Message struct {
	ID         uuid.UUID `json:"id"`
	Seq        int64     `json:"seq"`
	ChatRoomID uuid.UUID `json:"chat_room_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`

	// Дополнительные поля для API
	Sender *UserSummary `json:"sender,omitempty"`
}
