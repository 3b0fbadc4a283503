package chat

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/apperrors"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

// GetRoom возвращает (и при необходимости создаёт) чат принятого предложения
func (s *ChatService) GetRoom(c fiber.Ctx) error {
	caller, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	requestID, err := utils.ParseUUIDParam(c, "requestId", "Request")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	view, err := s.Room(ctx, caller, requestID)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// GetChatMessages возвращает сообщения чата
func (s *ChatService) GetChatMessages(c fiber.Ctx) error {
	caller, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	roomID, err := utils.ParseUUIDParam(c, "roomId", "Chat room")
	if err != nil {
		return err
	}

	var (
		after int64
		limit int
	)
	if raw := c.Query("after"); raw != "" {
		if after, err = strconv.ParseInt(raw, 10, 64); err != nil || after < 0 {
			return apperrors.Validation("after must be a non-negative integer")
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 {
			return apperrors.Validation("limit must be a positive integer")
		}
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	msgs, err := s.ListMessages(ctx, caller, roomID, after, limit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"messages": msgs,
		"total":    len(msgs),
	})
}

// SendMessage отправляет новое сообщение
func (s *ChatService) SendMessage(c fiber.Ctx) error {
	caller, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	if err := s.limiter.Allow(c, "messages", 30, time.Minute); err != nil {
		return err
	}

	roomID, err := utils.ParseUUIDParam(c, "roomId", "Chat room")
	if err != nil {
		return err
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := utils.BindBody(c, &body); err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	msg, err := s.PostMessage(ctx, caller, roomID, body.Text)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Message sent successfully",
		"chat_message": msg,
	})
}

// GetUserChats возвращает чаты пользователя
func (s *ChatService) GetUserChats(c fiber.Ctx) error {
	caller, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	userID, err := utils.ParseUUIDParam(c, "userId", "User")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rooms, err := s.ListConversations(ctx, caller, userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"chat_rooms": rooms,
		"total":      len(rooms),
	})
}
