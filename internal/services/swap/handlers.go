package swap

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

// CreateRequest создает новое предложение обмена
func (s *SwapService) CreateRequest(c fiber.Ctx) error {
	caller, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	var in CreateInput
	if err := utils.BindBody(c, &in); err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	req, err := s.Create(ctx, caller, in)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Swap request created successfully",
		"request": req,
	})
}

// GetMyRequests возвращает входящие и исходящие предложения пользователя
func (s *SwapService) GetMyRequests(c fiber.Ctx) error {
	caller, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	reqs, err := s.List(ctx, caller, ListFilter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"requests": reqs,
		"total":    len(reqs),
	})
}

// GetRequest возвращает предложение обмена
func (s *SwapService) GetRequest(c fiber.Ctx) error {
	caller, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	id, err := utils.ParseUUIDParam(c, "id", "Request")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	req, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"request": req})
}

// UpdateRequestStatus принимает или отклоняет предложение
func (s *SwapService) UpdateRequestStatus(c fiber.Ctx) error {
	caller, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	id, err := utils.ParseUUIDParam(c, "id", "Request")
	if err != nil {
		return err
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := utils.BindBody(c, &body); err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	req, room, err := s.Transition(ctx, caller, id, body.Status)
	if err != nil {
		return err
	}

	resp := fiber.Map{
		"message": "Request updated successfully",
		"request": req,
	}
	if room != nil {
		resp["chat_room"] = room
	}
	return c.JSON(resp)
}

// DeleteRequest удаляет предложение обмена
func (s *SwapService) DeleteRequest(c fiber.Ctx) error {
	caller, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	id, err := utils.ParseUUIDParam(c, "id", "Request")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if err := s.Delete(ctx, caller, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Request deleted successfully"})
}
