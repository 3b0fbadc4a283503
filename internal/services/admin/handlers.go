package admin

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

// GetAllUsers возвращает всех пользователей
func (s *AdminService) GetAllUsers(c fiber.Ctx) error {
	caller, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	users, err := s.ListUsers(ctx, caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"users": users,
		"total": len(users),
	})
}

// BanUser меняет статус бана; без is_banned в теле пользователь банится
func (s *AdminService) BanUser(c fiber.Ctx) error {
	caller, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	userID, err := utils.ParseUUIDParam(c, "id", "User")
	if err != nil {
		return err
	}

	var body struct {
		IsBanned *bool `json:"is_banned"`
	}
	if len(c.Body()) > 0 {
		if err := utils.BindBody(c, &body); err != nil {
			return err
		}
	}
	banned := body.IsBanned == nil || *body.IsBanned

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := s.SetBan(ctx, caller, userID, banned)
	if err != nil {
		return err
	}

	action := "banned"
	if !banned {
		action = "unbanned"
	}
	return c.JSON(fiber.Map{
		"message": "User " + action + " successfully",
		"user":    user,
	})
}

// GetStats возвращает статистику платформы
func (s *AdminService) GetStats(c fiber.Ctx) error {
	caller, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	stats, err := s.Stats(ctx, caller)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// GetAllRequests возвращает все предложения обмена
func (s *AdminService) GetAllRequests(c fiber.Ctx) error {
	caller, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	reqs, err := s.ListRequests(ctx, caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"requests": reqs,
		"total":    len(reqs),
	})
}

// DeleteAnyRequest удаляет любое предложение обмена
func (s *AdminService) DeleteAnyRequest(c fiber.Ctx) error {
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

	if err := s.DeleteRequest(ctx, caller, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Request deleted successfully"})
}
