package directory

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/apperrors"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

// ListUsers возвращает публичных пользователей (GET /api/users)
func (s *DirectoryService) ListUsers(c fiber.Ctx) error {
	page, err := utils.ParsePagination(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	users, total, err := s.List(ctx, middleware.CurrentUser(c), c.Query("search"), page)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"users": users,
		"page":  page.Page,
		"limit": page.Limit,
		"total": total,
	})
}

// SearchUsers ищет пользователей по навыкам (GET /api/users/search?skills=a,b)
func (s *DirectoryService) SearchUsers(c fiber.Ctx) error {
	page, err := utils.ParsePagination(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	users, total, err := s.Search(ctx, middleware.CurrentUser(c), c.Query("skills"), page)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"users": users,
		"page":  page.Page,
		"limit": page.Limit,
		"total": total,
	})
}

// GetUser возвращает профиль пользователя
func (s *DirectoryService) GetUser(c fiber.Ctx) error {
	id, err := utils.ParseUUIDParam(c, "id", "User")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := s.Get(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

// UpdateUser обновляет профиль
func (s *DirectoryService) UpdateUser(c fiber.Ctx) error {
	caller, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	id, err := utils.ParseUUIDParam(c, "id", "User")
	if err != nil {
		return err
	}

	var upd models.ProfileUpdate
	if err := utils.BindBody(c, &upd); err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := s.UpdateProfile(ctx, caller, id, upd)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

// UploadUserPhoto принимает multipart-поле photo
func (s *DirectoryService) UploadUserPhoto(c fiber.Ctx) error {
	caller, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	id, err := utils.ParseUUIDParam(c, "id", "User")
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return apperrors.Validation("No photo file provided")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.Wrap(err, "Failed to read photo")
	}
	defer file.Close()

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := s.UploadPhoto(ctx, caller, id, PhotoUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Body:     file,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":   "Photo uploaded successfully",
		"photo_url": user.PhotoURL,
		"user":      user,
	})
}

// GetPhotoUploadParams возвращает параметры прямой загрузки фото
func (s *DirectoryService) GetPhotoUploadParams(c fiber.Ctx) error {
	caller, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	id, err := utils.ParseUUIDParam(c, "id", "User")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	params, err := s.PhotoUploadParams(ctx, caller, id)
	if err != nil {
		return err
	}
	return c.JSON(params)
}

// ChangeUserPassword меняет пароль
func (s *DirectoryService) ChangeUserPassword(c fiber.Ctx) error {
	caller, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	id, err := utils.ParseUUIDParam(c, "id", "User")
	if err != nil {
		return err
	}

	var in ChangePasswordInput
	if err := utils.BindBody(c, &in); err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if err := s.ChangePassword(ctx, caller, id, in); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}
