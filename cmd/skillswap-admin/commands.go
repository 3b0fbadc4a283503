package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

// seedFile — формат YAML-файла для команды seed
type seedFile struct {
	Users []seedUser `yaml:"users"`
}

type seedUser struct {
	Email         string   `yaml:"email"`
	Password      string   `yaml:"password"`
	Name          string   `yaml:"name"`
	Location      string   `yaml:"location"`
	Availability  string   `yaml:"availability"`
	SkillsOffered []string `yaml:"skills_offered"`
	SkillsWanted  []string `yaml:"skills_wanted"`
	IsPublic      *bool    `yaml:"is_public"`
	Role          string   `yaml:"role"`
}

type seedResult struct {
	Created int
	Skipped int
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newUser(hasher *utils.PasswordHasher, email, password, name string, role models.Role) (*models.User, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return nil, errors.New("email и имя обязательны")
	}
	if err := utils.CheckPasswordLength(password); err != nil {
		return nil, fmt.Errorf("%s: %w", email, err)
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	return &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		IsPublic:     true,
		Role:         role,
	}, nil
}

// createAdmin создаёт администратора; существующий пользователь получает роль admin.
// Второе значение сообщает, был ли пользователь создан.
func createAdmin(ctx context.Context, store db.Store, hasher *utils.PasswordHasher, email, password, name string) (*models.User, bool, error) {
	existing, err := store.GetUserByEmail(ctx, normalizeEmail(email))
	switch {
	case err == nil:
		if err := store.SetUserRole(ctx, existing.ID, models.RoleAdmin); err != nil {
			return nil, false, err
		}
		existing.Role = models.RoleAdmin
		return existing, false, nil
	case !errors.Is(err, db.ErrNotFound):
		return nil, false, err
	}

	user, err := newUser(hasher, email, password, name, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// seedUsers загружает пользователей из YAML. Уже существующие email пропускаются.
func seedUsers(ctx context.Context, store db.Store, hasher *utils.PasswordHasher, r io.Reader) (seedResult, error) {
	var file seedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return seedResult{}, fmt.Errorf("ошибка чтения YAML: %w", err)
	}

	var result seedResult
	for _, su := range file.Users {
		role := models.RoleUser
		if su.Role == string(models.RoleAdmin) {
			role = models.RoleAdmin
		}

		user, err := newUser(hasher, su.Email, su.Password, su.Name, role)
		if err != nil {
			return result, err
		}
		user.Location = su.Location
		user.Availability = su.Availability
		user.SkillsOffered = su.SkillsOffered
		user.SkillsWanted = su.SkillsWanted
		if su.IsPublic != nil {
			user.IsPublic = *su.IsPublic
		}

		if err := store.CreateUser(ctx, user); err != nil {
			if errors.Is(err, db.ErrConflict) {
				result.Skipped++
				continue
			}
			return result, err
		}
		result.Created++
	}
	return result, nil
}

// setBanned меняет статус бана по email
func setBanned(ctx context.Context, store db.Store, email string, banned bool) (*models.User, error) {
	if email == "" {
		return nil, errors.New("нужен флаг --email")
	}
	user, err := store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return store.SetUserBanned(ctx, user.ID, banned)
}
