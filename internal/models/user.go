package models

import (
	"time"

	"github.com/google/uuid"
)

// Role определяет уровень доступа пользователя
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User представляет зарегистрированного пользователя
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Name          string    `json:"name"`
	PhotoURL      string    `json:"photo_url"`
	Location      string    `json:"location"`
	Availability  string    `json:"availability"`
	SkillsOffered []string  `json:"skills_offered"`
	SkillsWanted  []string  `json:"skills_wanted"`
	IsPublic      bool      `json:"is_public"`
	Role          Role      `json:"role"`
	IsBanned      bool      `json:"is_banned"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsAdmin сообщает, есть ли у пользователя административные права
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Summary возвращает краткую информацию о пользователе для вложенных объектов
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:            u.ID,
		Name:          u.Name,
		PhotoURL:      u.PhotoURL,
		Location:      u.Location,
		SkillsOffered: u.SkillsOffered,
		SkillsWanted:  u.SkillsWanted,
	}
}

// UserSummary представляет минимальную информацию о пользователе для API
type UserSummary struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	PhotoURL      string    `json:"photo_url,omitempty"`
	Location      string    `json:"location,omitempty"`
	SkillsOffered []string  `json:"skills_offered,omitempty"`
	SkillsWanted  []string  `json:"skills_wanted,omitempty"`
}

// ProfileUpdate содержит изменяемые поля профиля.
// nil означает, что поле не меняется.
type ProfileUpdate struct {
	Name          *string   `json:"name"`
	Location      *string   `json:"location"`
	Availability  *string   `json:"availability"`
	SkillsOffered *[]string `json:"skills_offered"`
	SkillsWanted  *[]string `json:"skills_wanted"`
	IsPublic      *bool     `json:"is_public"`
}

// Empty сообщает, что обновлять нечего
func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Location == nil && p.Availability == nil &&
		p.SkillsOffered == nil && p.SkillsWanted == nil && p.IsPublic == nil
}
