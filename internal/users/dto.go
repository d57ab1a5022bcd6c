package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garrisonhq/garrison-backend/pkg/db/models"
	"github.com/garrisonhq/garrison-backend/pkg/enums"
)

// CreateUserDTO carries the fields needed to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         enums.UserRole
	HomeBaseID   *uuid.UUID
}

// ToModel materializes the DTO into a persistable user.
func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(d.Email)),
		PasswordHash: d.PasswordHash,
		FirstName:    strings.TrimSpace(d.FirstName),
		LastName:     strings.TrimSpace(d.LastName),
		Role:         d.Role,
		HomeBaseID:   d.HomeBaseID,
		IsActive:     true,
	}
}

// UserSummary is the user shape returned to clients; it never carries the
// password hash.
type UserSummary struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Role        enums.UserRole `json:"role"`
	HomeBaseID  *uuid.UUID     `json:"home_base_id,omitempty"`
	IsActive    bool           `json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
}

// FromModel maps a persisted user onto the client-facing summary.
func FromModel(user *models.User) UserSummary {
	return UserSummary{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        user.Role,
		HomeBaseID:  user.HomeBaseID,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
	}
}
