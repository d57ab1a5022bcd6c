package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/garrisonhq/garrison-backend/pkg/enums"
)

// User represents the canonical identity entity. HomeBaseID is required for
// BASE_COMMANDER and LOGISTICS_OFFICER and null for ADMIN.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	FirstName    string         `gorm:"column:first_name;not null"`
	LastName     string         `gorm:"column:last_name;not null"`
	Role         enums.UserRole `gorm:"column:role;type:user_role_enum;not null"`
	HomeBaseID   *uuid.UUID     `gorm:"column:home_base_id;type:uuid"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
