package models

import (
	"time"

	"github.com/google/uuid"
)

// AssetType is a catalog entry describing a class of trackable item.
type AssetType struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"column:name;type:text;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
