package models

import (
	"time"

	"github.com/google/uuid"
)

// Base is a physical site holding inventory. Rows referenced by the ledger
// may be renamed but never deleted.
type Base struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"column:name;type:text;not null;uniqueIndex" json:"name"`
	Location  string    `gorm:"column:location;type:text;not null" json:"location"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
