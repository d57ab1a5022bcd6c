package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/garrisonhq/garrison-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID     uuid.UUID
	Role       enums.UserRole
	HomeBaseID *uuid.UUID
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients. HomeBaseID is
// absent for admins, who are not pinned to a base.
type AccessTokenClaims struct {
	UserID     uuid.UUID      `json:"user_id"`
	Role       enums.UserRole `json:"role"`
	HomeBaseID *uuid.UUID     `json:"home_base_id,omitempty"`
	jwt.RegisteredClaims
}
