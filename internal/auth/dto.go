package auth

import (
	"github.com/google/uuid"

	"github.com/garrisonhq/garrison-backend/internal/users"
)

// LoginRequest carries the credentials posted to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the minted token pair and the authenticated user.
type LoginResponse struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	User         users.UserSummary `json:"user"`
}

// RegisterRequest carries the fields for creating an account. HomeBaseID is
// mandatory for base-scoped roles and ignored for admins.
type RegisterRequest struct {
	Email      string     `json:"email" validate:"required,email"`
	Password   string     `json:"password" validate:"required,min=8"`
	FirstName  string     `json:"first_name" validate:"required"`
	LastName   string     `json:"last_name" validate:"required"`
	Role       string     `json:"role" validate:"required"`
	HomeBaseID *uuid.UUID `json:"home_base_id,omitempty"`
}

// RegisterResponse returns the created account.
type RegisterResponse struct {
	User users.UserSummary `json:"user"`
}

// RefreshRequest rotates an expired access token using its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse returns the replacement token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
