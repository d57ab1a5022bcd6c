package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/garrisonhq/garrison-backend/internal/users"
	pkgAuth "github.com/garrisonhq/garrison-backend/pkg/auth"
	"github.com/garrisonhq/garrison-backend/pkg/auth/session"
	"github.com/garrisonhq/garrison-backend/pkg/config"
	"github.com/garrisonhq/garrison-backend/pkg/db/models"
	"github.com/garrisonhq/garrison-backend/pkg/enums"
	pkgerrors "github.com/garrisonhq/garrison-backend/pkg/errors"
	"github.com/garrisonhq/garrison-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	Logout(ctx context.Context, accessID string) error
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type baseChecker interface {
	BaseExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	users       userRepository
	bases       baseChecker
	session     sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	BaseChecker    baseChecker
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.BaseChecker == nil {
		return nil, fmt.Errorf("base checker is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		users:       params.UserRepo,
		bases:       params.BaseChecker,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	now, err := s.recordLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:     user.ID,
		Role:       user.Role,
		HomeBaseID: user.HomeBaseID,
		JTI:        accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	role, err := enums.ParseUserRole(req.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role")
	}

	homeBaseID := req.HomeBaseID
	if role.RequiresHomeBase() {
		if homeBaseID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "home_base_id required for this role")
		}
		ok, err := s.bases.BaseExists(ctx, *homeBaseID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check home base")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown base")
		}
	} else {
		// Admins roam every base; a pinned home base would be misleading.
		homeBaseID = nil
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		HomeBaseID:   homeBaseID,
	})
	if err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return &RegisterResponse{User: users.FromModel(user)}, nil
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefresh, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:     claims.UserID,
		Role:       claims.Role,
		HomeBaseID: claims.HomeBaseID,
		JTI:        newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &RefreshResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) recordLogin(ctx context.Context, user *models.User) (time.Time, error) {
	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now
	return now, nil
}
