package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/garrisonhq/garrison-backend/pkg/enums"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	usersTable := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT,
  last_name TEXT,
  role TEXT NOT NULL,
  home_base_id TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(usersTable).Error)
	return db
}

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	ctx := context.Background()
	homeBase := uuid.New()

	user, err := repo.Create(ctx, CreateUserDTO{
		Email:        "  Commander@Example.COM ",
		PasswordHash: "$argon2id$v=19$m=8,t=1,p=1$c2FsdA$aGFzaA",
		FirstName:    "Jordan",
		LastName:     "Reyes",
		Role:         enums.UserRoleBaseCommander,
		HomeBaseID:   &homeBase,
	})
	require.NoError(t, err)
	assert.Equal(t, "commander@example.com", user.Email)
	assert.True(t, user.IsActive)

	byEmail, err := repo.FindByEmail(ctx, "commander@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	require.NotNil(t, byEmail.HomeBaseID)
	assert.Equal(t, homeBase, *byEmail.HomeBaseID)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)
}

func TestRepositoryUpdateLastLogin(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{
		Email:        "admin@example.com",
		PasswordHash: "hash",
		Role:         enums.UserRoleAdmin,
	})
	require.NoError(t, err)
	require.Nil(t, user.LastLoginAt)

	at := time.Date(2026, 6, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	assert.True(t, at.Equal(*reloaded.LastLoginAt))
}
