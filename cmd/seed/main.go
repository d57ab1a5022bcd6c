package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/garrisonhq/garrison-backend/internal/catalog"
	"github.com/garrisonhq/garrison-backend/internal/users"
	"github.com/garrisonhq/garrison-backend/pkg/config"
	"github.com/garrisonhq/garrison-backend/pkg/db"
	"github.com/garrisonhq/garrison-backend/pkg/db/models"
	"github.com/garrisonhq/garrison-backend/pkg/enums"
	"github.com/garrisonhq/garrison-backend/pkg/logger"
	"github.com/garrisonhq/garrison-backend/pkg/migrate"
	"github.com/garrisonhq/garrison-backend/pkg/security"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	adminEmail := strings.ToLower(strings.TrimSpace(os.Getenv("GARRISON_SEED_ADMIN_EMAIL")))
	adminPassword := os.Getenv("GARRISON_SEED_ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		logg.Error(context.Background(), "GARRISON_SEED_ADMIN_EMAIL and GARRISON_SEED_ADMIN_PASSWORD must be set", nil)
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	if err := seedAdmin(ctx, logg, cfg, users.NewRepository(dbClient.DB()), adminEmail, adminPassword); err != nil {
		logg.Error(ctx, "failed to seed admin user", err)
		os.Exit(1)
	}

	if cfg.App.IsDev() {
		if err := seedDemoCatalog(ctx, logg, catalog.NewRepository(dbClient.DB())); err != nil {
			logg.Error(ctx, "failed to seed demo catalog", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "seed complete")
}

func seedAdmin(ctx context.Context, logg *logger.Logger, cfg *config.Config, repo *users.Repository, email, password string) error {
	if _, err := repo.FindByEmail(ctx, email); err == nil {
		logg.Info(logg.WithField(ctx, "email", email), "admin user already present; skipping")
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := security.HashPassword(password, cfg.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin, err := repo.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "System",
		LastName:     "Admin",
		Role:         enums.UserRoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	logg.Info(logg.WithField(ctx, "user_id", admin.ID.String()), "admin user created")
	return nil
}

// seedDemoCatalog loads a small reference catalog for local development.
// Names carry unique indexes, so reruns skip rows that already exist.
func seedDemoCatalog(ctx context.Context, logg *logger.Logger, repo catalog.Repository) error {
	bases := []models.Base{
		{ID: uuid.New(), Name: "Base Alpha", Location: "Northern District"},
		{ID: uuid.New(), Name: "Base Bravo", Location: "Coastal Sector"},
		{ID: uuid.New(), Name: "Base Charlie", Location: "Central Plains"},
	}
	existingBases, err := repo.ListBases(ctx)
	if err != nil {
		return fmt.Errorf("list bases: %w", err)
	}
	baseNames := make(map[string]bool, len(existingBases))
	for _, base := range existingBases {
		baseNames[base.Name] = true
	}
	for i := range bases {
		if baseNames[bases[i].Name] {
			continue
		}
		if err := repo.CreateBase(ctx, &bases[i]); err != nil {
			return fmt.Errorf("create base %q: %w", bases[i].Name, err)
		}
		logg.Info(logg.WithField(ctx, "base", bases[i].Name), "demo base created")
	}

	assetTypes := []models.AssetType{
		{ID: uuid.New(), Name: "5.56mm Rounds", Description: "Standard rifle ammunition"},
		{ID: uuid.New(), Name: "Field Radios", Description: "Handheld encrypted radio sets"},
		{ID: uuid.New(), Name: "Medical Kits", Description: "Individual first aid kits"},
		{ID: uuid.New(), Name: "Light Utility Vehicles", Description: "Four-seat transport vehicles"},
	}
	existingTypes, err := repo.ListAssetTypes(ctx)
	if err != nil {
		return fmt.Errorf("list asset types: %w", err)
	}
	typeNames := make(map[string]bool, len(existingTypes))
	for _, at := range existingTypes {
		typeNames[at.Name] = true
	}
	for i := range assetTypes {
		if typeNames[assetTypes[i].Name] {
			continue
		}
		if err := repo.CreateAssetType(ctx, &assetTypes[i]); err != nil {
			return fmt.Errorf("create asset type %q: %w", assetTypes[i].Name, err)
		}
		logg.Info(logg.WithField(ctx, "asset_type", assetTypes[i].Name), "demo asset type created")
	}
	return nil
}
