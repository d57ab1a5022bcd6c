package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/garrisonhq/garrison-backend/api/routes"
	"github.com/garrisonhq/garrison-backend/internal/auth"
	"github.com/garrisonhq/garrison-backend/internal/balance"
	"github.com/garrisonhq/garrison-backend/internal/catalog"
	"github.com/garrisonhq/garrison-backend/internal/ledger"
	"github.com/garrisonhq/garrison-backend/internal/users"
	"github.com/garrisonhq/garrison-backend/pkg/auth/session"
	"github.com/garrisonhq/garrison-backend/pkg/config"
	"github.com/garrisonhq/garrison-backend/pkg/db"
	"github.com/garrisonhq/garrison-backend/pkg/logger"
	"github.com/garrisonhq/garrison-backend/pkg/metrics"
	"github.com/garrisonhq/garrison-backend/pkg/migrate"
	"github.com/garrisonhq/garrison-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())

	catalogService, err := catalog.NewService(catalogRepo, ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledgerRepo, catalogService, dbClient, cfg.Ledger)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	balanceService, err := balance.NewService(ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create balance service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		BaseChecker:    catalogService,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			httpMetrics,
			authService,
			catalogService,
			ledgerService,
			balanceService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
