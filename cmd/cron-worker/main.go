package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/garrisonhq/garrison-backend/internal/balance"
	"github.com/garrisonhq/garrison-backend/internal/ledger"
	"github.com/garrisonhq/garrison-backend/internal/maintenance"
	"github.com/garrisonhq/garrison-backend/pkg/config"
	"github.com/garrisonhq/garrison-backend/pkg/db"
	"github.com/garrisonhq/garrison-backend/pkg/logger"
	"github.com/garrisonhq/garrison-backend/pkg/metrics"
	"github.com/garrisonhq/garrison-backend/pkg/migrate"
	"github.com/garrisonhq/garrison-backend/pkg/redis"
)

const lockKeyFormat = "garrison:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	ledgerRepo := ledger.NewRepository(dbClient.DB())

	balanceService, err := balance.NewService(ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create balance service", err)
		os.Exit(1)
	}

	transferAudit, err := maintenance.NewTransferAuditJob(maintenance.TransferAuditJobParams{
		Logger: logg,
		Ledger: ledgerRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create transfer audit job", err)
		os.Exit(1)
	}

	stockReport, err := maintenance.NewStockReportJob(maintenance.StockReportJobParams{
		Logger:   logg,
		Balances: balanceService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stock report job", err)
		os.Exit(1)
	}

	lock, err := maintenance.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Maintenance.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create maintenance lock", err)
		os.Exit(1)
	}

	runner, err := maintenance.NewRunner(maintenance.RunnerParams{
		Logger:   logg,
		Registry: maintenance.NewRegistry(transferAudit, stockReport),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Maintenance.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create maintenance runner", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting cron worker")

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
