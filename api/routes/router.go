package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/garrisonhq/garrison-backend/api/controllers"
	"github.com/garrisonhq/garrison-backend/api/middleware"
	"github.com/garrisonhq/garrison-backend/internal/auth"
	"github.com/garrisonhq/garrison-backend/internal/balance"
	"github.com/garrisonhq/garrison-backend/internal/catalog"
	"github.com/garrisonhq/garrison-backend/internal/ledger"
	"github.com/garrisonhq/garrison-backend/pkg/auth/session"
	"github.com/garrisonhq/garrison-backend/pkg/config"
	"github.com/garrisonhq/garrison-backend/pkg/enums"
	"github.com/garrisonhq/garrison-backend/pkg/logger"
	"github.com/garrisonhq/garrison-backend/pkg/metrics"
	"github.com/garrisonhq/garrison-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	catalogService catalog.Service,
	ledgerService ledger.Service,
	balanceService balance.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware)
		r.Handle("/metrics", httpMetrics.Handler())
	}

	// Typed nil pointers must not reach the middleware interface checks.
	var cachePinger controllers.Pinger
	var idemStore redis.IdempotencyStore
	if redisClient != nil {
		cachePinger = redisClient
		idemStore = redisClient
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cachePinger, logg))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.AuthLogin(authService, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, redisClient, logg),
			middleware.Idempotency(idemStore, cfg.Ledger, logg),
		).Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).
			Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(idemStore, cfg.Ledger, logg))

		r.Get("/ping", controllers.PrivatePing())

		adminOnly := middleware.RequireRole(enums.UserRoleAdmin, logg)

		r.Route("/v1/bases", func(r chi.Router) {
			r.Get("/", controllers.BaseList(catalogService, logg))
			r.Get("/{baseId}", controllers.BaseGet(catalogService, logg))
			r.With(adminOnly).Post("/", controllers.BaseCreate(catalogService, logg))
			r.With(adminOnly).Patch("/{baseId}", controllers.BaseUpdate(catalogService, logg))
			r.With(adminOnly).Delete("/{baseId}", controllers.BaseDelete(catalogService, logg))
		})

		r.Route("/v1/asset-types", func(r chi.Router) {
			r.Get("/", controllers.AssetTypeList(catalogService, logg))
			r.Get("/{assetTypeId}", controllers.AssetTypeGet(catalogService, logg))
			r.With(adminOnly).Post("/", controllers.AssetTypeCreate(catalogService, logg))
			r.With(adminOnly).Patch("/{assetTypeId}", controllers.AssetTypeUpdate(catalogService, logg))
			r.With(adminOnly).Delete("/{assetTypeId}", controllers.AssetTypeDelete(catalogService, logg))
		})

		r.Route("/v1/transactions", func(r chi.Router) {
			r.Get("/", controllers.TransactionList(ledgerService, logg))
			r.Post("/purchase", controllers.TransactionPurchase(ledgerService, logg))
			r.Post("/transfer", controllers.TransactionTransfer(ledgerService, logg))
			r.Post("/assignment", controllers.TransactionAssignment(ledgerService, logg))
			r.Post("/expenditure", controllers.TransactionExpenditure(ledgerService, logg))
		})

		r.Route("/v1/dashboard", func(r chi.Router) {
			r.Get("/metrics", controllers.DashboardMetrics(balanceService, logg))
			r.Get("/stock", controllers.DashboardStock(balanceService, logg))
			r.Get("/summary", controllers.DashboardSummary(balanceService, ledgerService, logg))
		})
	})

	return r
}
