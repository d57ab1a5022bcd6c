package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/garrisonhq/garrison-backend/internal/auth"
	"github.com/garrisonhq/garrison-backend/internal/authz"
	"github.com/garrisonhq/garrison-backend/internal/balance"
	"github.com/garrisonhq/garrison-backend/internal/catalog"
	"github.com/garrisonhq/garrison-backend/internal/ledger"
	pkgAuth "github.com/garrisonhq/garrison-backend/pkg/auth"
	"github.com/garrisonhq/garrison-backend/pkg/auth/session"
	"github.com/garrisonhq/garrison-backend/pkg/config"
	"github.com/garrisonhq/garrison-backend/pkg/db/models"
	"github.com/garrisonhq/garrison-backend/pkg/enums"
	"github.com/garrisonhq/garrison-backend/pkg/logger"
	"github.com/garrisonhq/garrison-backend/pkg/metrics"
	"github.com/garrisonhq/garrison-backend/pkg/pagination"
	"github.com/garrisonhq/garrison-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	return &auth.RegisterResponse{}, nil
}

func (stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return &auth.RefreshResponse{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubCatalogService struct{}

func (stubCatalogService) CreateBase(ctx context.Context, caller authz.Principal, input catalog.CreateBaseInput) (*models.Base, error) {
	return &models.Base{ID: uuid.New(), Name: input.Name, Location: input.Location}, nil
}

func (stubCatalogService) GetBase(ctx context.Context, id uuid.UUID) (*models.Base, error) {
	return &models.Base{ID: id}, nil
}

func (stubCatalogService) ListBases(ctx context.Context) ([]models.Base, error) {
	return nil, nil
}

func (stubCatalogService) UpdateBase(ctx context.Context, caller authz.Principal, id uuid.UUID, input catalog.UpdateBaseInput) (*models.Base, error) {
	return &models.Base{ID: id}, nil
}

func (stubCatalogService) DeleteBase(ctx context.Context, caller authz.Principal, id uuid.UUID) error {
	return nil
}

func (stubCatalogService) CreateAssetType(ctx context.Context, caller authz.Principal, input catalog.CreateAssetTypeInput) (*models.AssetType, error) {
	return &models.AssetType{ID: uuid.New(), Name: input.Name}, nil
}

func (stubCatalogService) GetAssetType(ctx context.Context, id uuid.UUID) (*models.AssetType, error) {
	return &models.AssetType{ID: id}, nil
}

func (stubCatalogService) ListAssetTypes(ctx context.Context) ([]models.AssetType, error) {
	return nil, nil
}

func (stubCatalogService) UpdateAssetType(ctx context.Context, caller authz.Principal, id uuid.UUID, input catalog.UpdateAssetTypeInput) (*models.AssetType, error) {
	return &models.AssetType{ID: id}, nil
}

func (stubCatalogService) DeleteAssetType(ctx context.Context, caller authz.Principal, id uuid.UUID) error {
	return nil
}

func (stubCatalogService) BaseExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return true, nil
}

func (stubCatalogService) AssetTypeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return true, nil
}

type stubLedgerService struct{}

func (stubLedgerService) RecordSimple(ctx context.Context, caller authz.Principal, input ledger.RecordSimpleInput) (*models.Transaction, error) {
	return &models.Transaction{ID: uuid.New(), Kind: input.Kind}, nil
}

func (stubLedgerService) RecordTransfer(ctx context.Context, caller authz.Principal, input ledger.RecordTransferInput) (*ledger.TransferPair, error) {
	return &ledger.TransferPair{}, nil
}

func (stubLedgerService) Query(ctx context.Context, caller authz.Principal, input ledger.QueryInput) ([]models.Transaction, error) {
	return nil, nil
}

func (stubLedgerService) QueryPage(ctx context.Context, caller authz.Principal, input ledger.QueryInput, page pagination.Params) ([]models.Transaction, string, error) {
	return nil, "", nil
}

type stubBalanceService struct{}

func (stubBalanceService) ComputeMetrics(ctx context.Context, caller authz.Principal, input balance.MetricsInput) (*balance.Metrics, []models.Transaction, error) {
	return &balance.Metrics{}, nil, nil
}

func (stubBalanceService) StockLevels(ctx context.Context, caller authz.Principal, input balance.StockInput) ([]balance.StockLevel, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
		Ledger: config.LedgerConfig{IdempotencyTTL: time.Hour},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubSessionChecker{},
		metrics.NewHTTPMetrics(),
		stubAuthService{},
		stubCatalogService{},
		stubLedgerService{},
		stubBalanceService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole, homeBaseID *uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:     uuid.New(),
		Role:       role,
		HomeBaseID: homeBaseID,
		JTI:        session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestHealthReadyChecksDependencies(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPublicPingNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	baseID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleBaseCommander, &baseID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestCatalogMutationRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	baseID := uuid.New()

	nonAdmin := httptest.NewRequest(http.MethodPost, "/api/v1/bases", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleBaseCommander, &baseID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/bases", nil)
	listReq.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleBaseCommander, &baseID))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, listReq)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for read got %d", resp.Code)
	}
}

func TestLedgerReadWired(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for ledger read got %d", resp.Code)
	}
}

func TestDashboardRoutesWired(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	for _, path := range []string{"/api/v1/dashboard/metrics", "/api/v1/dashboard/stock", "/api/v1/dashboard/summary"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin, nil))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
