package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/garrisonhq/garrison-backend/internal/authz"
	"github.com/garrisonhq/garrison-backend/pkg/auth"
	"github.com/garrisonhq/garrison-backend/pkg/auth/session"
	"github.com/garrisonhq/garrison-backend/pkg/config"
	"github.com/garrisonhq/garrison-backend/pkg/enums"
)

func TestAuthRejectsMissingToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	handler := Auth(cfg, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	handler := Auth(cfg, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
	baseID := uuid.New()
	token := mintTestToken(t, cfg, enums.UserRoleBaseCommander, &baseID)

	handler := Auth(cfg, stubSessionVerifier{ok: false}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsPrincipal(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
	baseID := uuid.New()
	token := mintTestToken(t, cfg, enums.UserRoleBaseCommander, &baseID)

	var captured authz.Principal
	var capturedOK bool
	handler := Auth(cfg, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, capturedOK = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !capturedOK {
		t.Fatal("expected principal in context")
	}
	if captured.Role != enums.UserRoleBaseCommander {
		t.Fatalf("expected commander role got %s", captured.Role)
	}
	if captured.HomeBaseID == nil || *captured.HomeBaseID != baseID {
		t.Fatalf("expected home base %s got %v", baseID, captured.HomeBaseID)
	}
}

func TestAuthAllowsAdminWithoutHomeBase(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
	token := mintTestToken(t, cfg, enums.UserRoleAdmin, nil)

	var captured authz.Principal
	handler := Auth(cfg, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin role got %s", captured.Role)
	}
	if captured.HomeBaseID != nil {
		t.Fatalf("expected nil home base got %v", captured.HomeBaseID)
	}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, role enums.UserRole, homeBaseID *uuid.UUID) string {
	t.Helper()
	payload := auth.AccessTokenPayload{
		UserID:     uuid.New(),
		Role:       role,
		HomeBaseID: homeBaseID,
		JTI:        session.NewAccessID(),
	}
	token, err := auth.MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(ctx context.Context, accessID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.ok, nil
}
