package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/garrisonhq/garrison-backend/internal/authz"
	"github.com/garrisonhq/garrison-backend/internal/catalog"
	"github.com/garrisonhq/garrison-backend/pkg/db/models"
	pkgerrors "github.com/garrisonhq/garrison-backend/pkg/errors"
)

type stubCatalogService struct {
	base      *models.Base
	bases     []models.Base
	assetType *models.AssetType
	types     []models.AssetType
	err       error

	deletedBases []uuid.UUID
	deletedTypes []uuid.UUID
}

func (s *stubCatalogService) CreateBase(ctx context.Context, caller authz.Principal, input catalog.CreateBaseInput) (*models.Base, error) {
	return s.base, s.err
}

func (s *stubCatalogService) GetBase(ctx context.Context, id uuid.UUID) (*models.Base, error) {
	return s.base, s.err
}

func (s *stubCatalogService) ListBases(ctx context.Context) ([]models.Base, error) {
	return s.bases, s.err
}

func (s *stubCatalogService) UpdateBase(ctx context.Context, caller authz.Principal, id uuid.UUID, input catalog.UpdateBaseInput) (*models.Base, error) {
	return s.base, s.err
}

func (s *stubCatalogService) DeleteBase(ctx context.Context, caller authz.Principal, id uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.deletedBases = append(s.deletedBases, id)
	return nil
}

func (s *stubCatalogService) CreateAssetType(ctx context.Context, caller authz.Principal, input catalog.CreateAssetTypeInput) (*models.AssetType, error) {
	return s.assetType, s.err
}

func (s *stubCatalogService) GetAssetType(ctx context.Context, id uuid.UUID) (*models.AssetType, error) {
	return s.assetType, s.err
}

func (s *stubCatalogService) ListAssetTypes(ctx context.Context) ([]models.AssetType, error) {
	return s.types, s.err
}

func (s *stubCatalogService) UpdateAssetType(ctx context.Context, caller authz.Principal, id uuid.UUID, input catalog.UpdateAssetTypeInput) (*models.AssetType, error) {
	return s.assetType, s.err
}

func (s *stubCatalogService) DeleteAssetType(ctx context.Context, caller authz.Principal, id uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.deletedTypes = append(s.deletedTypes, id)
	return nil
}

func (s *stubCatalogService) BaseExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.base != nil, s.err
}

func (s *stubCatalogService) AssetTypeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.assetType != nil, s.err
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestBaseCreateSuccess(t *testing.T) {
	created := &models.Base{ID: uuid.New(), Name: "Base Alpha", Location: "Northern District"}
	svc := &stubCatalogService{base: created}

	req := callerContext(httptest.NewRequest(http.MethodPost, "/api/v1/bases", bytes.NewReader([]byte(`{"name":"Base Alpha","location":"Northern District"}`))))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	BaseCreate(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data models.Base `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Name != "Base Alpha" {
		t.Fatalf("expected created base got %+v", envelope.Data)
	}
}

func TestBaseCreateMissingName(t *testing.T) {
	req := callerContext(httptest.NewRequest(http.MethodPost, "/api/v1/bases", bytes.NewReader([]byte(`{"location":"Northern District"}`))))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	BaseCreate(&stubCatalogService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestBaseCreateForbiddenPassesThrough(t *testing.T) {
	svc := &stubCatalogService{err: pkgerrors.New(pkgerrors.CodeForbidden, "catalog changes require admin role")}
	req := callerContext(httptest.NewRequest(http.MethodPost, "/api/v1/bases", bytes.NewReader([]byte(`{"name":"Base Alpha","location":"Northern District"}`))))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	BaseCreate(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestBaseGetInvalidID(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/bases/not-a-uuid", nil), "baseId", "not-a-uuid")
	resp := httptest.NewRecorder()
	BaseGet(&stubCatalogService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestBaseDeleteConflictWhenReferenced(t *testing.T) {
	svc := &stubCatalogService{err: pkgerrors.New(pkgerrors.CodeConflict, "base has recorded transactions")}
	id := uuid.New()
	req := callerContext(withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/bases/"+id.String(), nil), "baseId", id.String()))
	resp := httptest.NewRecorder()
	BaseDelete(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestBaseDeleteSuccess(t *testing.T) {
	svc := &stubCatalogService{}
	id := uuid.New()
	req := callerContext(withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/bases/"+id.String(), nil), "baseId", id.String()))
	resp := httptest.NewRecorder()
	BaseDelete(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(svc.deletedBases) != 1 || svc.deletedBases[0] != id {
		t.Fatalf("expected delete of %s got %v", id, svc.deletedBases)
	}
}

func TestAssetTypeListSuccess(t *testing.T) {
	svc := &stubCatalogService{types: []models.AssetType{
		{ID: uuid.New(), Name: "5.56mm Rounds"},
		{ID: uuid.New(), Name: "Field Radios"},
	}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/asset-types", nil)
	resp := httptest.NewRecorder()
	AssetTypeList(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data []models.AssetType `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected two asset types got %d", len(envelope.Data))
	}
}

func TestAssetTypeUpdateNotFound(t *testing.T) {
	svc := &stubCatalogService{err: pkgerrors.New(pkgerrors.CodeNotFound, "asset type not found")}
	id := uuid.New()
	req := callerContext(withURLParam(httptest.NewRequest(http.MethodPatch, "/api/v1/asset-types/"+id.String(), bytes.NewReader([]byte(`{"name":"Renamed"}`))), "assetTypeId", id.String()))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	AssetTypeUpdate(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
