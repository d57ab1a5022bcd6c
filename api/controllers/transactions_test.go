package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/garrisonhq/garrison-backend/api/middleware"
	"github.com/garrisonhq/garrison-backend/internal/authz"
	"github.com/garrisonhq/garrison-backend/internal/ledger"
	"github.com/garrisonhq/garrison-backend/pkg/db/models"
	"github.com/garrisonhq/garrison-backend/pkg/enums"
	pkgerrors "github.com/garrisonhq/garrison-backend/pkg/errors"
	"github.com/garrisonhq/garrison-backend/pkg/pagination"
)

type stubLedgerService struct {
	simpleInputs   []ledger.RecordSimpleInput
	transferInputs []ledger.RecordTransferInput
	queryInputs    []ledger.QueryInput
	pageParams     []pagination.Params

	txn        *models.Transaction
	pair       *ledger.TransferPair
	list       []models.Transaction
	nextCursor string
	err        error
}

func (s *stubLedgerService) RecordSimple(ctx context.Context, caller authz.Principal, input ledger.RecordSimpleInput) (*models.Transaction, error) {
	s.simpleInputs = append(s.simpleInputs, input)
	return s.txn, s.err
}

func (s *stubLedgerService) RecordTransfer(ctx context.Context, caller authz.Principal, input ledger.RecordTransferInput) (*ledger.TransferPair, error) {
	s.transferInputs = append(s.transferInputs, input)
	return s.pair, s.err
}

func (s *stubLedgerService) Query(ctx context.Context, caller authz.Principal, input ledger.QueryInput) ([]models.Transaction, error) {
	s.queryInputs = append(s.queryInputs, input)
	return s.list, s.err
}

func (s *stubLedgerService) QueryPage(ctx context.Context, caller authz.Principal, input ledger.QueryInput, page pagination.Params) ([]models.Transaction, string, error) {
	s.queryInputs = append(s.queryInputs, input)
	s.pageParams = append(s.pageParams, page)
	return s.list, s.nextCursor, s.err
}

func callerContext(req *http.Request) *http.Request {
	principal := authz.Principal{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	return req.WithContext(middleware.WithPrincipal(req.Context(), principal))
}

func TestTransactionPurchaseSuccess(t *testing.T) {
	baseID := uuid.New()
	assetID := uuid.New()
	created := &models.Transaction{
		ID:          uuid.New(),
		Kind:        enums.TransactionKindPurchase,
		AssetTypeID: assetID,
		Quantity:    40,
		ToBaseID:    &baseID,
		OccurredAt:  time.Now().UTC(),
	}
	svc := &stubLedgerService{txn: created}

	body := `{"asset_type_id":"` + assetID.String() + `","base_id":"` + baseID.String() + `","quantity":40}`
	req := callerContext(httptest.NewRequest(http.MethodPost, "/api/v1/transactions/purchase", bytes.NewReader([]byte(body))))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	TransactionPurchase(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.simpleInputs) != 1 {
		t.Fatalf("expected one record call got %d", len(svc.simpleInputs))
	}
	input := svc.simpleInputs[0]
	if input.Kind != enums.TransactionKindPurchase {
		t.Fatalf("expected purchase kind got %s", input.Kind)
	}
	if input.BaseID != baseID || input.AssetTypeID != assetID || input.Quantity != 40 {
		t.Fatalf("unexpected input %+v", input)
	}
}

func TestTransactionPurchaseRejectsNonPositiveQuantity(t *testing.T) {
	svc := &stubLedgerService{}
	body := `{"asset_type_id":"` + uuid.NewString() + `","base_id":"` + uuid.NewString() + `","quantity":0}`
	req := callerContext(httptest.NewRequest(http.MethodPost, "/api/v1/transactions/purchase", bytes.NewReader([]byte(body))))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	TransactionPurchase(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if len(svc.simpleInputs) != 0 {
		t.Fatalf("service should not be called on invalid payload")
	}
}

func TestTransactionPurchaseRequiresPrincipal(t *testing.T) {
	body := `{"asset_type_id":"` + uuid.NewString() + `","base_id":"` + uuid.NewString() + `","quantity":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/purchase", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	TransactionPurchase(&stubLedgerService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestTransactionTransferSuccess(t *testing.T) {
	fromID := uuid.New()
	toID := uuid.New()
	assetID := uuid.New()
	group := uuid.New()
	pair := &ledger.TransferPair{
		Out: models.Transaction{ID: uuid.New(), Kind: enums.TransactionKindTransferOut, FromBaseID: &fromID, CounterpartyBaseID: &toID, TransferGroupID: &group},
		In:  models.Transaction{ID: uuid.New(), Kind: enums.TransactionKindTransferIn, ToBaseID: &toID, CounterpartyBaseID: &fromID, TransferGroupID: &group},
	}
	svc := &stubLedgerService{pair: pair}

	body := `{"asset_type_id":"` + assetID.String() + `","from_base_id":"` + fromID.String() + `","to_base_id":"` + toID.String() + `","quantity":15}`
	req := callerContext(httptest.NewRequest(http.MethodPost, "/api/v1/transactions/transfer", bytes.NewReader([]byte(body))))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	TransactionTransfer(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data transferResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Out.Kind != enums.TransactionKindTransferOut || envelope.Data.In.Kind != enums.TransactionKindTransferIn {
		t.Fatalf("unexpected pair kinds: %+v", envelope.Data)
	}
	if envelope.Data.Out.TransferGroupID == nil || envelope.Data.In.TransferGroupID == nil ||
		*envelope.Data.Out.TransferGroupID != *envelope.Data.In.TransferGroupID {
		t.Fatal("expected both halves to share a transfer group")
	}
}

func TestTransactionTransferForbiddenPassesThrough(t *testing.T) {
	svc := &stubLedgerService{err: pkgerrors.New(pkgerrors.CodeForbidden, "operators are pinned to their home base")}
	body := `{"asset_type_id":"` + uuid.NewString() + `","from_base_id":"` + uuid.NewString() + `","to_base_id":"` + uuid.NewString() + `","quantity":15}`
	req := callerContext(httptest.NewRequest(http.MethodPost, "/api/v1/transactions/transfer", bytes.NewReader([]byte(body))))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	TransactionTransfer(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestTransactionAssignmentRequiresRecipient(t *testing.T) {
	svc := &stubLedgerService{}
	body := `{"asset_type_id":"` + uuid.NewString() + `","base_id":"` + uuid.NewString() + `","quantity":3}`
	req := callerContext(httptest.NewRequest(http.MethodPost, "/api/v1/transactions/assignment", bytes.NewReader([]byte(body))))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	TransactionAssignment(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestTransactionAssignmentPassesRecipient(t *testing.T) {
	baseID := uuid.New()
	svc := &stubLedgerService{txn: &models.Transaction{ID: uuid.New(), Kind: enums.TransactionKindAssignment, FromBaseID: &baseID}}
	body := `{"asset_type_id":"` + uuid.NewString() + `","base_id":"` + baseID.String() + `","quantity":3,"recipient":"Sgt. Alvarez"}`
	req := callerContext(httptest.NewRequest(http.MethodPost, "/api/v1/transactions/assignment", bytes.NewReader([]byte(body))))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	TransactionAssignment(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if len(svc.simpleInputs) != 1 {
		t.Fatalf("expected one record call got %d", len(svc.simpleInputs))
	}
	input := svc.simpleInputs[0]
	if input.Kind != enums.TransactionKindAssignment {
		t.Fatalf("expected assignment kind got %s", input.Kind)
	}
	if input.Recipient == nil || *input.Recipient != "Sgt. Alvarez" {
		t.Fatalf("expected recipient carried through got %v", input.Recipient)
	}
}

func TestTransactionExpenditureSuccess(t *testing.T) {
	baseID := uuid.New()
	svc := &stubLedgerService{txn: &models.Transaction{ID: uuid.New(), Kind: enums.TransactionKindExpenditure, FromBaseID: &baseID}}
	body := `{"asset_type_id":"` + uuid.NewString() + `","base_id":"` + baseID.String() + `","quantity":7}`
	req := callerContext(httptest.NewRequest(http.MethodPost, "/api/v1/transactions/expenditure", bytes.NewReader([]byte(body))))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	TransactionExpenditure(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.simpleInputs[0].Kind != enums.TransactionKindExpenditure {
		t.Fatalf("expected expenditure kind got %s", svc.simpleInputs[0].Kind)
	}
}

func TestTransactionListParsesFilters(t *testing.T) {
	baseID := uuid.New()
	assetID := uuid.New()
	svc := &stubLedgerService{list: []models.Transaction{}, nextCursor: "cursor-token"}

	url := "/api/v1/transactions?base_id=" + baseID.String() +
		"&asset_type_id=" + assetID.String() +
		"&start_date=2026-01-01&end_date=2026-02-01" +
		"&kinds=PURCHASE,TRANSFER_IN&limit=10"
	req := callerContext(httptest.NewRequest(http.MethodGet, url, nil))
	resp := httptest.NewRecorder()
	TransactionList(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.queryInputs) != 1 {
		t.Fatalf("expected one query got %d", len(svc.queryInputs))
	}
	input := svc.queryInputs[0]
	if input.BaseID == nil || *input.BaseID != baseID {
		t.Fatalf("expected base filter got %v", input.BaseID)
	}
	if input.AssetTypeID == nil || *input.AssetTypeID != assetID {
		t.Fatalf("expected asset filter got %v", input.AssetTypeID)
	}
	if input.Start == nil || input.End == nil {
		t.Fatal("expected date range parsed")
	}
	if len(input.Kinds) != 2 || input.Kinds[0] != enums.TransactionKindPurchase || input.Kinds[1] != enums.TransactionKindTransferIn {
		t.Fatalf("unexpected kinds %v", input.Kinds)
	}
	if svc.pageParams[0].Limit != 10 {
		t.Fatalf("expected limit 10 got %d", svc.pageParams[0].Limit)
	}

	var envelope struct {
		Data transactionListResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.NextCursor != "cursor-token" {
		t.Fatalf("expected cursor echoed got %q", envelope.Data.NextCursor)
	}
}

func TestTransactionListRejectsUnknownKind(t *testing.T) {
	svc := &stubLedgerService{}
	req := callerContext(httptest.NewRequest(http.MethodGet, "/api/v1/transactions?kinds=DONATION", nil))
	resp := httptest.NewRecorder()
	TransactionList(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if len(svc.queryInputs) != 0 {
		t.Fatal("service should not be called on invalid filter")
	}
}
