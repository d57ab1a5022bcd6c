package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/garrisonhq/garrison-backend/api/middleware"
	"github.com/garrisonhq/garrison-backend/api/responses"
	"github.com/garrisonhq/garrison-backend/api/validators"
	"github.com/garrisonhq/garrison-backend/internal/ledger"
	"github.com/garrisonhq/garrison-backend/pkg/db/models"
	"github.com/garrisonhq/garrison-backend/pkg/enums"
	pkgerrors "github.com/garrisonhq/garrison-backend/pkg/errors"
	"github.com/garrisonhq/garrison-backend/pkg/logger"
	"github.com/garrisonhq/garrison-backend/pkg/pagination"
)

type purchaseRequest struct {
	AssetTypeID uuid.UUID `json:"asset_type_id" validate:"required"`
	BaseID      uuid.UUID `json:"base_id" validate:"required"`
	Quantity    int64     `json:"quantity" validate:"required,gt=0"`
}

type transferRequest struct {
	AssetTypeID uuid.UUID `json:"asset_type_id" validate:"required"`
	FromBaseID  uuid.UUID `json:"from_base_id" validate:"required"`
	ToBaseID    uuid.UUID `json:"to_base_id" validate:"required"`
	Quantity    int64     `json:"quantity" validate:"required,gt=0"`
}

type assignmentRequest struct {
	AssetTypeID uuid.UUID `json:"asset_type_id" validate:"required"`
	BaseID      uuid.UUID `json:"base_id" validate:"required"`
	Quantity    int64     `json:"quantity" validate:"required,gt=0"`
	Recipient   string    `json:"recipient" validate:"required,min=1"`
}

type expenditureRequest struct {
	AssetTypeID uuid.UUID `json:"asset_type_id" validate:"required"`
	BaseID      uuid.UUID `json:"base_id" validate:"required"`
	Quantity    int64     `json:"quantity" validate:"required,gt=0"`
	Recipient   *string   `json:"recipient,omitempty"`
}

type transferResponse struct {
	Out models.Transaction `json:"out"`
	In  models.Transaction `json:"in"`
}

type transactionListResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	NextCursor   string               `json:"next_cursor,omitempty"`
}

// TransactionPurchase records new stock arriving at a base.
func TransactionPurchase(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		caller, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller context missing"))
			return
		}

		var body purchaseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.RecordSimple(r.Context(), caller, ledger.RecordSimpleInput{
			Kind:        enums.TransactionKindPurchase,
			AssetTypeID: body.AssetTypeID,
			Quantity:    body.Quantity,
			BaseID:      body.BaseID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

// TransactionTransfer records a movement between two bases as a linked pair.
func TransactionTransfer(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		caller, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller context missing"))
			return
		}

		var body transferRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pair, err := svc.RecordTransfer(r.Context(), caller, ledger.RecordTransferInput{
			AssetTypeID: body.AssetTypeID,
			Quantity:    body.Quantity,
			FromBaseID:  body.FromBaseID,
			ToBaseID:    body.ToBaseID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, transferResponse{Out: pair.Out, In: pair.In})
	}
}

// TransactionAssignment records stock handed to named personnel.
func TransactionAssignment(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		caller, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller context missing"))
			return
		}

		var body assignmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipient := strings.TrimSpace(body.Recipient)
		txn, err := svc.RecordSimple(r.Context(), caller, ledger.RecordSimpleInput{
			Kind:        enums.TransactionKindAssignment,
			AssetTypeID: body.AssetTypeID,
			Quantity:    body.Quantity,
			BaseID:      body.BaseID,
			Recipient:   &recipient,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

// TransactionExpenditure records stock consumed at a base.
func TransactionExpenditure(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		caller, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller context missing"))
			return
		}

		var body expenditureRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.RecordSimple(r.Context(), caller, ledger.RecordSimpleInput{
			Kind:        enums.TransactionKindExpenditure,
			AssetTypeID: body.AssetTypeID,
			Quantity:    body.Quantity,
			BaseID:      body.BaseID,
			Recipient:   body.Recipient,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

// TransactionList scans the ledger with optional filters and cursor paging.
func TransactionList(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		caller, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller context missing"))
			return
		}

		input, err := parseQueryInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txns, nextCursor, err := svc.QueryPage(r.Context(), caller, input, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transactionListResponse{Transactions: txns, NextCursor: nextCursor})
	}
}

func parseQueryInput(r *http.Request) (ledger.QueryInput, error) {
	baseID, err := validators.ParseQueryUUID(r, "base_id")
	if err != nil {
		return ledger.QueryInput{}, err
	}
	assetTypeID, err := validators.ParseQueryUUID(r, "asset_type_id")
	if err != nil {
		return ledger.QueryInput{}, err
	}
	start, err := validators.ParseQueryTime(r, "start_date")
	if err != nil {
		return ledger.QueryInput{}, err
	}
	end, err := validators.ParseQueryTime(r, "end_date")
	if err != nil {
		return ledger.QueryInput{}, err
	}
	kinds, err := validators.ParseQueryKinds(r, "kinds")
	if err != nil {
		return ledger.QueryInput{}, err
	}
	return ledger.QueryInput{
		BaseID:      baseID,
		AssetTypeID: assetTypeID,
		Start:       start,
		End:         end,
		Kinds:       kinds,
	}, nil
}
