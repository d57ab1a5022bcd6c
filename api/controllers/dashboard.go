package controllers

import (
	"net/http"

	"github.com/garrisonhq/garrison-backend/api/middleware"
	"github.com/garrisonhq/garrison-backend/api/responses"
	"github.com/garrisonhq/garrison-backend/api/validators"
	"github.com/garrisonhq/garrison-backend/internal/balance"
	"github.com/garrisonhq/garrison-backend/internal/ledger"
	"github.com/garrisonhq/garrison-backend/pkg/db/models"
	pkgerrors "github.com/garrisonhq/garrison-backend/pkg/errors"
	"github.com/garrisonhq/garrison-backend/pkg/logger"
	"github.com/garrisonhq/garrison-backend/pkg/pagination"
)

const recentTransactionCount = 5

type metricsResponse struct {
	Metrics      *balance.Metrics     `json:"metrics"`
	Transactions []models.Transaction `json:"transactions"`
}

type summaryResponse struct {
	TotalOnHand int64                `json:"total_on_hand"`
	StockLevels []balance.StockLevel `json:"stock_levels"`
	Recent      []models.Transaction `json:"recent_transactions"`
}

// DashboardMetrics reports opening/closing balances and movement buckets for
// the requested window, alongside the in-window transactions.
func DashboardMetrics(svc balance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "balance service unavailable"))
			return
		}

		caller, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller context missing"))
			return
		}

		baseID, err := validators.ParseQueryUUID(r, "base_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		assetTypeID, err := validators.ParseQueryUUID(r, "asset_type_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		start, err := validators.ParseQueryTime(r, "start_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryTime(r, "end_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		metrics, window, err := svc.ComputeMetrics(r.Context(), caller, balance.MetricsInput{
			BaseID:      baseID,
			AssetTypeID: assetTypeID,
			Start:       start,
			End:         end,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, metricsResponse{Metrics: metrics, Transactions: window})
	}
}

// DashboardStock reports derived on-hand quantities per base and asset type.
func DashboardStock(svc balance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "balance service unavailable"))
			return
		}

		caller, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller context missing"))
			return
		}

		baseID, err := validators.ParseQueryUUID(r, "base_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		assetTypeID, err := validators.ParseQueryUUID(r, "asset_type_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		asOf, err := validators.ParseQueryTime(r, "as_of")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		levels, err := svc.StockLevels(r.Context(), caller, balance.StockInput{
			BaseID:      baseID,
			AssetTypeID: assetTypeID,
			AsOf:        asOf,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, levels)
	}
}

// DashboardSummary combines total on-hand stock with the most recent activity.
func DashboardSummary(balances balance.Service, txns ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if balances == nil || txns == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard services unavailable"))
			return
		}

		caller, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller context missing"))
			return
		}

		baseID, err := validators.ParseQueryUUID(r, "base_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		levels, err := balances.StockLevels(r.Context(), caller, balance.StockInput{BaseID: baseID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var total int64
		for _, level := range levels {
			total += level.Quantity
		}

		recent, _, err := txns.QueryPage(r.Context(), caller, ledger.QueryInput{BaseID: baseID}, pagination.Params{
			Limit: recentTransactionCount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summaryResponse{TotalOnHand: total, StockLevels: levels, Recent: recent})
	}
}
