package balance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/garrisonhq/garrison-backend/internal/authz"
	"github.com/garrisonhq/garrison-backend/internal/ledger"
	"github.com/garrisonhq/garrison-backend/pkg/db/models"
	"github.com/garrisonhq/garrison-backend/pkg/enums"
	pkgerrors "github.com/garrisonhq/garrison-backend/pkg/errors"
)

// Source is the slice of the ledger the balance engine reads from.
type Source interface {
	List(ctx context.Context, filter ledger.Filter) ([]models.Transaction, error)
}

// Metrics aggregates movement over a window. Balances are derived from the
// full history every time; nothing here is ever persisted.
type Metrics struct {
	Purchases   int64 `json:"purchases"`
	TransferIn  int64 `json:"transfer_in"`
	TransferOut int64 `json:"transfer_out"`
	Assigned    int64 `json:"assigned"`
	Expended    int64 `json:"expended"`

	// NetMovement is purchases + transfer_in - transfer_out - expended.
	// Assignments move stock out of the balance but are tracked separately,
	// so they do not participate in net movement.
	NetMovement    int64 `json:"net_movement"`
	OpeningBalance int64 `json:"opening_balance"`
	ClosingBalance int64 `json:"closing_balance"`
}

// MetricsInput is the requested reporting scope before authorization narrows it.
type MetricsInput struct {
	BaseID      *uuid.UUID
	AssetTypeID *uuid.UUID
	Start       *time.Time
	End         *time.Time
}

// StockInput scopes a current-stock read.
type StockInput struct {
	BaseID      *uuid.UUID
	AssetTypeID *uuid.UUID
	AsOf        *time.Time
}

// StockLevel is the derived on-hand quantity for one base and asset type.
type StockLevel struct {
	BaseID      uuid.UUID `json:"base_id"`
	AssetTypeID uuid.UUID `json:"asset_type_id"`
	Quantity    int64     `json:"quantity"`
}

// Service derives balances and movement metrics from the transaction history.
type Service interface {
	ComputeMetrics(ctx context.Context, caller authz.Principal, input MetricsInput) (*Metrics, []models.Transaction, error)
	StockLevels(ctx context.Context, caller authz.Principal, input StockInput) ([]StockLevel, error)
}

type service struct {
	source Source
}

// NewService wires the balance engine to its transaction source.
func NewService(source Source) (Service, error) {
	if source == nil {
		return nil, fmt.Errorf("transaction source required")
	}
	return &service{source: source}, nil
}

// ComputeMetrics walks every transaction in scope up to the range end in one
// pass: the running signed sum gives the closing balance, transactions inside
// the window feed the per-kind buckets, and the opening balance falls out as
// closing minus window net movement. It also returns the window's transactions
// so callers can show the rows behind the numbers.
func (s *service) ComputeMetrics(ctx context.Context, caller authz.Principal, input MetricsInput) (*Metrics, []models.Transaction, error) {
	scope, err := authz.ResolveScope(caller, authz.Scope{
		BaseID:      input.BaseID,
		AssetTypeID: input.AssetTypeID,
		Start:       input.Start,
		End:         input.End,
	})
	if err != nil {
		return nil, nil, err
	}
	if scope.Start != nil && scope.End != nil && scope.End.Before(*scope.Start) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "range end precedes range start")
	}

	// The closing balance needs history from the beginning of time, so the
	// scan is bounded only at the range end.
	history, err := s.source.List(ctx, ledger.Filter{
		BaseID:      scope.BaseID,
		AssetTypeID: scope.AssetTypeID,
		End:         scope.End,
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan ledger history")
	}

	var (
		m      Metrics
		window []models.Transaction
	)
	for _, txn := range history {
		m.ClosingBalance += txn.Kind.Sign() * txn.Quantity

		if scope.Start != nil && txn.OccurredAt.Before(*scope.Start) {
			continue
		}
		window = append(window, txn)

		switch txn.Kind {
		case enums.TransactionKindPurchase:
			m.Purchases += txn.Quantity
		case enums.TransactionKindTransferIn:
			m.TransferIn += txn.Quantity
		case enums.TransactionKindTransferOut:
			m.TransferOut += txn.Quantity
		case enums.TransactionKindAssignment:
			m.Assigned += txn.Quantity
		case enums.TransactionKindExpenditure:
			m.Expended += txn.Quantity
		}
	}

	m.NetMovement = m.Purchases + m.TransferIn - m.TransferOut - m.Expended
	m.OpeningBalance = m.ClosingBalance - m.NetMovement
	return &m, window, nil
}

// StockLevels derives the current on-hand quantity for every base and asset
// type in scope by summing the signed history. Rows that net to zero are kept
// so a base that drained its stock still shows up.
func (s *service) StockLevels(ctx context.Context, caller authz.Principal, input StockInput) ([]StockLevel, error) {
	scope, err := authz.ResolveScope(caller, authz.Scope{
		BaseID:      input.BaseID,
		AssetTypeID: input.AssetTypeID,
	})
	if err != nil {
		return nil, err
	}

	history, err := s.source.List(ctx, ledger.Filter{
		BaseID:      scope.BaseID,
		AssetTypeID: scope.AssetTypeID,
		End:         input.AsOf,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan ledger history")
	}

	type key struct {
		base  uuid.UUID
		asset uuid.UUID
	}
	totals := make(map[key]int64)
	for _, txn := range history {
		base := txn.BaseID()
		if base == uuid.Nil {
			continue
		}
		totals[key{base: base, asset: txn.AssetTypeID}] += txn.Kind.Sign() * txn.Quantity
	}

	levels := make([]StockLevel, 0, len(totals))
	for k, qty := range totals {
		levels = append(levels, StockLevel{BaseID: k.base, AssetTypeID: k.asset, Quantity: qty})
	}
	sort.Slice(levels, func(i, j int) bool {
		if levels[i].BaseID != levels[j].BaseID {
			return levels[i].BaseID.String() < levels[j].BaseID.String()
		}
		return levels[i].AssetTypeID.String() < levels[j].AssetTypeID.String()
	})
	return levels, nil
}
