package maintenance

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/garrisonhq/garrison-backend/internal/ledger"
	"github.com/garrisonhq/garrison-backend/pkg/db/models"
	"github.com/garrisonhq/garrison-backend/pkg/enums"
	"github.com/garrisonhq/garrison-backend/pkg/logger"
)

// transferScanner reads transfer records for auditing.
type transferScanner interface {
	List(ctx context.Context, filter ledger.Filter) ([]models.Transaction, error)
}

// TransferAuditJobParams configure the transfer audit job.
type TransferAuditJobParams struct {
	Logger *logger.Logger
	Ledger transferScanner
}

// NewTransferAuditJob builds a job that verifies every transfer group holds a
// consistent outbound/inbound pair. The ledger writes both halves in one
// database transaction, so any broken group points at data corruption or an
// out-of-band write.
func NewTransferAuditJob(params TransferAuditJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger scanner required")
	}
	return &transferAuditJob{
		logg:   params.Logger,
		ledger: params.Ledger,
	}, nil
}

type transferAuditJob struct {
	logg   *logger.Logger
	ledger transferScanner
}

func (j *transferAuditJob) Name() string { return "transfer-audit" }

func (j *transferAuditJob) Run(ctx context.Context) error {
	txns, err := j.ledger.List(ctx, ledger.Filter{
		Kinds: []enums.TransactionKind{
			enums.TransactionKindTransferIn,
			enums.TransactionKindTransferOut,
		},
	})
	if err != nil {
		return fmt.Errorf("scan transfers: %w", err)
	}

	groups := make(map[uuid.UUID][]models.Transaction)
	var errs []error
	for _, txn := range txns {
		if txn.TransferGroupID == nil {
			errs = append(errs, fmt.Errorf("transaction %s: transfer record without a group id", txn.ID))
			continue
		}
		groups[*txn.TransferGroupID] = append(groups[*txn.TransferGroupID], txn)
	}

	ids := make([]uuid.UUID, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a].String() < ids[b].String() })

	for _, id := range ids {
		if err := auditGroup(id, groups[id]); err != nil {
			errs = append(errs, err)
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"transfer_records": len(txns),
		"transfer_groups":  len(groups),
		"broken_groups":    len(errs),
	})
	if len(errs) > 0 {
		j.logg.Warn(logCtx, "transfer audit found inconsistent groups")
		return multierr.Combine(errs...)
	}
	j.logg.Info(logCtx, "transfer audit clean")
	return nil
}

// auditGroup checks one transfer group for the pairing invariant: exactly one
// TRANSFER_OUT and one TRANSFER_IN, same asset type, same quantity, and each
// half pointing at the other's base as its counterparty.
func auditGroup(id uuid.UUID, members []models.Transaction) error {
	if len(members) != 2 {
		return fmt.Errorf("transfer group %s: expected 2 records, found %d", id, len(members))
	}

	var out, in *models.Transaction
	for i := range members {
		switch members[i].Kind {
		case enums.TransactionKindTransferOut:
			out = &members[i]
		case enums.TransactionKindTransferIn:
			in = &members[i]
		}
	}
	if out == nil || in == nil {
		return fmt.Errorf("transfer group %s: missing outbound or inbound half", id)
	}
	if out.AssetTypeID != in.AssetTypeID {
		return fmt.Errorf("transfer group %s: asset type mismatch between halves", id)
	}
	if out.Quantity != in.Quantity {
		return fmt.Errorf("transfer group %s: quantity mismatch %d vs %d", id, out.Quantity, in.Quantity)
	}
	if out.FromBaseID == nil || in.ToBaseID == nil {
		return fmt.Errorf("transfer group %s: halves missing base attribution", id)
	}
	if out.CounterpartyBaseID == nil || *out.CounterpartyBaseID != *in.ToBaseID {
		return fmt.Errorf("transfer group %s: outbound counterparty does not match destination", id)
	}
	if in.CounterpartyBaseID == nil || *in.CounterpartyBaseID != *out.FromBaseID {
		return fmt.Errorf("transfer group %s: inbound counterparty does not match source", id)
	}
	return nil
}
