package ledger

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/garrisonhq/garrison-backend/internal/authz"
	"github.com/garrisonhq/garrison-backend/pkg/config"
	"github.com/garrisonhq/garrison-backend/pkg/db/models"
	"github.com/garrisonhq/garrison-backend/pkg/enums"
	pkgerrors "github.com/garrisonhq/garrison-backend/pkg/errors"
	"github.com/garrisonhq/garrison-backend/pkg/pagination"
)

// Catalog is the reference-data surface the ledger validates against.
type Catalog interface {
	BaseExists(ctx context.Context, id uuid.UUID) (bool, error)
	AssetTypeExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// TxRunner executes fn inside a single database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records asset movements and reads them back. All writes are
// authorization-gated against the caller's home base.
type Service interface {
	RecordSimple(ctx context.Context, caller authz.Principal, input RecordSimpleInput) (*models.Transaction, error)
	RecordTransfer(ctx context.Context, caller authz.Principal, input RecordTransferInput) (*TransferPair, error)
	Query(ctx context.Context, caller authz.Principal, input QueryInput) ([]models.Transaction, error)
	QueryPage(ctx context.Context, caller authz.Principal, input QueryInput, page pagination.Params) ([]models.Transaction, string, error)
}

// RecordSimpleInput captures a single-base movement: a purchase into a base,
// or an assignment/expenditure out of one. Transfer kinds must go through
// RecordTransfer so the pair is committed atomically.
type RecordSimpleInput struct {
	Kind        enums.TransactionKind
	AssetTypeID uuid.UUID
	Quantity    int64
	BaseID      uuid.UUID
	Recipient   *string
}

// RecordTransferInput captures a movement between two distinct bases.
type RecordTransferInput struct {
	AssetTypeID uuid.UUID
	Quantity    int64
	FromBaseID  uuid.UUID
	ToBaseID    uuid.UUID
}

// TransferPair holds the two halves of a committed transfer.
type TransferPair struct {
	Out models.Transaction
	In  models.Transaction
}

// QueryInput mirrors the ledger read filter; the effective base scope is
// resolved through the authorization guard before the scan runs.
type QueryInput struct {
	BaseID      *uuid.UUID
	AssetTypeID *uuid.UUID
	Start       *time.Time
	End         *time.Time
	Kinds       []enums.TransactionKind
}

type service struct {
	repo    Repository
	catalog Catalog
	runner  TxRunner
	cfg     config.LedgerConfig
	now     func() time.Time
}

// NewService wires a ledger service with its repository, catalog gate, and
// transaction runner.
func NewService(repo Repository, catalog Catalog, runner TxRunner, cfg config.LedgerConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if runner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{
		repo:    repo,
		catalog: catalog,
		runner:  runner,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) RecordSimple(ctx context.Context, caller authz.Principal, input RecordSimpleInput) (*models.Transaction, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeInvariant, fmt.Sprintf("unknown transaction kind %q", input.Kind))
	}
	if input.Kind == enums.TransactionKindTransferIn || input.Kind == enums.TransactionKindTransferOut {
		return nil, pkgerrors.New(pkgerrors.CodeInvariant, "transfers must be recorded as a pair")
	}

	if err := authz.AuthorizeWrite(caller, input.BaseID); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, input.AssetTypeID, input.BaseID); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		ID:          uuid.New(),
		Kind:        input.Kind,
		AssetTypeID: input.AssetTypeID,
		Quantity:    input.Quantity,
		Recipient:   input.Recipient,
		OccurredAt:  s.now(),
		PerformedBy: caller.UserID,
	}
	baseID := input.BaseID
	if input.Kind.Inbound() {
		txn.ToBaseID = &baseID
	} else {
		txn.FromBaseID = &baseID
	}

	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append transaction")
	}
	return txn, nil
}

func (s *service) RecordTransfer(ctx context.Context, caller authz.Principal, input RecordTransferInput) (*TransferPair, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.FromBaseID == input.ToBaseID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer requires two distinct bases")
	}

	if err := authz.AuthorizeWrite(caller, input.FromBaseID, input.ToBaseID); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, input.AssetTypeID, input.FromBaseID, input.ToBaseID); err != nil {
		return nil, err
	}

	groupID := uuid.New()
	occurred := s.now()
	from, to := input.FromBaseID, input.ToBaseID

	pair := &TransferPair{
		Out: models.Transaction{
			ID:                 uuid.New(),
			Kind:               enums.TransactionKindTransferOut,
			AssetTypeID:        input.AssetTypeID,
			Quantity:           input.Quantity,
			FromBaseID:         &from,
			CounterpartyBaseID: &to,
			TransferGroupID:    &groupID,
			OccurredAt:         occurred,
			PerformedBy:        caller.UserID,
		},
		In: models.Transaction{
			ID:                 uuid.New(),
			Kind:               enums.TransactionKindTransferIn,
			AssetTypeID:        input.AssetTypeID,
			Quantity:           input.Quantity,
			ToBaseID:           &to,
			CounterpartyBaseID: &from,
			TransferGroupID:    &groupID,
			OccurredAt:         occurred,
			PerformedBy:        caller.UserID,
		},
	}

	if err := s.commitPair(ctx, pair); err != nil {
		return nil, err
	}
	return pair, nil
}

// commitPair writes both halves under one transaction so a reader can never
// observe half a transfer. Transient store contention is retried a bounded
// number of times before a timeout is surfaced.
func (s *service) commitPair(ctx context.Context, pair *TransferPair) error {
	retries := s.cfg.TransferCommitRetries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		lastErr = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if err := repo.Create(ctx, &pair.Out); err != nil {
				return err
			}
			return repo.Create(ctx, &pair.In)
		})
		if lastErr == nil {
			return nil
		}
		if stdErrors.Is(lastErr, context.DeadlineExceeded) || ctx.Err() != nil {
			return pkgerrors.Wrap(pkgerrors.CodeTimeout, lastErr, "transfer commit timed out")
		}
		if !pkgerrors.IsTransientContention(lastErr) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "commit transfer pair")
		}
		if attempt < retries && s.cfg.TransferCommitBackoff > 0 {
			timer := time.NewTimer(s.cfg.TransferCommitBackoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return pkgerrors.Wrap(pkgerrors.CodeTimeout, ctx.Err(), "transfer commit timed out")
			case <-timer.C:
			}
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeTimeout, lastErr, "transfer commit kept conflicting")
}

func (s *service) Query(ctx context.Context, caller authz.Principal, input QueryInput) ([]models.Transaction, error) {
	filter, err := s.resolveFilter(caller, input)
	if err != nil {
		return nil, err
	}
	txns, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan ledger")
	}
	return txns, nil
}

func (s *service) QueryPage(ctx context.Context, caller authz.Principal, input QueryInput, page pagination.Params) ([]models.Transaction, string, error) {
	filter, err := s.resolveFilter(caller, input)
	if err != nil {
		return nil, "", err
	}

	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(page.Limit)
	txns, err := s.repo.ListPage(ctx, filter, cursor, limit+1)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan ledger")
	}

	next := ""
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		next = pagination.EncodeCursor(pagination.Cursor{Timestamp: last.OccurredAt, ID: last.ID})
	}
	return txns, next, nil
}

// resolveFilter narrows the requested scope through the authorization guard
// and clamps the visible kinds for restricted roles.
func (s *service) resolveFilter(caller authz.Principal, input QueryInput) (Filter, error) {
	scope, err := authz.ResolveScope(caller, authz.Scope{
		BaseID:      input.BaseID,
		AssetTypeID: input.AssetTypeID,
		Start:       input.Start,
		End:         input.End,
	})
	if err != nil {
		return Filter{}, err
	}

	kinds := input.Kinds
	if visible := authz.VisibleKinds(caller); visible != nil {
		if len(kinds) == 0 {
			kinds = visible
		} else {
			kinds = intersectKinds(kinds, visible)
			if len(kinds) == 0 {
				return Filter{}, pkgerrors.New(pkgerrors.CodeForbidden, "requested kinds not visible for role")
			}
		}
	}

	return Filter{
		BaseID:      scope.BaseID,
		AssetTypeID: scope.AssetTypeID,
		Start:       scope.Start,
		End:         scope.End,
		Kinds:       kinds,
	}, nil
}

func (s *service) checkReferences(ctx context.Context, assetTypeID uuid.UUID, baseIDs ...uuid.UUID) error {
	ok, err := s.catalog.AssetTypeExists(ctx, assetTypeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check asset type")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "unknown asset type")
	}
	for _, id := range baseIDs {
		ok, err := s.catalog.BaseExists(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check base")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "unknown base")
		}
	}
	return nil
}

func intersectKinds(requested, visible []enums.TransactionKind) []enums.TransactionKind {
	allowed := make(map[enums.TransactionKind]struct{}, len(visible))
	for _, k := range visible {
		allowed[k] = struct{}{}
	}
	var out []enums.TransactionKind
	for _, k := range requested {
		if _, ok := allowed[k]; ok {
			out = append(out, k)
		}
	}
	return out
}
