package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/garrisonhq/garrison-backend/internal/authz"
	"github.com/garrisonhq/garrison-backend/pkg/db/models"
	"github.com/garrisonhq/garrison-backend/pkg/enums"
	pkgerrors "github.com/garrisonhq/garrison-backend/pkg/errors"
)

// LedgerCounts tells the catalog how many transactions reference a record,
// which gates deletion: history must never lose its referents.
type LedgerCounts interface {
	CountByBase(ctx context.Context, baseID uuid.UUID) (int64, error)
	CountByAssetType(ctx context.Context, assetTypeID uuid.UUID) (int64, error)
}

// Service manages the reference catalog. Reads are open to any authenticated
// caller; mutations are admin-only.
type Service interface {
	CreateBase(ctx context.Context, caller authz.Principal, input CreateBaseInput) (*models.Base, error)
	GetBase(ctx context.Context, id uuid.UUID) (*models.Base, error)
	ListBases(ctx context.Context) ([]models.Base, error)
	UpdateBase(ctx context.Context, caller authz.Principal, id uuid.UUID, input UpdateBaseInput) (*models.Base, error)
	DeleteBase(ctx context.Context, caller authz.Principal, id uuid.UUID) error

	CreateAssetType(ctx context.Context, caller authz.Principal, input CreateAssetTypeInput) (*models.AssetType, error)
	GetAssetType(ctx context.Context, id uuid.UUID) (*models.AssetType, error)
	ListAssetTypes(ctx context.Context) ([]models.AssetType, error)
	UpdateAssetType(ctx context.Context, caller authz.Principal, id uuid.UUID, input UpdateAssetTypeInput) (*models.AssetType, error)
	DeleteAssetType(ctx context.Context, caller authz.Principal, id uuid.UUID) error

	BaseExists(ctx context.Context, id uuid.UUID) (bool, error)
	AssetTypeExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type CreateBaseInput struct {
	Name     string
	Location string
}

type UpdateBaseInput struct {
	Name     *string
	Location *string
}

type CreateAssetTypeInput struct {
	Name        string
	Description string
}

type UpdateAssetTypeInput struct {
	Name        *string
	Description *string
}

type service struct {
	repo   Repository
	counts LedgerCounts
}

// NewService wires the catalog service with its repository and the ledger's
// reference counters.
func NewService(repo Repository, counts LedgerCounts) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if counts == nil {
		return nil, fmt.Errorf("ledger counts required")
	}
	return &service{repo: repo, counts: counts}, nil
}

func requireAdmin(caller authz.Principal) error {
	if caller.Role != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "catalog changes require admin role")
	}
	return nil
}

func (s *service) CreateBase(ctx context.Context, caller authz.Principal, input CreateBaseInput) (*models.Base, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base name required")
	}

	base := &models.Base{
		ID:       uuid.New(),
		Name:     name,
		Location: strings.TrimSpace(input.Location),
	}
	if err := s.repo.CreateBase(ctx, base); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "base name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create base")
	}
	return base, nil
}

func (s *service) GetBase(ctx context.Context, id uuid.UUID) (*models.Base, error) {
	base, err := s.repo.GetBase(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "base not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get base")
	}
	return base, nil
}

func (s *service) ListBases(ctx context.Context) ([]models.Base, error) {
	bases, err := s.repo.ListBases(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bases")
	}
	return bases, nil
}

func (s *service) UpdateBase(ctx context.Context, caller authz.Principal, id uuid.UUID, input UpdateBaseInput) (*models.Base, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	base, err := s.GetBase(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "base name required")
		}
		base.Name = name
	}
	if input.Location != nil {
		base.Location = strings.TrimSpace(*input.Location)
	}

	if err := s.repo.UpdateBase(ctx, base); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "base name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update base")
	}
	return base, nil
}

func (s *service) DeleteBase(ctx context.Context, caller authz.Principal, id uuid.UUID) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	count, err := s.counts.CountByBase(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count base references")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "base has recorded transactions")
	}

	if err := s.repo.DeleteBase(ctx, id); err != nil {
		if IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "base not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete base")
	}
	return nil
}

func (s *service) CreateAssetType(ctx context.Context, caller authz.Principal, input CreateAssetTypeInput) (*models.AssetType, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset type name required")
	}

	at := &models.AssetType{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.repo.CreateAssetType(ctx, at); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "asset type name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create asset type")
	}
	return at, nil
}

func (s *service) GetAssetType(ctx context.Context, id uuid.UUID) (*models.AssetType, error) {
	at, err := s.repo.GetAssetType(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset type not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get asset type")
	}
	return at, nil
}

func (s *service) ListAssetTypes(ctx context.Context) ([]models.AssetType, error) {
	types, err := s.repo.ListAssetTypes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list asset types")
	}
	return types, nil
}

func (s *service) UpdateAssetType(ctx context.Context, caller authz.Principal, id uuid.UUID, input UpdateAssetTypeInput) (*models.AssetType, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	at, err := s.GetAssetType(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset type name required")
		}
		at.Name = name
	}
	if input.Description != nil {
		at.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.repo.UpdateAssetType(ctx, at); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "asset type name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update asset type")
	}
	return at, nil
}

func (s *service) DeleteAssetType(ctx context.Context, caller authz.Principal, id uuid.UUID) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	count, err := s.counts.CountByAssetType(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count asset type references")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "asset type has recorded transactions")
	}

	if err := s.repo.DeleteAssetType(ctx, id); err != nil {
		if IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "asset type not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete asset type")
	}
	return nil
}

func (s *service) BaseExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.BaseExists(ctx, id)
}

func (s *service) AssetTypeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.AssetTypeExists(ctx, id)
}
