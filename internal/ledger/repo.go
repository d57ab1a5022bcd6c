package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/garrisonhq/garrison-backend/pkg/db/models"
	"github.com/garrisonhq/garrison-backend/pkg/enums"
	"github.com/garrisonhq/garrison-backend/pkg/pagination"
)

// Filter narrows a ledger scan. BaseID matches records attributed to the base
// on either side (from_base_id or to_base_id); every record carries exactly
// one of the two, so no row is ever counted twice.
type Filter struct {
	BaseID      *uuid.UUID
	AssetTypeID *uuid.UUID
	Start       *time.Time
	End         *time.Time
	Kinds       []enums.TransactionKind
}

// Repository manages persistence for ledger transactions. The table is
// append-only: there is deliberately no update or delete surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.Transaction) error
	List(ctx context.Context, filter Filter) ([]models.Transaction, error)
	ListPage(ctx context.Context, filter Filter, cursor *pagination.Cursor, limit int) ([]models.Transaction, error)
	CountByBase(ctx context.Context, baseID uuid.UUID) (int64, error)
	CountByAssetType(ctx context.Context, assetTypeID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) scoped(ctx context.Context, filter Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Transaction{})
	if filter.BaseID != nil {
		q = q.Where("from_base_id = ? OR to_base_id = ?", *filter.BaseID, *filter.BaseID)
	}
	if filter.AssetTypeID != nil {
		q = q.Where("asset_type_id = ?", *filter.AssetTypeID)
	}
	if filter.Start != nil {
		q = q.Where("occurred_at >= ?", *filter.Start)
	}
	if filter.End != nil {
		q = q.Where("occurred_at <= ?", *filter.End)
	}
	if len(filter.Kinds) > 0 {
		q = q.Where("kind IN ?", filter.Kinds)
	}
	return q
}

// List returns every matching transaction ordered by occurred_at, then id, so
// repeated scans of the same ledger state yield the same sequence.
func (r *repository) List(ctx context.Context, filter Filter) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := r.scoped(ctx, filter).
		Order("occurred_at ASC, id ASC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// ListPage returns one page of matching transactions, newest first, resuming
// after the provided cursor.
func (r *repository) ListPage(ctx context.Context, filter Filter, cursor *pagination.Cursor, limit int) ([]models.Transaction, error) {
	q := r.scoped(ctx, filter)
	if cursor != nil {
		q = q.Where("occurred_at < ? OR (occurred_at = ? AND id < ?)", cursor.Timestamp, cursor.Timestamp, cursor.ID)
	}

	var txns []models.Transaction
	if err := q.
		Order("occurred_at DESC, id DESC").
		Limit(limit).
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) CountByBase(ctx context.Context, baseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("from_base_id = ? OR to_base_id = ?", baseID, baseID).
		Count(&count).Error
	return count, err
}

func (r *repository) CountByAssetType(ctx context.Context, assetTypeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("asset_type_id = ?", assetTypeID).
		Count(&count).Error
	return count, err
}
