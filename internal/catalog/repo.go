package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/garrisonhq/garrison-backend/pkg/db/models"
)

// Repository manages persistence for the reference catalog: bases and the
// asset types tracked against them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateBase(ctx context.Context, base *models.Base) error
	GetBase(ctx context.Context, id uuid.UUID) (*models.Base, error)
	ListBases(ctx context.Context) ([]models.Base, error)
	UpdateBase(ctx context.Context, base *models.Base) error
	DeleteBase(ctx context.Context, id uuid.UUID) error
	BaseExists(ctx context.Context, id uuid.UUID) (bool, error)

	CreateAssetType(ctx context.Context, at *models.AssetType) error
	GetAssetType(ctx context.Context, id uuid.UUID) (*models.AssetType, error)
	ListAssetTypes(ctx context.Context) ([]models.AssetType, error)
	UpdateAssetType(ctx context.Context, at *models.AssetType) error
	DeleteAssetType(ctx context.Context, id uuid.UUID) error
	AssetTypeExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateBase(ctx context.Context, base *models.Base) error {
	return r.db.WithContext(ctx).Create(base).Error
}

func (r *repository) GetBase(ctx context.Context, id uuid.UUID) (*models.Base, error) {
	var base models.Base
	if err := r.db.WithContext(ctx).First(&base, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &base, nil
}

func (r *repository) ListBases(ctx context.Context) ([]models.Base, error) {
	var bases []models.Base
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&bases).Error; err != nil {
		return nil, err
	}
	return bases, nil
}

func (r *repository) UpdateBase(ctx context.Context, base *models.Base) error {
	return r.db.WithContext(ctx).Save(base).Error
}

func (r *repository) DeleteBase(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Base{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) BaseExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Base{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CreateAssetType(ctx context.Context, at *models.AssetType) error {
	return r.db.WithContext(ctx).Create(at).Error
}

func (r *repository) GetAssetType(ctx context.Context, id uuid.UUID) (*models.AssetType, error) {
	var at models.AssetType
	if err := r.db.WithContext(ctx).First(&at, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &at, nil
}

func (r *repository) ListAssetTypes(ctx context.Context) ([]models.AssetType, error) {
	var types []models.AssetType
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (r *repository) UpdateAssetType(ctx context.Context, at *models.AssetType) error {
	return r.db.WithContext(ctx).Save(at).Error
}

func (r *repository) DeleteAssetType(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.AssetType{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) AssetTypeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AssetType{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// IsNotFound reports whether err is the database's missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
