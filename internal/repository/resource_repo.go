package repository

import (
	"context"

	"github.com/tripmall/booking-core/internal/models"
	"gorm.io/gorm"
)

type ResourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error
	FindByID(ctx context.Context, id uint) (*models.Resource, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Resource, error)
	SetActive(ctx context.Context, id uint, active bool) error
	UpdateCapacity(ctx context.Context, id uint, maxUnits int) error
}

type resourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *resourceRepository) FindByID(ctx context.Context, id uint) (*models.Resource, error) {
	var resource models.Resource
	if err := r.db.WithContext(ctx).First(&resource, id).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

// FindByIDForUpdate acquires a row-level lock on the resource within the
// given transaction, serializing concurrent booking attempts against it.
func (r *resourceRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Resource, error) {
	var resource models.Resource
	if err := lockForUpdate(tx.WithContext(ctx)).First(&resource, id).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *resourceRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Resource{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

func (r *resourceRepository) UpdateCapacity(ctx context.Context, id uint, maxUnits int) error {
	return r.db.WithContext(ctx).
		Model(&models.Resource{}).
		Where("id = ?", id).
		Update("max_units", maxUnits).Error
}
