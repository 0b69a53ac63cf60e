package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tripmall/booking-core/internal/models"
	"github.com/tripmall/booking-core/internal/repository"
	"gorm.io/gorm"
)

// ResourceService covers the vendor/admin mutations named in the data
// model: create, activate/deactivate, capacity update. Resources are never
// deleted.
type ResourceService interface {
	CreateResource(ctx context.Context, resource *models.Resource) error
	GetResource(ctx context.Context, id uint) (*models.Resource, error)
	SetActive(ctx context.Context, id uint, active bool) (*models.Resource, error)
	UpdateCapacity(ctx context.Context, id uint, maxUnits int) (*models.Resource, error)
}

type resourceService struct {
	repo repository.ResourceRepository
}

func NewResourceService(repo repository.ResourceRepository) ResourceService {
	return &resourceService{repo: repo}
}

func (s *resourceService) CreateResource(ctx context.Context, resource *models.Resource) error {
	if resource.MaxUnits < 1 {
		resource.MaxUnits = 1
	}
	if err := s.repo.Create(ctx, resource); err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

func (s *resourceService) GetResource(ctx context.Context, id uint) (*models.Resource, error) {
	resource, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return resource, nil
}

func (s *resourceService) SetActive(ctx context.Context, id uint, active bool) (*models.Resource, error) {
	if _, err := s.GetResource(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.GetResource(ctx, id)
}

func (s *resourceService) UpdateCapacity(ctx context.Context, id uint, maxUnits int) (*models.Resource, error) {
	if maxUnits < 1 {
		return nil, ErrInvalidUnits
	}
	if _, err := s.GetResource(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCapacity(ctx, id, maxUnits); err != nil {
		return nil, err
	}
	return s.GetResource(ctx, id)
}
