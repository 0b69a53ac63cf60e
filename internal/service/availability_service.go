package service

import (
	"context"
	"errors"
	"time"

	"github.com/tripmall/booking-core/internal/overlap"
	"github.com/tripmall/booking-core/internal/repository"
	"gorm.io/gorm"
)

type AvailabilityResult struct {
	Available     bool
	Reason        string
	ConflictCount int
}

// AvailabilityService answers the advisory "is this window free" question.
// It is read-only and safe to call repeatedly and concurrently; the binding
// decision is re-made inside CreateBooking's transaction.
type AvailabilityService interface {
	CheckAvailability(ctx context.Context, resourceID uint, start, end time.Time, units int) (*AvailabilityResult, error)
}

type availabilityService struct {
	resourceRepo    repository.ResourceRepository
	reservationRepo repository.ReservationRepository
	graceWindow     time.Duration
}

func NewAvailabilityService(
	resourceRepo repository.ResourceRepository,
	reservationRepo repository.ReservationRepository,
	graceWindow time.Duration,
) AvailabilityService {
	return &availabilityService{
		resourceRepo:    resourceRepo,
		reservationRepo: reservationRepo,
		graceWindow:     graceWindow,
	}
}

func (s *availabilityService) CheckAvailability(ctx context.Context, resourceID uint, start, end time.Time, units int) (*AvailabilityResult, error) {
	if units < 1 {
		units = 1
	}
	if err := overlap.ValidateRange(start, end); err != nil {
		return nil, err
	}

	resource, err := s.resourceRepo.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}

	// An inactive resource is a business result, not an error.
	if !resource.IsActive {
		return &AvailabilityResult{Available: false, Reason: "resource inactive"}, nil
	}

	now := time.Now()
	buffer := time.Duration(resource.BufferMinutes) * time.Minute

	candidates, err := s.reservationRepo.FindConflictCandidates(
		ctx, s.reservationRepo.GetDB(), resource.ID, start, end, buffer, now, s.graceWindow)
	if err != nil {
		return nil, err
	}

	unitsInUse, conflicts := 0, 0
	for i := range candidates {
		c := &candidates[i]
		if !c.ConflictEligible(now, s.graceWindow) {
			continue
		}
		if overlap.Overlaps(start, end, c.StartAt, c.EndAt, buffer) {
			unitsInUse += c.Units
			conflicts++
		}
	}

	if unitsInUse+units > resource.MaxUnits {
		return &AvailabilityResult{
			Available:     false,
			Reason:        "fully booked for the requested window",
			ConflictCount: conflicts,
		}, nil
	}

	return &AvailabilityResult{Available: true, ConflictCount: conflicts}, nil
}
