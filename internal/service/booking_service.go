package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tripmall/booking-core/internal/models"
	"github.com/tripmall/booking-core/internal/overlap"
	"github.com/tripmall/booking-core/internal/repository"
	"github.com/tripmall/booking-core/monitoring"
	"github.com/tripmall/booking-core/pkg/rabbitmq"
	"github.com/tripmall/booking-core/utils"
	"gorm.io/gorm"
)

var (
	ErrResourceNotFound    = errors.New("resource not found")
	ErrResourceInactive    = errors.New("resource is not active")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrBookingConflict     = errors.New("requested window conflicts with an existing booking")
	ErrInvalidUnits        = errors.New("units must be at least 1")
	ErrInvalidTransition   = errors.New("invalid reservation status transition")
	ErrVoucherExhausted    = errors.New("voucher code space exhausted")
)

type CreateBookingInput struct {
	ResourceID uint
	UserID     string
	Units      int
	StartAt    time.Time
	EndAt      time.Time
	Amount     decimal.Decimal
}

type BookingService interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Reservation, error)
	CancelBooking(ctx context.Context, id uint) (*models.Reservation, error)
	ConfirmBooking(ctx context.Context, id uint) (*models.Reservation, error)
	PickUp(ctx context.Context, id uint) (*models.Reservation, error)
	CheckIn(ctx context.Context, id uint) (*models.Reservation, error)
	CompleteBooking(ctx context.Context, id uint) (*models.Reservation, error)
	FailBooking(ctx context.Context, id uint) (*models.Reservation, error)
	GetBooking(ctx context.Context, id uint) (*models.Reservation, error)
	ListBookings(ctx context.Context, resourceID uint, status *models.ReservationStatus) ([]models.Reservation, error)
}

type bookingService struct {
	reservationRepo    repository.ReservationRepository
	resourceRepo       repository.ResourceRepository
	publisher          *rabbitmq.Publisher
	graceWindow        time.Duration
	voucherMaxAttempts int
	log                *logrus.Entry
}

func NewBookingService(
	reservationRepo repository.ReservationRepository,
	resourceRepo repository.ResourceRepository,
	publisher *rabbitmq.Publisher,
	graceWindow time.Duration,
	voucherMaxAttempts int,
) BookingService {
	return &bookingService{
		reservationRepo:    reservationRepo,
		resourceRepo:       resourceRepo,
		publisher:          publisher,
		graceWindow:        graceWindow,
		voucherMaxAttempts: voucherMaxAttempts,
		log:                logrus.WithField("component", "booking"),
	}
}

// CreateBooking runs the whole reserve-if-available decision inside one
// transaction on the primary store. The resource row lock serializes
// concurrent attempts for the same resource and the overlap/capacity check
// is re-run under that lock, so an earlier advisory CheckAvailability call
// grants nothing. A lost race aborts the transaction as one unit; no
// provisional pending row survives a conflict.
func (s *bookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Reservation, error) {
	if in.Units < 1 {
		return nil, ErrInvalidUnits
	}
	if err := overlap.ValidateRange(in.StartAt, in.EndAt); err != nil {
		return nil, err
	}

	var (
		result   *models.Reservation
		vertical models.Vertical
	)

	err := s.reservationRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the resource row — serializes concurrent booking attempts
		resource, err := s.resourceRepo.FindByIDForUpdate(ctx, tx, in.ResourceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResourceNotFound
			}
			return err
		}
		vertical = resource.Vertical

		if !resource.IsActive {
			return ErrResourceInactive
		}
		if in.Units > resource.MaxUnits {
			return ErrBookingConflict
		}

		// 2. Re-validate availability under the lock
		now := time.Now()
		unitsInUse, _, err := s.overlappingUnits(ctx, tx, resource, in.StartAt, in.EndAt, now)
		if err != nil {
			return err
		}
		if unitsInUse+in.Units > resource.MaxUnits {
			return ErrBookingConflict
		}

		// 3. Insert the reservation with its generated identifiers
		number, err := utils.BookingNumber(now)
		if err != nil {
			return fmt.Errorf("generate booking number: %w", err)
		}

		reservation := &models.Reservation{
			ResourceID:    resource.ID,
			UserID:        in.UserID,
			Units:         in.Units,
			StartAt:       in.StartAt,
			EndAt:         in.EndAt,
			Status:        models.StatusPending,
			PayStatus:     models.PaymentUnpaid,
			BookingNumber: number,
			Amount:        in.Amount,
		}

		if voucherApplies(resource.Vertical) {
			code, errCode := s.sampleVoucherCode(ctx, tx)
			if errCode != nil {
				return errCode
			}
			reservation.VoucherCode = &code
		}

		if err := s.reservationRepo.Create(ctx, tx, reservation); err != nil {
			return err
		}

		result = reservation
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBookingConflict) {
			monitoring.RecordBookingConflict()
			monitoring.RecordBooking(string(vertical), "conflict")
		}
		return nil, err
	}

	monitoring.RecordBooking(string(vertical), "created")
	s.log.WithFields(logrus.Fields{
		"booking_number": result.BookingNumber,
		"resource_id":    result.ResourceID,
		"user_id":        result.UserID,
	}).Info("booking created")

	if s.publisher != nil {
		_ = s.publisher.Publish("booking.created", result)
	}
	return result, nil
}

// CancelBooking flips the status to cancelled. Capacity is derived from
// conflict-eligible rows, so the flip and the capacity release are the same
// single row write; the window frees atomically with the status change.
func (s *bookingService) CancelBooking(ctx context.Context, id uint) (*models.Reservation, error) {
	reservation, err := s.transition(ctx, id, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	if s.publisher != nil {
		_ = s.publisher.Publish("booking.cancelled", reservation)
	}
	return reservation, nil
}

// ConfirmBooking moves a pending reservation to confirmed on payment
// success. A pending row older than the grace window stopped counting in
// conflict checks, so its slot may have been given away; availability is
// re-validated under the resource lock and a lost slot fails the booking
// instead of silently double-selling it.
func (s *bookingService) ConfirmBooking(ctx context.Context, id uint) (*models.Reservation, error) {
	var result *models.Reservation
	slotLost := false

	err := s.reservationRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservation, err := s.reservationRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if reservation.Status != models.StatusPending {
			return ErrInvalidTransition
		}

		resource, err := s.resourceRepo.FindByIDForUpdate(ctx, tx, reservation.ResourceID)
		if err != nil {
			return err
		}

		now := time.Now()
		if now.Sub(reservation.CreatedAt) > s.graceWindow {
			unitsInUse, _, errCount := s.overlappingUnitsExcluding(ctx, tx, resource, reservation.StartAt, reservation.EndAt, now, reservation.ID)
			if errCount != nil {
				return errCount
			}
			if unitsInUse+reservation.Units > resource.MaxUnits {
				slotLost = true
				return ErrBookingConflict
			}
		}

		if err := s.reservationRepo.UpdateStatus(ctx, tx, reservation.ID, models.StatusConfirmed); err != nil {
			return err
		}
		if err := s.reservationRepo.UpdatePaymentStatus(ctx, tx, reservation.ID, models.PaymentPaid); err != nil {
			return err
		}

		reservation.Status = models.StatusConfirmed
		reservation.PayStatus = models.PaymentPaid
		result = reservation
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBookingConflict) {
			monitoring.RecordBookingConflict()
		}
		// The conflict aborts the confirm transaction, so the fail flip must
		// be its own committed write. transition re-locks and re-checks the
		// status; a concurrent cancel leaves it alone.
		if slotLost {
			if _, errFail := s.transition(ctx, id, models.StatusFailed); errFail != nil && !errors.Is(errFail, ErrInvalidTransition) {
				s.log.WithError(errFail).WithField("reservation_id", id).
					Error("failed to mark lost-slot reservation failed")
			}
		}
		return nil, err
	}
	return result, nil
}

func (s *bookingService) PickUp(ctx context.Context, id uint) (*models.Reservation, error) {
	return s.transition(ctx, id, models.StatusPickedUp)
}

func (s *bookingService) CheckIn(ctx context.Context, id uint) (*models.Reservation, error) {
	return s.transition(ctx, id, models.StatusCheckedIn)
}

func (s *bookingService) CompleteBooking(ctx context.Context, id uint) (*models.Reservation, error) {
	return s.transition(ctx, id, models.StatusCompleted)
}

func (s *bookingService) FailBooking(ctx context.Context, id uint) (*models.Reservation, error) {
	return s.transition(ctx, id, models.StatusFailed)
}

func (s *bookingService) GetBooking(ctx context.Context, id uint) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return reservation, nil
}

func (s *bookingService) ListBookings(ctx context.Context, resourceID uint, status *models.ReservationStatus) ([]models.Reservation, error) {
	return s.reservationRepo.FindByResourceID(ctx, resourceID, status)
}

// allowedTransitions is the reservation state machine. cancelled, failed
// and completed are absorbing.
var allowedTransitions = map[models.ReservationStatus][]models.ReservationStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled, models.StatusFailed},
	models.StatusConfirmed: {models.StatusPickedUp, models.StatusCheckedIn, models.StatusCompleted, models.StatusCancelled},
	models.StatusPickedUp:  {models.StatusCompleted},
	models.StatusCheckedIn: {models.StatusCompleted},
}

func transitionAllowed(from, to models.ReservationStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *bookingService) transition(ctx context.Context, id uint, to models.ReservationStatus) (*models.Reservation, error) {
	var result *models.Reservation

	err := s.reservationRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservation, err := s.reservationRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if !transitionAllowed(reservation.Status, to) {
			return ErrInvalidTransition
		}

		if err := s.reservationRepo.UpdateStatus(ctx, tx, reservation.ID, to); err != nil {
			return err
		}
		reservation.Status = to
		result = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *bookingService) overlappingUnits(ctx context.Context, tx *gorm.DB, resource *models.Resource, start, end time.Time, now time.Time) (int, int, error) {
	return s.overlappingUnitsExcluding(ctx, tx, resource, start, end, now, 0)
}

// overlappingUnitsExcluding sums the units of every conflict-eligible
// reservation whose buffer-extended interval collides with the candidate
// window, skipping the reservation with the given id (0 = none). Returns
// the unit sum and the number of conflicting rows.
func (s *bookingService) overlappingUnitsExcluding(ctx context.Context, tx *gorm.DB, resource *models.Resource, start, end time.Time, now time.Time, excludeID uint) (int, int, error) {
	buffer := time.Duration(resource.BufferMinutes) * time.Minute

	candidates, err := s.reservationRepo.FindConflictCandidates(
		ctx, tx, resource.ID, start, end, buffer, now, s.graceWindow)
	if err != nil {
		return 0, 0, err
	}

	units, conflicts := 0, 0
	for i := range candidates {
		c := &candidates[i]
		if c.ID == excludeID {
			continue
		}
		if !c.ConflictEligible(now, s.graceWindow) {
			continue
		}
		if overlap.Overlaps(start, end, c.StartAt, c.EndAt, buffer) {
			units += c.Units
			conflicts++
		}
	}
	return units, conflicts, nil
}

// sampleVoucherCode draws codes until one does not collide with an
// existing reservation, giving up after the configured attempt budget.
func (s *bookingService) sampleVoucherCode(ctx context.Context, tx *gorm.DB) (string, error) {
	attempts := s.voucherMaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		code, err := utils.VoucherCode()
		if err != nil {
			return "", fmt.Errorf("generate voucher code: %w", err)
		}
		exists, err := s.reservationRepo.VoucherCodeExists(ctx, tx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	monitoring.RecordVoucherExhaustion()
	s.log.WithField("attempts", attempts).Error("voucher code generation exhausted")
	return "", ErrVoucherExhausted
}

// voucherApplies reports whether a vertical issues redemption vouchers.
// Accommodation and rentcar bookings are redeemed by booking number alone.
func voucherApplies(v models.Vertical) bool {
	switch v {
	case models.VerticalFood, models.VerticalEvents, models.VerticalAttractions, models.VerticalExperiences:
		return true
	default:
		return false
	}
}
