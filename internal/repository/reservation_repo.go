package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tripmall/booking-core/internal/models"
	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error)
	FindByBookingNumber(ctx context.Context, number string) (*models.Reservation, error)
	FindByResourceID(ctx context.Context, resourceID uint, status *models.ReservationStatus) ([]models.Reservation, error)
	FindConflictCandidates(ctx context.Context, tx *gorm.DB, resourceID uint, windowStart, windowEnd time.Time, buffer time.Duration, now time.Time, grace time.Duration) ([]models.Reservation, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.ReservationStatus) error
	UpdatePaymentStatus(ctx context.Context, tx *gorm.DB, id uint, status models.PaymentStatus) error
	VoucherCodeExists(ctx context.Context, tx *gorm.DB, code string) (bool, error)
	GetDB() *gorm.DB
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *reservationRepository) Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error {
	return tx.WithContext(ctx).Create(reservation).Error
}

func (r *reservationRepository) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error) {
	q := lockForUpdate(tx.WithContext(ctx))
	var reservation models.Reservation
	if err := q.First(&reservation, id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindByBookingNumber(ctx context.Context, number string) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Where("booking_number = ?", number).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindByResourceID(ctx context.Context, resourceID uint, status *models.ReservationStatus) ([]models.Reservation, error) {
	var reservations []models.Reservation
	q := r.db.WithContext(ctx).Where("resource_id = ?", resourceID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("id ASC").Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// FindConflictCandidates loads every reservation that may collide with the
// candidate window: confirmed or in-progress rows, plus pending rows still
// inside the grace window. The window filter is a coarse SQL prune only;
// callers run the overlap predicate on each returned row.
func (r *reservationRepository) FindConflictCandidates(ctx context.Context, tx *gorm.DB, resourceID uint, windowStart, windowEnd time.Time, buffer time.Duration, now time.Time, grace time.Duration) ([]models.Reservation, error) {
	blocking := []models.ReservationStatus{
		models.StatusConfirmed,
		models.StatusPickedUp,
		models.StatusCheckedIn,
	}

	var reservations []models.Reservation
	err := tx.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Where("start_at < ? AND end_at > ?", windowEnd, windowStart.Add(-buffer)).
		Where("status IN ? OR (status = ? AND created_at > ?)",
			blocking, models.StatusPending, now.Add(-grace)).
		Order("start_at ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.ReservationStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *reservationRepository) UpdatePaymentStatus(ctx context.Context, tx *gorm.DB, id uint, status models.PaymentStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Update("payment_status", status).Error
}

func (r *reservationRepository) VoucherCodeExists(ctx context.Context, tx *gorm.DB, code string) (bool, error) {
	var reservation models.Reservation
	err := tx.WithContext(ctx).
		Select("id").
		Where("voucher_code = ?", code).
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
