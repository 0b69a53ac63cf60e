package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusPickedUp  ReservationStatus = "picked_up"
	StatusCheckedIn ReservationStatus = "checked_in"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusFailed    ReservationStatus = "failed"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Reservation holds one [StartAt, EndAt) interval against a resource.
// Rows are never deleted; terminal statuses are kept for audit.
type Reservation struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ResourceID uint              `gorm:"not null;index:idx_resource_window" json:"resource_id"`
	UserID     string            `gorm:"not null;index" json:"user_id"`
	Units      int               `gorm:"not null;default:1" json:"units"`
	StartAt    time.Time         `gorm:"not null;index:idx_resource_window" json:"start_at"`
	EndAt      time.Time         `gorm:"not null" json:"end_at"`
	Status     ReservationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PayStatus  PaymentStatus     `gorm:"column:payment_status;type:varchar(20);not null;default:'unpaid'" json:"payment_status"`

	BookingNumber string          `gorm:"uniqueIndex;not null" json:"booking_number"`
	VoucherCode   *string         `gorm:"uniqueIndex" json:"voucher_code,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2)" json:"amount"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Resource *Resource `gorm:"foreignKey:ResourceID" json:"resource,omitempty"`
}

// ConflictEligible reports whether this reservation blocks other bookings:
// confirmed and in-progress stays always do; a pending one only while it is
// younger than the grace window (older pendings are abandoned payments).
func (r *Reservation) ConflictEligible(now time.Time, grace time.Duration) bool {
	switch r.Status {
	case StatusConfirmed, StatusPickedUp, StatusCheckedIn:
		return true
	case StatusPending:
		return now.Sub(r.CreatedAt) <= grace
	default:
		return false
	}
}

// Terminal reports whether the status admits no further transitions.
func (s ReservationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusFailed
}
