package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tripmall/booking-core/internal/models"
)

// Envelope is the JSON shape every handler returns.
type Envelope struct {
	Success   bool   `json:"success"`
	Available *bool  `json:"available,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
}

func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

type AvailabilityResponse struct {
	Available     bool   `json:"available"`
	Reason        string `json:"reason,omitempty"`
	ConflictCount int    `json:"conflict_count"`
}

type BookingResponse struct {
	ID            uint                     `json:"id"`
	ResourceID    uint                     `json:"resource_id"`
	UserID        string                   `json:"user_id"`
	Units         int                      `json:"units"`
	StartAt       time.Time                `json:"start_at"`
	EndAt         time.Time                `json:"end_at"`
	Status        models.ReservationStatus `json:"status"`
	PaymentStatus models.PaymentStatus     `json:"payment_status"`
	BookingNumber string                   `json:"booking_number"`
	VoucherCode   *string                  `json:"voucher_code,omitempty"`
	Amount        decimal.Decimal          `json:"amount"`
	CreatedAt     time.Time                `json:"created_at"`
}

func ToBookingResponse(r *models.Reservation) BookingResponse {
	return BookingResponse{
		ID:            r.ID,
		ResourceID:    r.ResourceID,
		UserID:        r.UserID,
		Units:         r.Units,
		StartAt:       r.StartAt,
		EndAt:         r.EndAt,
		Status:        r.Status,
		PaymentStatus: r.PayStatus,
		BookingNumber: r.BookingNumber,
		VoucherCode:   r.VoucherCode,
		Amount:        r.Amount,
		CreatedAt:     r.CreatedAt,
	}
}

type BalanceResponse struct {
	UserID        string `json:"user_id"`
	LedgerBalance int64  `json:"ledger_balance"`
	MirrorBalance int64  `json:"mirror_balance"`
}

type LedgerEntryResponse struct {
	ID             uint             `json:"id"`
	UserID         string           `json:"user_id"`
	Points         int64            `json:"points"`
	PointType      models.PointType `json:"point_type"`
	Reason         string           `json:"reason"`
	RelatedOrderID string           `json:"related_order_id"`
	BalanceAfter   int64            `json:"balance_after"`
	CreatedAt      time.Time        `json:"created_at"`
}

func ToLedgerEntryResponse(e *models.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:             e.ID,
		UserID:         e.UserID,
		Points:         e.Points,
		PointType:      e.PointType,
		Reason:         e.Reason,
		RelatedOrderID: e.RelatedOrderID,
		BalanceAfter:   e.BalanceAfter,
		CreatedAt:      e.CreatedAt,
	}
}
