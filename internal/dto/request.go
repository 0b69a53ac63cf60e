package dto

import "github.com/shopspring/decimal"

type CreateResourceRequest struct {
	PartnerID     uint   `json:"partner_id"`
	Vertical      string `json:"vertical"`
	Name          string `json:"name"`
	MaxUnits      int    `json:"max_units"`
	BufferMinutes int    `json:"buffer_minutes"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

type UpdateCapacityRequest struct {
	MaxUnits int `json:"max_units"`
}

type CreateBookingRequest struct {
	UserID  string          `json:"user_id"`
	Units   int             `json:"units"`
	StartAt string          `json:"start_at"`
	EndAt   string          `json:"end_at"`
	Amount  decimal.Decimal `json:"amount"`
}

type EarnPointsRequest struct {
	UserID  string          `json:"user_id"`
	OrderID string          `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
	Rate    decimal.Decimal `json:"rate"`
}

type UsePointsRequest struct {
	UserID  string `json:"user_id"`
	OrderID string `json:"order_id"`
	Points  int64  `json:"points"`
}

type RefundPointsRequest struct {
	UserID  string `json:"user_id"`
	OrderID string `json:"order_id"`
	Points  int64  `json:"points"`
}
