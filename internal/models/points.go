package models

import "time"

type PointType string

const (
	PointEarn   PointType = "earn"
	PointUse    PointType = "use"
	PointRefund PointType = "refund"
)

// LedgerEntry lives in the primary store and is append-only: the repository
// exposes no update or delete for it. BalanceAfter snapshots the running
// total immediately after this entry and is the authoritative balance.
type LedgerEntry struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         string     `gorm:"not null;index:idx_ledger_user_time" json:"user_id"`
	Points         int64      `gorm:"not null" json:"points"`
	PointType      PointType  `gorm:"type:varchar(10);not null" json:"point_type"`
	Reason         string     `json:"reason"`
	RelatedOrderID string     `gorm:"index" json:"related_order_id"`
	BalanceAfter   int64      `gorm:"not null" json:"balance_after"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `gorm:"index:idx_ledger_user_time" json:"created_at"`
}

// PointsAccount lives in the mirror store (MySQL). TotalPoints is a
// denormalized copy of the latest ledger BalanceAfter, kept for fast reads
// and repaired by reconciliation. It is never the ground truth.
type PointsAccount struct {
	UserID      string    `gorm:"primaryKey;size:64" json:"user_id"`
	TotalPoints int64     `gorm:"not null;default:0" json:"total_points"`
	UpdatedAt   time.Time `json:"updated_at"`
}
