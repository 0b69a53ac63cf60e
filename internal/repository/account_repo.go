package repository

import (
	"context"

	"github.com/tripmall/booking-core/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository fronts the mirror store (MySQL). It holds one row per
// user with the denormalized points total. No transaction spans this store
// and the primary one; ledger writes always come first.
type AccountRepository interface {
	Find(ctx context.Context, userID string) (*models.PointsAccount, error)
	SetTotal(ctx context.Context, userID string, total int64) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Find(ctx context.Context, userID string) (*models.PointsAccount, error) {
	var account models.PointsAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// SetTotal upserts the mirrored total for a user.
func (r *accountRepository) SetTotal(ctx context.Context, userID string, total int64) error {
	account := models.PointsAccount{UserID: userID, TotalPoints: total}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_points", "updated_at"}),
	}).Create(&account).Error
}
