package repository

import (
	"context"
	"errors"

	"github.com/tripmall/booking-core/internal/models"
	"gorm.io/gorm"
)

// LedgerRepository is append-only by construction: there is no update or
// delete path for ledger entries. Corrections are made by appending.
type LedgerRepository interface {
	Append(ctx context.Context, tx *gorm.DB, entry *models.LedgerEntry) error
	LockUser(ctx context.Context, tx *gorm.DB, userID string) error
	Latest(ctx context.Context, tx *gorm.DB, userID string) (*models.LedgerEntry, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error)
	FindByOrderAndType(ctx context.Context, tx *gorm.DB, userID, orderID string, pointType models.PointType) (*models.LedgerEntry, error)
	DistinctUserIDs(ctx context.Context) ([]string, error)
	GetDB() *gorm.DB
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *ledgerRepository) Append(ctx context.Context, tx *gorm.DB, entry *models.LedgerEntry) error {
	return tx.WithContext(ctx).Create(entry).Error
}

// LockUser serializes concurrent ledger writes for one user within the
// enclosing transaction. The ledger has no account row to lock (a brand-new
// user has no rows at all), so a transaction-scoped advisory lock keyed on
// the user id stands in. SQLite serializes writers itself.
func (r *ledgerRepository) LockUser(ctx context.Context, tx *gorm.DB, userID string) error {
	if tx.Dialector.Name() == "sqlite" {
		return nil
	}
	return tx.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", userID).Error
}

// Latest returns the chronologically newest entry for the user, tie-broken
// by id descending. Its BalanceAfter is the authoritative balance.
func (r *ledgerRepository) Latest(ctx context.Context, tx *gorm.DB, userID string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *ledgerRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ledgerRepository) FindByOrderAndType(ctx context.Context, tx *gorm.DB, userID, orderID string, pointType models.PointType) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := tx.WithContext(ctx).
		Where("user_id = ? AND related_order_id = ? AND point_type = ?", userID, orderID, pointType).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *ledgerRepository) DistinctUserIDs(ctx context.Context) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}
