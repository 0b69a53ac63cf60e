package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripmall/booking-core/internal/models"
	"github.com/tripmall/booking-core/internal/repository"
	"gorm.io/gorm"
)

func newPointsFixture(t *testing.T) (PointsService, ReconcileService, *gorm.DB, *gorm.DB) {
	primary := newPrimaryDB(t)
	mirror := newMirrorDB(t)

	ledgerRepo := repository.NewLedgerRepository(primary)
	accountRepo := repository.NewAccountRepository(mirror)

	return NewPointsService(ledgerRepo, accountRepo),
		NewReconcileService(ledgerRepo, accountRepo),
		primary, mirror
}

func mirrorTotal(t *testing.T, mirror *gorm.DB, userID string) int64 {
	t.Helper()
	var account models.PointsAccount
	require.NoError(t, mirror.Where("user_id = ?", userID).First(&account).Error)
	return account.TotalPoints
}

// Earning 2% on a 50,000-unit order credits exactly 1000 points and the
// mirror follows the ledger.
func TestEarn_RateArithmetic(t *testing.T) {
	points, _, _, mirror := newPointsFixture(t)

	entry, err := points.Earn(context.Background(), "user-1", "order-1",
		decimal.NewFromInt(50000), decimal.NewFromFloat(0.02))
	require.NoError(t, err)

	assert.EqualValues(t, 1000, entry.Points)
	assert.EqualValues(t, 1000, entry.BalanceAfter)
	assert.Equal(t, models.PointEarn, entry.PointType)
	assert.EqualValues(t, 1000, mirrorTotal(t, mirror, "user-1"))
}

func TestEarn_FloorsFractionalPoints(t *testing.T) {
	points, _, _, _ := newPointsFixture(t)

	entry, err := points.Earn(context.Background(), "user-1", "order-1",
		decimal.NewFromInt(999), decimal.NewFromFloat(0.02))
	require.NoError(t, err)

	// 999 * 0.02 = 19.98 -> 19
	assert.EqualValues(t, 19, entry.Points)
}

func TestEarn_InvalidAmount(t *testing.T) {
	points, _, _, _ := newPointsFixture(t)

	_, err := points.Earn(context.Background(), "user-1", "order-1",
		decimal.Zero, decimal.NewFromFloat(0.02))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestUse_DebitsBalance(t *testing.T) {
	points, _, _, mirror := newPointsFixture(t)

	_, err := points.Earn(context.Background(), "user-1", "order-1",
		decimal.NewFromInt(50000), decimal.NewFromFloat(0.02))
	require.NoError(t, err)

	entry, err := points.Use(context.Background(), "user-1", "order-2", 300)
	require.NoError(t, err)

	assert.EqualValues(t, -300, entry.Points)
	assert.EqualValues(t, 700, entry.BalanceAfter)
	assert.EqualValues(t, 700, mirrorTotal(t, mirror, "user-1"))
}

func TestUse_InsufficientPoints(t *testing.T) {
	points, _, primary, _ := newPointsFixture(t)

	_, err := points.Earn(context.Background(), "user-1", "order-1",
		decimal.NewFromInt(100), decimal.NewFromFloat(0.02))
	require.NoError(t, err)

	_, err = points.Use(context.Background(), "user-1", "order-2", 50)
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	// refused spends leave no ledger entry
	var count int64
	require.NoError(t, primary.Model(&models.LedgerEntry{}).
		Where("user_id = ? AND point_type = ?", "user-1", models.PointUse).
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestUse_InvalidPoints(t *testing.T) {
	points, _, _, _ := newPointsFixture(t)

	_, err := points.Use(context.Background(), "user-1", "order-1", 0)
	assert.ErrorIs(t, err, ErrInvalidPoints)
}

func TestRefund_ReversesUse(t *testing.T) {
	points, _, _, mirror := newPointsFixture(t)

	_, err := points.Earn(context.Background(), "user-1", "order-1",
		decimal.NewFromInt(50000), decimal.NewFromFloat(0.02))
	require.NoError(t, err)
	_, err = points.Use(context.Background(), "user-1", "order-2", 300)
	require.NoError(t, err)

	entry, err := points.Refund(context.Background(), "user-1", "order-2", 300)
	require.NoError(t, err)

	assert.EqualValues(t, 300, entry.Points)
	assert.EqualValues(t, 1000, entry.BalanceAfter)
	assert.EqualValues(t, 1000, mirrorTotal(t, mirror, "user-1"))
}

func TestRefund_ClawsBackEarn(t *testing.T) {
	points, _, _, _ := newPointsFixture(t)

	_, err := points.Earn(context.Background(), "user-1", "order-1",
		decimal.NewFromInt(50000), decimal.NewFromFloat(0.02))
	require.NoError(t, err)

	entry, err := points.Refund(context.Background(), "user-1", "order-1", 1000)
	require.NoError(t, err)

	assert.EqualValues(t, -1000, entry.Points)
	assert.EqualValues(t, 0, entry.BalanceAfter)
}

// A second refund for the same order is a no-op, not a double credit.
func TestRefund_IdempotentPerOrder(t *testing.T) {
	points, _, primary, mirror := newPointsFixture(t)

	_, err := points.Earn(context.Background(), "user-1", "order-1",
		decimal.NewFromInt(50000), decimal.NewFromFloat(0.02))
	require.NoError(t, err)
	_, err = points.Use(context.Background(), "user-1", "order-2", 300)
	require.NoError(t, err)

	first, err := points.Refund(context.Background(), "user-1", "order-2", 300)
	require.NoError(t, err)
	second, err := points.Refund(context.Background(), "user-1", "order-2", 300)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 1000, mirrorTotal(t, mirror, "user-1"))

	var count int64
	require.NoError(t, primary.Model(&models.LedgerEntry{}).
		Where("user_id = ? AND point_type = ?", "user-1", models.PointRefund).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRefund_UnknownOrder(t *testing.T) {
	points, _, _, _ := newPointsFixture(t)

	_, err := points.Refund(context.Background(), "user-1", "order-x", 100)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetBalance(t *testing.T) {
	points, _, _, _ := newPointsFixture(t)

	_, err := points.Earn(context.Background(), "user-1", "order-1",
		decimal.NewFromInt(50000), decimal.NewFromFloat(0.02))
	require.NoError(t, err)

	balance, err := points.GetBalance(context.Background(), "user-1")
	require.NoError(t, err)

	assert.EqualValues(t, 1000, balance.LedgerBalance)
	assert.EqualValues(t, 1000, balance.MirrorBalance)
}

func TestHistory_NewestFirst(t *testing.T) {
	points, _, _, _ := newPointsFixture(t)

	_, err := points.Earn(context.Background(), "user-1", "order-1",
		decimal.NewFromInt(50000), decimal.NewFromFloat(0.02))
	require.NoError(t, err)
	_, err = points.Use(context.Background(), "user-1", "order-2", 100)
	require.NoError(t, err)

	entries, err := points.History(context.Background(), "user-1", 10)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, models.PointUse, entries[0].PointType)
	assert.Equal(t, models.PointEarn, entries[1].PointType)
}
