package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tripmall/booking-core/internal/models"
	"github.com/tripmall/booking-core/internal/repository"
	"github.com/tripmall/booking-core/monitoring"
	"gorm.io/gorm"
)

var (
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidPoints      = errors.New("points must be positive")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrOrderNotFound      = errors.New("no ledger entry for this order")
)

type Balance struct {
	UserID        string
	LedgerBalance int64
	MirrorBalance int64
}

// PointsService appends to the ledger in the primary store and mirrors the
// running total into the secondary store. The ledger is authoritative; the
// mirror write always comes second and its failure is tolerated (it is the
// divergence window reconciliation exists to repair).
type PointsService interface {
	Earn(ctx context.Context, userID, orderID string, amount, rate decimal.Decimal) (*models.LedgerEntry, error)
	Use(ctx context.Context, userID, orderID string, points int64) (*models.LedgerEntry, error)
	Refund(ctx context.Context, userID, orderID string, points int64) (*models.LedgerEntry, error)
	GetBalance(ctx context.Context, userID string) (*Balance, error)
	History(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error)
}

type pointsService struct {
	ledgerRepo  repository.LedgerRepository
	accountRepo repository.AccountRepository
	log         *logrus.Entry
}

func NewPointsService(ledgerRepo repository.LedgerRepository, accountRepo repository.AccountRepository) PointsService {
	return &pointsService{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		log:         logrus.WithField("component", "points"),
	}
}

// Earn credits floor(amount*rate) points for an order.
func (s *pointsService) Earn(ctx context.Context, userID, orderID string, amount, rate decimal.Decimal) (*models.LedgerEntry, error) {
	if amount.Sign() <= 0 || rate.Sign() <= 0 {
		monitoring.RecordPointsOperation("earn", "invalid")
		return nil, ErrInvalidAmount
	}

	delta := amount.Mul(rate).Floor().IntPart()
	entry, err := s.append(ctx, userID, &models.LedgerEntry{
		UserID:         userID,
		Points:         delta,
		PointType:      models.PointEarn,
		Reason:         fmt.Sprintf("earned on order %s", orderID),
		RelatedOrderID: orderID,
	})
	if err != nil {
		monitoring.RecordPointsOperation("earn", "error")
		return nil, err
	}

	monitoring.RecordPointsOperation("earn", "ok")
	return entry, nil
}

// Use debits points, refusing to spend past the authoritative balance.
func (s *pointsService) Use(ctx context.Context, userID, orderID string, points int64) (*models.LedgerEntry, error) {
	if points <= 0 {
		monitoring.RecordPointsOperation("use", "invalid")
		return nil, ErrInvalidPoints
	}

	entry, err := s.append(ctx, userID, &models.LedgerEntry{
		UserID:         userID,
		Points:         -points,
		PointType:      models.PointUse,
		Reason:         fmt.Sprintf("spent on order %s", orderID),
		RelatedOrderID: orderID,
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientPoints) {
			monitoring.RecordPointsOperation("use", "insufficient")
		} else {
			monitoring.RecordPointsOperation("use", "error")
		}
		return nil, err
	}

	monitoring.RecordPointsOperation("use", "ok")
	return entry, nil
}

// Refund reverses a prior use (credit back) or claws back a prior earn
// (debit). It is idempotent per order: a second refund for the same order
// returns the existing entry without appending. The duplicate check runs
// under the same per-user lock as the append; two concurrent refund
// requests would otherwise both see no existing entry and both credit.
func (s *pointsService) Refund(ctx context.Context, userID, orderID string, points int64) (*models.LedgerEntry, error) {
	if points <= 0 {
		monitoring.RecordPointsOperation("refund", "invalid")
		return nil, ErrInvalidPoints
	}

	var (
		entry     *models.LedgerEntry
		duplicate bool
	)

	err := s.ledgerRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ledgerRepo.LockUser(ctx, tx, userID); err != nil {
			return err
		}

		existing, err := s.ledgerRepo.FindByOrderAndType(ctx, tx, userID, orderID, models.PointRefund)
		if err != nil {
			return err
		}
		if existing != nil {
			entry = existing
			duplicate = true
			return nil
		}

		// Direction follows the entry being reversed.
		delta := points
		prior, err := s.ledgerRepo.FindByOrderAndType(ctx, tx, userID, orderID, models.PointUse)
		if err != nil {
			return err
		}
		if prior == nil {
			earned, errEarn := s.ledgerRepo.FindByOrderAndType(ctx, tx, userID, orderID, models.PointEarn)
			if errEarn != nil {
				return errEarn
			}
			if earned == nil {
				return ErrOrderNotFound
			}
			delta = -points
		}

		entry = &models.LedgerEntry{
			UserID:         userID,
			Points:         delta,
			PointType:      models.PointRefund,
			Reason:         fmt.Sprintf("refund for order %s", orderID),
			RelatedOrderID: orderID,
		}
		return s.appendTx(ctx, tx, userID, entry)
	})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			monitoring.RecordPointsOperation("refund", "invalid")
		} else {
			monitoring.RecordPointsOperation("refund", "error")
		}
		return nil, err
	}

	if duplicate {
		monitoring.RecordPointsOperation("refund", "duplicate")
		s.log.WithFields(logrus.Fields{"user_id": userID, "order_id": orderID}).
			Info("duplicate refund request ignored")
		return entry, nil
	}

	s.updateMirror(ctx, userID, entry.BalanceAfter)
	monitoring.RecordPointsOperation("refund", "ok")
	return entry, nil
}

func (s *pointsService) GetBalance(ctx context.Context, userID string) (*Balance, error) {
	balance := &Balance{UserID: userID}

	latest, err := s.ledgerRepo.Latest(ctx, s.ledgerRepo.GetDB(), userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if latest != nil {
		balance.LedgerBalance = latest.BalanceAfter
	}

	account, err := s.accountRepo.Find(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if account != nil {
		balance.MirrorBalance = account.TotalPoints
	}

	return balance, nil
}

func (s *pointsService) History(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error) {
	return s.ledgerRepo.ListByUser(ctx, userID, limit)
}

// append performs the required write ordering for every mutation:
// read the latest balance from the ledger (never the mirror), compute the
// new balance, append the entry inside a primary-store transaction, then
// update the mirror. A failed mirror write is logged, not fatal.
func (s *pointsService) append(ctx context.Context, userID string, entry *models.LedgerEntry) (*models.LedgerEntry, error) {
	err := s.ledgerRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ledgerRepo.LockUser(ctx, tx, userID); err != nil {
			return err
		}
		return s.appendTx(ctx, tx, userID, entry)
	})
	if err != nil {
		return nil, err
	}

	s.updateMirror(ctx, userID, entry.BalanceAfter)
	return entry, nil
}

// appendTx computes the running balance and writes the entry. The caller
// must hold the per-user lock in tx.
func (s *pointsService) appendTx(ctx context.Context, tx *gorm.DB, userID string, entry *models.LedgerEntry) error {
	previous := int64(0)
	latest, err := s.ledgerRepo.Latest(ctx, tx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if latest != nil {
		previous = latest.BalanceAfter
	}

	if entry.PointType == models.PointUse && -entry.Points > previous {
		return ErrInsufficientPoints
	}

	entry.BalanceAfter = previous + entry.Points
	return s.ledgerRepo.Append(ctx, tx, entry)
}

func (s *pointsService) updateMirror(ctx context.Context, userID string, balance int64) {
	if err := s.accountRepo.SetTotal(ctx, userID, balance); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"balance": balance,
		}).Warn("mirror update failed; reconciliation will repair")
	}
}
