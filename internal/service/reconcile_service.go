package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/tripmall/booking-core/internal/repository"
	"github.com/tripmall/booking-core/monitoring"
	"gorm.io/gorm"
)

type ReconcileResult struct {
	UserID        string `json:"user_id"`
	LedgerBalance int64  `json:"ledger_balance"`
	MirrorBalance int64  `json:"mirror_balance"`
	Corrected     bool   `json:"corrected"`
}

// ReconcileService repairs divergence between the ledger's latest
// balance_after and the mirrored total. The ledger is always ground truth;
// the mirror is overwritten, never the reverse. Divergence is logged and
// counted but does not fail the triggering request.
type ReconcileService interface {
	ReconcileUser(ctx context.Context, userID string) (*ReconcileResult, error)
	ReconcileAll(ctx context.Context) ([]ReconcileResult, error)
}

type reconcileService struct {
	ledgerRepo  repository.LedgerRepository
	accountRepo repository.AccountRepository
	log         *logrus.Entry
}

func NewReconcileService(ledgerRepo repository.LedgerRepository, accountRepo repository.AccountRepository) ReconcileService {
	return &reconcileService{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		log:         logrus.WithField("component", "reconcile"),
	}
}

func (s *reconcileService) ReconcileUser(ctx context.Context, userID string) (*ReconcileResult, error) {
	result := &ReconcileResult{UserID: userID}

	latest, err := s.ledgerRepo.Latest(ctx, s.ledgerRepo.GetDB(), userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	account, err := s.accountRepo.Find(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// No ledger history and no mirror row: nothing to reconcile.
	if latest == nil && account == nil {
		return result, nil
	}

	if latest != nil {
		result.LedgerBalance = latest.BalanceAfter
	}
	if account != nil {
		result.MirrorBalance = account.TotalPoints
	}

	if result.MirrorBalance == result.LedgerBalance && account != nil {
		return result, nil
	}

	if err := s.accountRepo.SetTotal(ctx, userID, result.LedgerBalance); err != nil {
		return nil, err
	}

	result.Corrected = true
	monitoring.RecordReconciliationCorrection()
	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"ledger":  result.LedgerBalance,
		"mirror":  result.MirrorBalance,
	}).Warn("mirror diverged from ledger; corrected")

	return result, nil
}

func (s *reconcileService) ReconcileAll(ctx context.Context) ([]ReconcileResult, error) {
	userIDs, err := s.ledgerRepo.DistinctUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]ReconcileResult, 0, len(userIDs))
	for _, userID := range userIDs {
		result, err := s.ReconcileUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}
