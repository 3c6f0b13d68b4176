package service

import (
	"context"
	"fmt"
	"time"

	"paynest/internal/core/domain"
	"paynest/internal/core/ports"
	"paynest/pkg/apperror"

	"github.com/google/uuid"
)

// ReportingServiceImpl implements ports.ReportingService.
type ReportingServiceImpl struct {
	txRepo     ports.TransactionRepository
	walletRepo ports.WalletRepository
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(txRepo ports.TransactionRepository, walletRepo ports.WalletRepository) *ReportingServiceImpl {
	return &ReportingServiceImpl{txRepo: txRepo, walletRepo: walletRepo}
}

// ListTransactions returns a user's transactions, newest first.
func (s *ReportingServiceImpl) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error) {
	if limit <= 0 {
		limit = ports.DefaultPageSize
	}
	if limit > ports.MaxPageSize {
		limit = ports.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	txns, total, err := s.txRepo.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, total, nil
}

// GetTransaction returns one transaction, owner-scoped.
func (s *ReportingServiceImpl) GetTransaction(ctx context.Context, userID uuid.UUID, referenceID string) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByReference(ctx, userID, referenceID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	return txn, nil
}

// GetWallets returns all of a user's wallets.
func (s *ReportingServiceImpl) GetWallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}
	return wallets, nil
}

// GetWallet returns the user's wallet in one currency. A currency the
// user never touched is NotFound, not an implicit zero-balance wallet;
// wallets come into being through ledger operations only.
func (s *ReportingServiceImpl) GetWallet(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserCurrency(ctx, userID, currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	return wallet, nil
}

// GetStats aggregates ledger figures for the dashboard. Period is one of
// "24h", "7d", "30d" or empty for all time.
func (s *ReportingServiceImpl) GetStats(ctx context.Context, userID uuid.UUID, period string) (*ports.TransactionStats, error) {
	var periodStart *time.Time
	switch period {
	case "":
		// all time
	case "24h":
		t := time.Now().UTC().Add(-24 * time.Hour)
		periodStart = &t
	case "7d":
		t := time.Now().UTC().AddDate(0, 0, -7)
		periodStart = &t
	case "30d":
		t := time.Now().UTC().AddDate(0, 0, -30)
		periodStart = &t
	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown period: %s", period))
	}

	stats, err := s.txRepo.GetStats(ctx, userID, periodStart)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get stats: %w", err))
	}
	return stats, nil
}
