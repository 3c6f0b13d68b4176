package ports

import (
	"context"
	"time"

	"paynest/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside orchestrator-managed units of work
// and acquire row-level locks; they are not separately transactional.
type WalletRepository interface {
	// GetOrCreateForUpdate returns the (userID, currency) wallet with an
	// exclusive row lock, creating it at zero balance on first access.
	// Safe under concurrent first access: the insert is idempotent and the
	// subsequent locking read serializes callers.
	GetOrCreateForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, currency string) (*domain.Wallet, error)
	// UpdateBalance writes a wallet's new balance within a transaction.
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error
	// GetByUserCurrency returns the (userID, currency) wallet without
	// locking, or nil when the user has no wallet in that currency.
	GetByUserCurrency(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error)
	// ListByUser returns all wallets owned by a user, oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
}

// TransactionRepository defines persistence operations for the ledger.
type TransactionRepository interface {
	// Create inserts a new transaction row. A reference id collision
	// surfaces as apperror.ErrDuplicateReference; callers retry with a
	// freshly generated reference.
	Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	// GetByReference fetches a transaction scoped to its owner. A
	// transaction is never visible to a non-owner.
	GetByReference(ctx context.Context, userID uuid.UUID, referenceID string) (*domain.Transaction, error)
	// GetByReferenceAny fetches a transaction without owner scoping.
	// Reserved for the privileged verification path.
	GetByReferenceAny(ctx context.Context, referenceID string) (*domain.Transaction, error)
	// AdvanceStatus conditionally moves a transaction from one status to
	// another. Fails with apperror.ErrStaleStatus if the current status
	// does not match, preventing double settlement or regression.
	AdvanceStatus(ctx context.Context, tx pgx.Tx, referenceID string, from, to domain.TransactionStatus) error
	// AttachProof atomically records a proof artifact and advances the
	// owner's pending transfer to processing. Returns ErrStaleStatus when
	// the row is not the caller's pending transfer.
	AttachProof(ctx context.Context, tx pgx.Tx, userID uuid.UUID, referenceID, proofURL string, submittedAt time.Time) error
	// RejectProof clears the proof slot, increments the reject counter and
	// returns the transfer from processing to pending. Returns the new
	// reject count.
	RejectProof(ctx context.Context, tx pgx.Tx, referenceID string) (int, error)
	// FindOverdue returns transfers stuck in pending/processing since
	// before the cutoff. A plain read: the release that follows runs per
	// transfer and its conditional status advance decides who wins when
	// sweeps or verifications race.
	FindOverdue(ctx context.Context, cutoff time.Time, limit int) ([]domain.Transaction, error)
	// List returns a user's transactions ordered by creation time
	// descending, plus the total row count.
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error)
	// GetStats aggregates per-kind and per-status figures for the dashboard.
	GetStats(ctx context.Context, userID uuid.UUID, periodStart *time.Time) (*TransactionStats, error)
}

// TransactionStats holds aggregated ledger figures for the dashboard.
type TransactionStats struct {
	TotalTransactions int64
	Completed         int64
	Pending           int64
	Failed            int64
	TotalExchanged    decimal.Decimal // from_amount of completed exchanges
	TotalTransferred  decimal.Decimal // from_amount of completed transfers
	TotalFees         decimal.Decimal // fees on completed transactions
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
