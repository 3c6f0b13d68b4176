package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paynest/internal/core/domain"
	"paynest/internal/core/ports"
	"paynest/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const txColumns = `id, reference_id, user_id, kind, from_currency, to_currency,
	from_amount, to_amount, fee, exchange_rate, counterparty, status,
	proof_url, proof_submitted_at, proof_rejects, created_at, updated_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new transaction within a database transaction.
// A reference id collision maps to apperror.ErrDuplicateReference so the
// caller can retry with a fresh reference.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (` + txColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.ReferenceID, t.UserID, t.Kind, t.FromCurrency, t.ToCurrency,
		t.FromAmount, t.ToAmount, t.Fee, t.ExchangeRate, t.Counterparty, t.Status,
		t.ProofURL, t.ProofSubmittedAt, t.ProofRejects, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.ErrDuplicateReference()
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByReference fetches a transaction scoped to its owner.
func (r *TransactionRepo) GetByReference(ctx context.Context, userID uuid.UUID, referenceID string) (*domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE user_id = $1 AND reference_id = $2`
	return scanTransaction(r.pool.QueryRow(ctx, query, userID, referenceID))
}

// GetByReferenceAny fetches a transaction without owner scoping.
// Reserved for the privileged verification path.
func (r *TransactionRepo) GetByReferenceAny(ctx context.Context, referenceID string) (*domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE reference_id = $1`
	return scanTransaction(r.pool.QueryRow(ctx, query, referenceID))
}

// AdvanceStatus conditionally moves a transaction between statuses.
// The WHERE clause carries the expected current status; zero rows affected
// means another update won the race and the caller gets ErrStaleStatus.
func (r *TransactionRepo) AdvanceStatus(ctx context.Context, tx pgx.Tx, referenceID string, from, to domain.TransactionStatus) error {
	query := `UPDATE transactions SET status = $1, updated_at = NOW()
		WHERE reference_id = $2 AND status = $3`

	tag, err := tx.Exec(ctx, query, to, referenceID, from)
	if err != nil {
		return fmt.Errorf("advance transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrStaleStatus()
	}
	return nil
}

// AttachProof records a proof artifact and advances the owner's pending
// transfer to processing, as one conditional update.
func (r *TransactionRepo) AttachProof(ctx context.Context, tx pgx.Tx, userID uuid.UUID, referenceID, proofURL string, submittedAt time.Time) error {
	query := `UPDATE transactions
		SET status = $1, proof_url = $2, proof_submitted_at = $3, updated_at = NOW()
		WHERE reference_id = $4 AND user_id = $5 AND kind = $6 AND status = $7`

	tag, err := tx.Exec(ctx, query,
		domain.TransactionStatusProcessing, proofURL, submittedAt,
		referenceID, userID, domain.TransactionKindTransfer, domain.TransactionStatusPending,
	)
	if err != nil {
		return fmt.Errorf("attach proof: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrStaleStatus()
	}
	return nil
}

// RejectProof clears the proof slot, bumps the reject counter and returns
// the transfer from processing to pending.
func (r *TransactionRepo) RejectProof(ctx context.Context, tx pgx.Tx, referenceID string) (int, error) {
	query := `UPDATE transactions
		SET status = $1, proof_url = NULL, proof_submitted_at = NULL,
			proof_rejects = proof_rejects + 1, updated_at = NOW()
		WHERE reference_id = $2 AND status = $3
		RETURNING proof_rejects`

	var rejects int
	err := tx.QueryRow(ctx, query,
		domain.TransactionStatusPending, referenceID, domain.TransactionStatusProcessing,
	).Scan(&rejects)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.ErrStaleStatus()
		}
		return 0, fmt.Errorf("reject proof: %w", err)
	}
	return rejects, nil
}

// FindOverdue returns transfers stuck in pending/processing since before
// the cutoff. Takes no locks: the per-transfer release that follows wins
// or loses through its conditional status advance, so a stale scan result
// is harmless.
func (r *TransactionRepo) FindOverdue(ctx context.Context, cutoff time.Time, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions
		WHERE kind = $1 AND status IN ($2, $3) AND created_at < $4
		ORDER BY created_at ASC LIMIT $5`

	rows, err := r.pool.Query(ctx, query,
		domain.TransactionKindTransfer,
		domain.TransactionStatusPending, domain.TransactionStatusProcessing,
		cutoff, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("find overdue transfers: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// List fetches a user's transactions, newest first, with the total count.
func (r *TransactionRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query := `SELECT ` + txColumns + ` FROM transactions
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// GetStats retrieves aggregated ledger statistics for a user.
func (r *TransactionRepo) GetStats(ctx context.Context, userID uuid.UUID, periodStart *time.Time) (*ports.TransactionStats, error) {
	condition := "user_id = $1"
	args := []any{userID}
	if periodStart != nil {
		condition += " AND created_at >= $2"
		args = append(args, *periodStart)
	}

	query := fmt.Sprintf(`SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'completed') AS completed,
		COUNT(*) FILTER (WHERE status IN ('pending', 'processing')) AS pending,
		COUNT(*) FILTER (WHERE status = 'failed') AS failed,
		COALESCE(SUM(from_amount) FILTER (WHERE kind = 'exchange' AND status = 'completed'), 0) AS exchanged,
		COALESCE(SUM(from_amount) FILTER (WHERE kind = 'transfer' AND status = 'completed'), 0) AS transferred,
		COALESCE(SUM(fee) FILTER (WHERE status = 'completed'), 0) AS fees
		FROM transactions WHERE %s`, condition)

	stats := &ports.TransactionStats{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&stats.TotalTransactions, &stats.Completed, &stats.Pending, &stats.Failed,
		&stats.TotalExchanged, &stats.TotalTransferred, &stats.TotalFees,
	)
	if err != nil {
		return nil, fmt.Errorf("get transaction stats: %w", err)
	}
	return stats, nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.ReferenceID, &t.UserID, &t.Kind, &t.FromCurrency, &t.ToCurrency,
		&t.FromAmount, &t.ToAmount, &t.Fee, &t.ExchangeRate, &t.Counterparty, &t.Status,
		&t.ProofURL, &t.ProofSubmittedAt, &t.ProofRejects, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.ReferenceID, &t.UserID, &t.Kind, &t.FromCurrency, &t.ToCurrency,
			&t.FromAmount, &t.ToAmount, &t.Fee, &t.ExchangeRate, &t.Counterparty, &t.Status,
			&t.ProofURL, &t.ProofSubmittedAt, &t.ProofRejects, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}
