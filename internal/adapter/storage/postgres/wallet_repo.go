package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paynest/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// GetOrCreateForUpdate returns the (userID, currency) wallet with an
// exclusive row lock, creating it at zero balance on first access.
// The insert is a no-op when the wallet already exists, so concurrent
// first access cannot produce duplicate rows; the locking read that
// follows serializes all callers on the row.
// MUST be called within a transaction.
func (r *WalletRepo) GetOrCreateForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	now := time.Now().UTC()
	insert := `INSERT INTO wallets (id, user_id, currency, balance, is_crypto, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $5, $5)
		ON CONFLICT (user_id, currency) DO NOTHING`

	_, err := tx.Exec(ctx, insert, uuid.New(), userID, currency, domain.IsCryptoCurrency(currency), now)
	if err != nil {
		return nil, fmt.Errorf("ensure wallet: %w", err)
	}

	query := `SELECT id, user_id, currency, balance, is_crypto, created_at, updated_at
		FROM wallets WHERE user_id = $1 AND currency = $2 FOR UPDATE`

	w := &domain.Wallet{}
	err = tx.QueryRow(ctx, query, userID, currency).Scan(
		&w.ID, &w.UserID, &w.Currency, &w.Balance,
		&w.IsCrypto, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}
	return w, nil
}

// UpdateBalance writes a wallet's new balance within a transaction.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	query := `UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}

// GetByUserCurrency returns the (userID, currency) wallet without locking,
// or nil when the user holds no wallet in that currency.
func (r *WalletRepo) GetByUserCurrency(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	query := `SELECT id, user_id, currency, balance, is_crypto, created_at, updated_at
		FROM wallets WHERE user_id = $1 AND currency = $2`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, userID, currency).Scan(
		&w.ID, &w.UserID, &w.Currency, &w.Balance,
		&w.IsCrypto, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

// ListByUser returns all wallets owned by a user, oldest first.
func (r *WalletRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	query := `SELECT id, user_id, currency, balance, is_crypto, created_at, updated_at
		FROM wallets WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		w := domain.Wallet{}
		err := rows.Scan(
			&w.ID, &w.UserID, &w.Currency, &w.Balance,
			&w.IsCrypto, &w.CreatedAt, &w.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}
	return wallets, nil
}
