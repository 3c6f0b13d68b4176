package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walletColumns() []string {
	return []string{"id", "user_id", "currency", "balance", "is_crypto", "created_at", "updated_at"}
}

func TestWalletRepo_GetOrCreateForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()
	walletID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(pgxmock.AnyArg(), userID, "USD", false, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id .+ FOR UPDATE").
		WithArgs(userID, "USD").
		WillReturnRows(pgxmock.NewRows(walletColumns()).AddRow(
			walletID, userID, "USD", decimal.RequireFromString("100"), false, now, now,
		))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	w, err := repo.GetOrCreateForUpdate(context.Background(), dbTx, userID, "USD")
	require.NoError(t, err)
	assert.Equal(t, walletID, w.ID)
	assert.True(t, w.Balance.Equal(decimal.RequireFromString("100")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetOrCreateForUpdate_MarksCrypto(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(pgxmock.AnyArg(), userID, "BTC", true, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id .+ FOR UPDATE").
		WithArgs(userID, "BTC").
		WillReturnRows(pgxmock.NewRows(walletColumns()).AddRow(
			uuid.New(), userID, "BTC", decimal.Zero, true, now, now,
		))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	w, err := repo.GetOrCreateForUpdate(context.Background(), dbTx, userID, "BTC")
	require.NoError(t, err)
	assert.True(t, w.IsCrypto)
	assert.True(t, w.Balance.IsZero())
}

func TestWalletRepo_UpdateBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	walletID := uuid.New()
	balance := decimal.RequireFromString("47.01")

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET balance").
		WithArgs(balance, walletID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalance(context.Background(), dbTx, walletID, balance)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalance_MissingWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET balance").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalance(context.Background(), dbTx, uuid.New(), decimal.Zero)
	assert.Error(t, err)
}

func TestWalletRepo_GetByUserCurrency(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id .+ currency").
		WithArgs(userID, "EUR").
		WillReturnRows(pgxmock.NewRows(walletColumns()).AddRow(
			uuid.New(), userID, "EUR", decimal.RequireFromString("906.2"), false, now, now,
		))

	w, err := repo.GetByUserCurrency(context.Background(), userID, "EUR")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, "EUR", w.Currency)
	assert.True(t, w.Balance.Equal(decimal.RequireFromString("906.2")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByUserCurrency_MissingIsNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id .+ currency").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(walletColumns()))

	w, err := repo.GetByUserCurrency(context.Background(), uuid.New(), "JPY")
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestWalletRepo_ListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(walletColumns()).
			AddRow(uuid.New(), userID, "USD", decimal.RequireFromString("100"), false, now, now).
			AddRow(uuid.New(), userID, "BTC", decimal.RequireFromString("0.5"), true, now, now))

	wallets, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, "USD", wallets[0].Currency)
	assert.Equal(t, "BTC", wallets[1].Currency)
	assert.NoError(t, mock.ExpectationsWereMet())
}
