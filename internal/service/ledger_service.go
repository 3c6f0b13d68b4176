package service

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
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// referenceRetries bounds retry-on-collision for generated reference ids.
const referenceRetries = 3

// LedgerServiceImpl implements ports.LedgerService: the orchestrator that
// turns caller intent into one atomic unit of work against the wallet
// store and the transaction ledger.
type LedgerServiceImpl struct {
	txRepo     ports.TransactionRepository
	walletRepo ports.WalletRepository
	transactor ports.DBTransactor
	feeRatio   decimal.Decimal
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	txRepo ports.TransactionRepository,
	walletRepo ports.WalletRepository,
	transactor ports.DBTransactor,
	feeRatio decimal.Decimal,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		txRepo:     txRepo,
		walletRepo: walletRepo,
		transactor: transactor,
		feeRatio:   feeRatio,
		log:        log,
	}
}

// Exchange converts between two of the caller's wallets at the supplied
// rate, charging the fee ratio on the converted amount. Settles
// synchronously: the transaction is recorded completed.
func (s *LedgerServiceImpl) Exchange(ctx context.Context, req ports.ExchangeRequest) (*ports.ExchangeResult, error) {
	if !domain.IsCurrencyCode(req.FromCurrency) || !domain.IsCurrencyCode(req.ToCurrency) {
		return nil, apperror.Validation("currency must be an uppercase ISO-style code")
	}
	if req.FromCurrency == req.ToCurrency {
		return nil, apperror.Validation("source and destination currency must differ")
	}

	quote, err := domain.ComputeExchange(req.FromAmount, req.Rate, s.feeRatio)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock both wallets in currency order so two exchanges over the same
	// pair can never deadlock.
	first, second := req.FromCurrency, req.ToCurrency
	if second < first {
		first, second = second, first
	}
	locked := map[string]*domain.Wallet{}
	for _, currency := range []string{first, second} {
		w, err := s.walletRepo.GetOrCreateForUpdate(ctx, dbTx, req.UserID, currency)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("lock wallet %s: %w", currency, err))
		}
		locked[currency] = w
	}
	fromWallet, toWallet := locked[req.FromCurrency], locked[req.ToCurrency]

	if err := fromWallet.Debit(req.FromAmount); err != nil {
		return nil, mapWalletErr(err)
	}
	if err := toWallet.Credit(quote.ToAmount); err != nil {
		return nil, mapWalletErr(err)
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, fromWallet.ID, fromWallet.Balance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update source balance: %w", err))
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, toWallet.ID, toWallet.Balance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update destination balance: %w", err))
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:           uuid.New(),
		UserID:       req.UserID,
		Kind:         domain.TransactionKindExchange,
		FromCurrency: req.FromCurrency,
		ToCurrency:   &req.ToCurrency,
		FromAmount:   req.FromAmount,
		ToAmount:     decimal.NewNullDecimal(quote.ToAmount),
		Fee:          quote.Fee,
		ExchangeRate: decimal.NewNullDecimal(req.Rate),
		Status:       domain.TransactionStatusCompleted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.createWithFreshReference(ctx, dbTx, txn); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("reference", txn.ReferenceID).
		Str("user_id", req.UserID.String()).
		Str("from", req.FromCurrency).
		Str("to", req.ToCurrency).
		Str("from_amount", req.FromAmount.String()).
		Str("to_amount", quote.ToAmount.String()).
		Msg("exchange completed")

	return &ports.ExchangeResult{
		Transaction: txn,
		FromBalance: fromWallet.Balance,
		ToBalance:   toWallet.Balance,
	}, nil
}

// Transfer reserves amount plus the speed-tier fee out of the caller's
// wallet and records a pending transfer awaiting settlement proof.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*domain.Transaction, error) {
	if !domain.IsCurrencyCode(req.Currency) {
		return nil, apperror.Validation("currency must be an uppercase ISO-style code")
	}
	if req.Amount.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.Recipient == "" {
		return nil, apperror.Validation("recipient is required")
	}
	fee, ok := domain.TransferFee(req.Speed)
	if !ok {
		return nil, apperror.Validation(fmt.Sprintf("unknown speed tier: %s", req.Speed))
	}
	total := req.Amount.Add(fee)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetOrCreateForUpdate(ctx, dbTx, req.UserID, req.Currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}

	// Reserve the full amount up front so the owner cannot double-spend
	// while the transfer awaits proof.
	if err := wallet.Debit(total); err != nil {
		return nil, mapWalletErr(err)
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:           uuid.New(),
		UserID:       req.UserID,
		Kind:         domain.TransactionKindTransfer,
		FromCurrency: req.Currency,
		FromAmount:   total,
		Fee:          fee,
		Counterparty: &req.Recipient,
		Status:       domain.TransactionStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.createWithFreshReference(ctx, dbTx, txn); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("reference", txn.ReferenceID).
		Str("user_id", req.UserID.String()).
		Str("currency", req.Currency).
		Str("reserved", total.String()).
		Str("speed", string(req.Speed)).
		Msg("transfer created, awaiting settlement proof")

	return txn, nil
}

// createWithFreshReference inserts the transaction, regenerating the
// reference id on the astronomically unlikely collision.
func (s *LedgerServiceImpl) createWithFreshReference(ctx context.Context, dbTx pgx.Tx, txn *domain.Transaction) error {
	for attempt := 0; attempt < referenceRetries; attempt++ {
		txn.ReferenceID = domain.NewReferenceID()
		err := s.txRepo.Create(ctx, dbTx, txn)
		if err == nil {
			return nil
		}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == "LED_004" {
			s.log.Warn().Str("reference", txn.ReferenceID).Msg("reference id collision, regenerating")
			continue
		}
		return apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}
	return apperror.ErrDuplicateReference()
}

// mapWalletErr translates domain wallet errors to the client taxonomy.
func mapWalletErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return apperror.ErrInsufficientFunds()
	case errors.Is(err, domain.ErrInvalidAmount):
		return apperror.ErrInvalidAmount()
	default:
		return apperror.InternalError(err)
	}
}
