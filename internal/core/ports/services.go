package ports

import (
	"context"
	"time"

	"paynest/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService sequences validated caller intent into atomic wallet and
// ledger mutations.
type LedgerService interface {
	Exchange(ctx context.Context, req ExchangeRequest) (*ExchangeResult, error)
	Transfer(ctx context.Context, req TransferRequest) (*domain.Transaction, error)
}

// ExchangeRequest holds validated input for a currency exchange.
type ExchangeRequest struct {
	UserID       uuid.UUID
	FromCurrency string
	ToCurrency   string
	FromAmount   decimal.Decimal
	Rate         decimal.Decimal
}

// ExchangeResult is the exchange outcome: the completed transaction and
// both post-commit balances.
type ExchangeResult struct {
	Transaction *domain.Transaction
	FromBalance decimal.Decimal
	ToBalance   decimal.Decimal
}

// TransferRequest holds validated input for a peer transfer.
type TransferRequest struct {
	UserID    uuid.UUID
	Recipient string
	Amount    decimal.Decimal
	Currency  string
	Speed     domain.SpeedTier
}

// VerifyOutcome is the external verifier's ruling on a settlement proof.
type VerifyOutcome string

const (
	VerifyAccept VerifyOutcome = "accept"
	VerifyReject VerifyOutcome = "reject"
)

// SettlementService drives transfers from reserved-but-unconfirmed to a
// terminal state based on externally supplied proof.
type SettlementService interface {
	// SubmitProof attaches a proof artifact reference to the caller's
	// pending transfer and advances it to processing.
	SubmitProof(ctx context.Context, userID uuid.UUID, referenceID, proofURL string) (*domain.Transaction, error)
	// Verify finalizes (accept) or bounces (reject) a processing transfer.
	// Privileged: invoked by the verification collaborator only.
	Verify(ctx context.Context, referenceID string, outcome VerifyOutcome) (*domain.Transaction, error)
	// ExpireOverdue fails transfers past the proof timeout and releases
	// their reserved funds. Returns the number of transfers expired.
	ExpireOverdue(ctx context.Context) (int, error)
}

// Paging bounds applied to transaction listings. Out-of-range requests
// are clamped to these, never rejected.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// ReportingService defines owner-scoped read operations.
type ReportingService interface {
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error)
	GetTransaction(ctx context.Context, userID uuid.UUID, referenceID string) (*domain.Transaction, error)
	GetWallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
	GetWallet(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error)
	GetStats(ctx context.Context, userID uuid.UUID, period string) (*TransactionStats, error)
}

// TokenService handles JWT token operations. Identity issuance lives with
// the external identity collaborator; the core only consumes claims.
type TokenService interface {
	Generate(userID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
}
