package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind represents the kind of money movement.
type TransactionKind string

const (
	TransactionKindExchange TransactionKind = "exchange"
	TransactionKindTransfer TransactionKind = "transfer"
)

// TransactionStatus represents the lifecycle state of a transaction.
//
// Exchanges settle synchronously and are created completed. Transfers are
// created pending and walk the settlement state machine:
// pending -> processing -> completed, with processing -> pending on a
// rejected proof and any non-terminal state -> failed on expiry.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
)

// SpeedTier is a named fee/priority class for transfers.
type SpeedTier string

const (
	SpeedTierInstant  SpeedTier = "instant"
	SpeedTierFast     SpeedTier = "fast"
	SpeedTierStandard SpeedTier = "standard"
)

// TransferFee returns the flat fee for a speed tier, or false for an
// unknown tier. Unknown tiers are rejected, never defaulted to zero.
func TransferFee(tier SpeedTier) (decimal.Decimal, bool) {
	switch tier {
	case SpeedTierInstant:
		return decimal.RequireFromString("2.99"), true
	case SpeedTierFast:
		return decimal.RequireFromString("0.99"), true
	case SpeedTierStandard:
		return decimal.Zero, true
	default:
		return decimal.Zero, false
	}
}

// Transaction is the ledger record of one exchange or transfer attempt.
// Monetary fields are immutable once set; only status may progress.
type Transaction struct {
	ID           uuid.UUID           `json:"id"`
	ReferenceID  string              `json:"reference_id"`
	UserID       uuid.UUID           `json:"user_id"`
	Kind         TransactionKind     `json:"kind"`
	FromCurrency string              `json:"from_currency"`
	ToCurrency   *string             `json:"to_currency,omitempty"`
	FromAmount   decimal.Decimal     `json:"from_amount"`
	ToAmount     decimal.NullDecimal `json:"to_amount,omitempty"`
	Fee          decimal.Decimal     `json:"fee"`
	ExchangeRate decimal.NullDecimal `json:"exchange_rate,omitempty"`
	Counterparty *string             `json:"counterparty,omitempty"`
	Status       TransactionStatus   `json:"status"`

	// Settlement proof slot. At most one active proof at a time; a
	// rejected proof clears the slot and bumps ProofRejects.
	ProofURL         *string    `json:"proof_url,omitempty"`
	ProofSubmittedAt *time.Time `json:"proof_submitted_at,omitempty"`
	ProofRejects     int        `json:"proof_rejects"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted || t.Status == TransactionStatusFailed
}

// AwaitsProof returns true if a settlement proof may be submitted.
func (t *Transaction) AwaitsProof() bool {
	return t.Kind == TransactionKindTransfer && t.Status == TransactionStatusPending
}

// ReservedAmount is the wallet debit taken when the transfer was created
// (amount + fee). This exact amount is released on expiry or final reject.
func (t *Transaction) ReservedAmount() decimal.Decimal {
	return t.FromAmount
}

// NewReferenceID generates a short, human-presentable reference id,
// e.g. "PN-1B4E28BA9". Collisions are astronomically unlikely but the
// ledger's unique constraint backstops them.
func NewReferenceID() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "PN-" + strings.ToUpper(raw[:9])
}
