package domain

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet mutation failures. The service layer maps these onto the
// client-facing error taxonomy.
var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Wallet represents a per-user, per-currency balance.
// The (UserID, Currency) pair is unique; the balance never goes negative.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	IsCrypto  bool            `json:"is_crypto"` // display precision hint only
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Debit decreases the balance. The balance never goes negative: a debit
// exceeding the balance fails with ErrInsufficientFunds and leaves the
// wallet untouched.
func (w *Wallet) Debit(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if w.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}

// Credit increases the balance.
func (w *Wallet) Credit(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	w.Balance = w.Balance.Add(amount)
	return nil
}

var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3,10}$`)

// IsCurrencyCode reports whether s looks like an uppercase ISO-style
// currency code ("USD", "EUR", "USDT").
func IsCurrencyCode(s string) bool {
	return currencyCodeRe.MatchString(s)
}

var cryptoCurrencies = map[string]bool{
	"BTC":  true,
	"ETH":  true,
	"SOL":  true,
	"USDT": true,
	"USDC": true,
}

// IsCryptoCurrency classifies a currency code for display precision.
// The classification never affects ledger arithmetic.
func IsCryptoCurrency(code string) bool {
	return cryptoCurrencies[code]
}
