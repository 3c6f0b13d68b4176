package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MoneyPrecision is the ledger's fixed fractional precision.
const MoneyPrecision = 8

// ErrInvalidExchangeInput is returned for non-positive amounts or rates.
// The engine never clamps or silently corrects invalid input.
var ErrInvalidExchangeInput = errors.New("exchange amount and rate must be positive")

// ExchangeQuote is the result of the pure exchange computation.
type ExchangeQuote struct {
	ToAmount decimal.Decimal
	Fee      decimal.Decimal
}

// ComputeExchange converts fromAmount at rate, deducting feeRatio of the
// converted amount. Both outputs are rounded to MoneyPrecision using
// round-half-even, so repeated fee math carries no systematic bias.
// Deterministic: same inputs always produce the same outputs.
func ComputeExchange(fromAmount, rate, feeRatio decimal.Decimal) (ExchangeQuote, error) {
	if fromAmount.Sign() <= 0 || rate.Sign() <= 0 {
		return ExchangeQuote{}, ErrInvalidExchangeInput
	}

	converted := fromAmount.Mul(rate)
	fee := converted.Mul(feeRatio).RoundBank(MoneyPrecision)
	toAmount := converted.Sub(fee).RoundBank(MoneyPrecision)

	return ExchangeQuote{ToAmount: toAmount, Fee: fee}, nil
}
