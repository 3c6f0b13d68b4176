package handler

import (
	"time"

	"paynest/internal/adapter/http/dto"
	"paynest/internal/core/domain"
)

// toTransactionResponse maps a ledger transaction to its wire shape.
// All money fields serialize as decimal strings.
func toTransactionResponse(t *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ReferenceID:  t.ReferenceID,
		Kind:         string(t.Kind),
		FromCurrency: t.FromCurrency,
		ToCurrency:   t.ToCurrency,
		FromAmount:   t.FromAmount.String(),
		Fee:          t.Fee.String(),
		Counterparty: t.Counterparty,
		Status:       string(t.Status),
		ProofURL:     t.ProofURL,
		CreatedAt:    t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if t.ToAmount.Valid {
		s := t.ToAmount.Decimal.String()
		resp.ToAmount = &s
	}
	if t.ExchangeRate.Valid {
		s := t.ExchangeRate.Decimal.String()
		resp.ExchangeRate = &s
	}
	if t.ProofSubmittedAt != nil {
		s := t.ProofSubmittedAt.UTC().Format(time.RFC3339)
		resp.ProofSubmittedAt = &s
	}
	return resp
}

func toWalletResponse(w *domain.Wallet) dto.WalletResponse {
	return dto.WalletResponse{
		Currency:  w.Currency,
		Balance:   w.Balance.String(),
		IsCrypto:  w.IsCrypto,
		CreatedAt: w.CreatedAt.UTC().Format(time.RFC3339),
	}
}
