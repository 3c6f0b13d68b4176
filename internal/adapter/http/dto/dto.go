package dto

// ExchangeRequest is the request body for a currency exchange.
// Amounts travel as decimal strings, never floats.
type ExchangeRequest struct {
	FromCurrency string `json:"from_currency" binding:"required,min=3,max=10"`
	ToCurrency   string `json:"to_currency" binding:"required,min=3,max=10"`
	FromAmount   string `json:"from_amount" binding:"required,decimal_amount"`
	Rate         string `json:"rate" binding:"required,decimal_amount"`
}

// TransferRequest is the request body for a peer transfer.
type TransferRequest struct {
	Recipient string `json:"recipient" binding:"required,max=200"`
	Amount    string `json:"amount" binding:"required,decimal_amount"`
	Currency  string `json:"currency" binding:"required,min=3,max=10"`
	Speed     string `json:"speed" binding:"required,oneof=instant fast standard"`
}

// SubmitProofRequest carries the reference to an externally stored proof
// artifact (image/PDF); the artifact itself never passes through here.
type SubmitProofRequest struct {
	ProofURL string `json:"proof_url" binding:"required,max=500,safe_url"`
}

// VerifyRequest is the verification collaborator's ruling.
type VerifyRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=accept reject"`
}

// TransactionResponse is the response body for transaction results.
type TransactionResponse struct {
	ReferenceID      string  `json:"reference_id"`
	Kind             string  `json:"kind"`
	FromCurrency     string  `json:"from_currency"`
	ToCurrency       *string `json:"to_currency,omitempty"`
	FromAmount       string  `json:"from_amount"`
	ToAmount         *string `json:"to_amount,omitempty"`
	Fee              string  `json:"fee"`
	ExchangeRate     *string `json:"exchange_rate,omitempty"`
	Counterparty     *string `json:"counterparty,omitempty"`
	Status           string  `json:"status"`
	ProofURL         *string `json:"proof_url,omitempty"`
	ProofSubmittedAt *string `json:"proof_submitted_at,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// ExchangeResponse is the exchange result: transaction plus both
// post-commit balances.
type ExchangeResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	FromBalance string              `json:"from_balance"`
	ToBalance   string              `json:"to_balance"`
}

// WalletResponse is one wallet in the owner's wallet set.
type WalletResponse struct {
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
	IsCrypto  bool   `json:"is_crypto"`
	CreatedAt string `json:"created_at"`
}

// TransactionListResponse wraps a paginated transaction list.
type TransactionListResponse struct {
	Items  []TransactionResponse `json:"items"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// StatsResponse is the dashboard statistics payload.
type StatsResponse struct {
	TotalTransactions int64  `json:"total_transactions"`
	Completed         int64  `json:"completed"`
	Pending           int64  `json:"pending"`
	Failed            int64  `json:"failed"`
	TotalExchanged    string `json:"total_exchanged"`
	TotalTransferred  string `json:"total_transferred"`
	TotalFees         string `json:"total_fees"`
}
