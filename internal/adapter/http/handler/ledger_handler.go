package handler

import (
	"strings"

	"paynest/internal/adapter/http/dto"
	"paynest/internal/adapter/http/middleware"
	"paynest/internal/core/domain"
	"paynest/internal/core/ports"
	"paynest/pkg/apperror"
	"paynest/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerHandler handles money-movement endpoints.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
	log       zerolog.Logger
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(ledgerSvc ports.LedgerService, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledgerSvc: ledgerSvc,
		log:       log.With().Str("handler", "ledger").Logger(),
	}
}

// Exchange handles POST /api/v1/exchange.
func (h *LedgerHandler) Exchange(c *gin.Context) {
	var req dto.ExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	// Validators already guaranteed these parse.
	fromAmount, _ := decimal.NewFromString(req.FromAmount)
	rate, _ := decimal.NewFromString(req.Rate)

	result, err := h.ledgerSvc.Exchange(c.Request.Context(), ports.ExchangeRequest{
		UserID:       callerID(c),
		FromCurrency: strings.ToUpper(strings.TrimSpace(req.FromCurrency)),
		ToCurrency:   strings.ToUpper(strings.TrimSpace(req.ToCurrency)),
		FromAmount:   fromAmount,
		Rate:         rate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ExchangeResponse{
		Transaction: toTransactionResponse(result.Transaction),
		FromBalance: result.FromBalance.String(),
		ToBalance:   result.ToBalance.String(),
	})
}

// Transfer handles POST /api/v1/transfers.
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, _ := decimal.NewFromString(req.Amount)

	txn, err := h.ledgerSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		UserID:    callerID(c),
		Recipient: req.Recipient,
		Amount:    amount,
		Currency:  strings.ToUpper(strings.TrimSpace(req.Currency)),
		Speed:     domain.SpeedTier(req.Speed),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(txn))
}

// callerID pulls the authenticated user identity set by the auth middleware.
func callerID(c *gin.Context) uuid.UUID {
	return c.MustGet(middleware.CtxUserID).(uuid.UUID)
}
