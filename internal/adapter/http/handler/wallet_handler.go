package handler

import (
	"strings"

	"paynest/internal/adapter/http/dto"
	"paynest/internal/core/ports"
	"paynest/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WalletHandler handles wallet read endpoints.
type WalletHandler struct {
	reportingSvc ports.ReportingService
	log          zerolog.Logger
}

// NewWalletHandler creates a new wallet handler.
func NewWalletHandler(reportingSvc ports.ReportingService, log zerolog.Logger) *WalletHandler {
	return &WalletHandler{
		reportingSvc: reportingSvc,
		log:          log.With().Str("handler", "wallet").Logger(),
	}
}

// List handles GET /api/v1/wallets.
func (h *WalletHandler) List(c *gin.Context) {
	wallets, err := h.reportingSvc.GetWallets(c.Request.Context(), callerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.WalletResponse, 0, len(wallets))
	for i := range wallets {
		items = append(items, toWalletResponse(&wallets[i]))
	}
	response.OK(c, items)
}

// Get handles GET /api/v1/wallets/:currency.
func (h *WalletHandler) Get(c *gin.Context) {
	currency := strings.ToUpper(strings.TrimSpace(c.Param("currency")))

	wallet, err := h.reportingSvc.GetWallet(c.Request.Context(), callerID(c), currency)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toWalletResponse(wallet))
}
