package handler

import (
	"strconv"

	"paynest/internal/adapter/http/dto"
	"paynest/internal/core/ports"
	"paynest/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// TransactionHandler handles owner-scoped read endpoints.
type TransactionHandler struct {
	reportingSvc ports.ReportingService
	log          zerolog.Logger
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(reportingSvc ports.ReportingService, log zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{
		reportingSvc: reportingSvc,
		log:          log.With().Str("handler", "transaction").Logger(),
	}
}

// List handles GET /api/v1/transactions. Paging is clamped here so the
// response echoes the limit and offset actually applied, not the raw
// query values.
func (h *TransactionHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 {
		limit = ports.DefaultPageSize
	}
	if limit > ports.MaxPageSize {
		limit = ports.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	txns, total, err := h.reportingSvc.ListTransactions(c.Request.Context(), callerID(c), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(&txns[i]))
	}

	response.OK(c, dto.TransactionListResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /api/v1/transactions/:reference.
func (h *TransactionHandler) Get(c *gin.Context) {
	txn, err := h.reportingSvc.GetTransaction(c.Request.Context(), callerID(c), c.Param("reference"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toTransactionResponse(txn))
}

// Stats handles GET /api/v1/dashboard/stats.
func (h *TransactionHandler) Stats(c *gin.Context) {
	stats, err := h.reportingSvc.GetStats(c.Request.Context(), callerID(c), c.Query("period"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StatsResponse{
		TotalTransactions: stats.TotalTransactions,
		Completed:         stats.Completed,
		Pending:           stats.Pending,
		Failed:            stats.Failed,
		TotalExchanged:    stats.TotalExchanged.String(),
		TotalTransferred:  stats.TotalTransferred.String(),
		TotalFees:         stats.TotalFees.String(),
	})
}
