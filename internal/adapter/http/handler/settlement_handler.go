package handler

import (
	"paynest/internal/adapter/http/dto"
	"paynest/internal/core/ports"
	"paynest/pkg/apperror"
	"paynest/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SettlementHandler handles proof submission and verification endpoints.
type SettlementHandler struct {
	settlementSvc ports.SettlementService
	log           zerolog.Logger
}

// NewSettlementHandler creates a new settlement handler.
func NewSettlementHandler(settlementSvc ports.SettlementService, log zerolog.Logger) *SettlementHandler {
	return &SettlementHandler{
		settlementSvc: settlementSvc,
		log:           log.With().Str("handler", "settlement").Logger(),
	}
}

// SubmitProof handles POST /api/v1/transfers/:reference/proof.
func (h *SettlementHandler) SubmitProof(c *gin.Context) {
	var req dto.SubmitProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, err := h.settlementSvc.SubmitProof(c.Request.Context(), callerID(c), c.Param("reference"), req.ProofURL)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(txn))
}

// Verify handles POST /internal/settlements/:reference/verify.
// Reachable only behind verifier-key auth.
func (h *SettlementHandler) Verify(c *gin.Context) {
	var req dto.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, err := h.settlementSvc.Verify(c.Request.Context(), c.Param("reference"), ports.VerifyOutcome(req.Outcome))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.log.Info().
		Str("reference_id", txn.ReferenceID).
		Str("outcome", req.Outcome).
		Str("status", string(txn.Status)).
		Msg("settlement verified")

	response.OK(c, toTransactionResponse(txn))
}
