package handler

import (
	"ngo-donation-ledger/internal/adapter/http/dto"
	"ngo-donation-ledger/internal/core/domain"
	"ngo-donation-ledger/internal/core/ports"
	"ngo-donation-ledger/pkg/apperror"
	"ngo-donation-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// VerifierHandler handles verifier set endpoints.
type VerifierHandler struct {
	verifierSvc ports.VerifierService
}

// NewVerifierHandler creates a new VerifierHandler.
func NewVerifierHandler(verifierSvc ports.VerifierService) *VerifierHandler {
	return &VerifierHandler{verifierSvc: verifierSvc}
}

// Add handles POST /api/v1/verifiers.
func (h *VerifierHandler) Add(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.VerifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	target := domain.Identity(req.Identity)
	if err := h.verifierSvc.AddVerifier(c.Request.Context(), caller, target); err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.VerifierStatusResponse{Identity: target.String(), Verifier: true})
}

// Remove handles DELETE /api/v1/verifiers/:identity.
func (h *VerifierHandler) Remove(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	target := domain.Identity(c.Param("identity"))
	if err := h.verifierSvc.RemoveVerifier(c.Request.Context(), caller, target); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.VerifierStatusResponse{Identity: target.String(), Verifier: false})
}

// Get handles GET /api/v1/verifiers/:identity.
func (h *VerifierHandler) Get(c *gin.Context) {
	target := domain.Identity(c.Param("identity"))
	isVerifier, err := h.verifierSvc.IsVerifier(c.Request.Context(), target)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.VerifierStatusResponse{Identity: target.String(), Verifier: isVerifier})
}
