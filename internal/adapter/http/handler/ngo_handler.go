package handler

import (
	"ngo-donation-ledger/internal/adapter/http/dto"
	"ngo-donation-ledger/internal/core/domain"
	"ngo-donation-ledger/internal/core/ports"
	"ngo-donation-ledger/pkg/apperror"
	"ngo-donation-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// NGOHandler handles organization registry endpoints.
type NGOHandler struct {
	registrySvc ports.RegistryService
}

// NewNGOHandler creates a new NGOHandler.
func NewNGOHandler(registrySvc ports.RegistryService) *NGOHandler {
	return &NGOHandler{registrySvc: registrySvc}
}

// Register handles POST /api/v1/ngos. The authenticated caller becomes the
// organization's identity.
func (h *NGOHandler) Register(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.RegisterNGORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	ngo, err := h.registrySvc.Register(c.Request.Context(), caller, ports.RegisterNGORequest{
		Name:        req.Name,
		Description: req.Description,
		Email:       req.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toNGOResponse(ngo))
}

// Verify handles POST /api/v1/ngos/:identity/verify.
func (h *NGOHandler) Verify(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	target := domain.Identity(c.Param("identity"))
	if err := h.registrySvc.Verify(c.Request.Context(), caller, target); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"identity": target.String(), "status": string(domain.NGOStatusVerified)})
}

// Suspend handles POST /api/v1/ngos/:identity/suspend.
func (h *NGOHandler) Suspend(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	target := domain.Identity(c.Param("identity"))
	if err := h.registrySvc.Suspend(c.Request.Context(), caller, target); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"identity": target.String(), "status": string(domain.NGOStatusSuspended)})
}

// Get handles GET /api/v1/ngos/:identity.
func (h *NGOHandler) Get(c *gin.Context) {
	ngo, err := h.registrySvc.GetNGO(c.Request.Context(), domain.Identity(c.Param("identity")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toNGOResponse(ngo))
}

// GetByEmail handles GET /api/v1/ngos/by-email?email=.
func (h *NGOHandler) GetByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.Error(c, apperror.Validation("email query parameter is required"))
		return
	}

	ngo, err := h.registrySvc.GetNGOByEmail(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toNGOResponse(ngo))
}

// toNGOResponse converts domain.NGO to DTO.
func toNGOResponse(ngo *domain.NGO) dto.NGOResponse {
	return dto.NGOResponse{
		Identity:       ngo.Identity.String(),
		Name:           ngo.Name,
		Description:    ngo.Description,
		Email:          ngo.Email,
		Status:         string(ngo.Status),
		TotalDonations: ngo.TotalDonations,
		RegisteredAt:   ngo.RegisteredAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
