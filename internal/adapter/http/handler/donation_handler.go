package handler

import (
	"strconv"

	"ngo-donation-ledger/internal/adapter/http/dto"
	"ngo-donation-ledger/internal/core/domain"
	"ngo-donation-ledger/internal/core/ports"
	"ngo-donation-ledger/pkg/apperror"
	"ngo-donation-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// DonationHandler handles ledger endpoints.
type DonationHandler struct {
	donationSvc ports.DonationService
}

// NewDonationHandler creates a new DonationHandler.
func NewDonationHandler(donationSvc ports.DonationService) *DonationHandler {
	return &DonationHandler{donationSvc: donationSvc}
}

// Donate handles POST /api/v1/donations. The authenticated caller is the
// donor.
func (h *DonationHandler) Donate(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	donation, err := h.donationSvc.Donate(c.Request.Context(), ports.DonateRequest{
		Donor:     caller,
		NGO:       domain.Identity(req.NGO),
		Amount:    req.Amount,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toDonationResponse(donation))
}

// Get handles GET /api/v1/donations/:id.
func (h *DonationHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.ErrOutOfRange())
		return
	}

	donation, err := h.donationSvc.GetDonation(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toDonationResponse(donation))
}

// toDonationResponse converts domain.Donation to DTO.
func toDonationResponse(d *domain.Donation) dto.DonationResponse {
	return dto.DonationResponse{
		ID:        d.ID,
		Donor:     d.Donor.String(),
		NGO:       d.NGO.String(),
		Amount:    d.Amount,
		ProjectID: d.ProjectID,
		CreatedAt: d.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
