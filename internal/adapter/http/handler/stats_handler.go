package handler

import (
	"ngo-donation-ledger/internal/adapter/http/dto"
	"ngo-donation-ledger/internal/core/ports"
	"ngo-donation-ledger/pkg/apperror"
	"ngo-donation-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// StatsHandler reports registry and ledger cardinalities.
type StatsHandler struct {
	ngoRepo      ports.NGORepository
	donationRepo ports.DonationRepository
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(ngoRepo ports.NGORepository, donationRepo ports.DonationRepository) *StatsHandler {
	return &StatsHandler{ngoRepo: ngoRepo, donationRepo: donationRepo}
}

// Get handles GET /api/v1/stats.
func (h *StatsHandler) Get(c *gin.Context) {
	totalNGOs, err := h.ngoRepo.Count(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}
	totalDonations, err := h.donationRepo.Count(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	response.OK(c, dto.StatsResponse{
		TotalNGOs:      totalNGOs,
		TotalDonations: totalDonations,
	})
}
