package handlers

import (
	"net/http"

	"github.com/epeers/bankruptcy/internal/models"
	"github.com/epeers/bankruptcy/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// AnalysisHandler handles the bankrupt vs. solvent comparison
type AnalysisHandler struct {
	analysisSvc *services.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler
func NewAnalysisHandler(analysisSvc *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisSvc: analysisSvc}
}

// Compare handles GET /analysis
// @Summary Compare ROA ratios of bankrupt and solvent companies
// @Description Mean, sample standard deviation, min and max of the three ROA ratios per group. Groups without data report 0.
// @Tags analysis
// @Produce json
// @Success 200 {object} models.AnalysisResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /analysis [get]
func (h *AnalysisHandler) Compare(c *gin.Context) {
	ratios, err := h.analysisSvc.CompareRatios(c.Request.Context(), services.AnalysisRatios)
	if err != nil {
		respondError(c, "CompareRatios", log.Fields{"ratios": services.AnalysisRatios}, err)
		return
	}

	c.JSON(http.StatusOK, models.AnalysisResponse{Ratios: ratios})
}
