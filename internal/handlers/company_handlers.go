package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/epeers/bankruptcy/internal/models"
	"github.com/epeers/bankruptcy/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// CompanyHandler handles the company listing and detail endpoints
type CompanyHandler struct {
	companySvc *services.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companySvc *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{
		companySvc: companySvc,
	}
}

// List handles GET /
// @Summary List companies
// @Description One page of companies, optionally filtered by bankruptcy status and sorted by id or year. Pages hold 20 companies.
// @Tags companies
// @Produce json
// @Param bankruptcy query string false "Filter: yes (bankrupt) or no (solvent); anything else lists all"
// @Param sort_by query string false "Sort column" Enums(company_id, year) default(company_id)
// @Param sort_order query string false "Sort direction" Enums(asc, desc) default(asc)
// @Param page query int false "Page number, starting at 1" default(1)
// @Success 200 {object} models.CompanyPage
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router / [get]
func (h *CompanyHandler) List(c *gin.Context) {
	var params models.ListCompaniesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, "ListCompanies", log.Fields{"query": c.Request.URL.RawQuery},
			fmt.Errorf("%w: %v", models.ErrDataValidation, err))
		return
	}

	page, err := h.companySvc.ListCompanies(c.Request.Context(), params)
	if err != nil {
		respondError(c, "ListCompanies", log.Fields{
			"bankruptcy": params.Bankruptcy,
			"sort_by":    params.SortBy,
			"sort_order": params.SortOrder,
			"page":       params.Page,
		}, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Get handles GET /company/:id
// @Summary Get a company with its ratios
// @Tags companies
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} models.CompanyDetail
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /company/{id} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		respondError(c, "GetCompanyDetail", log.Fields{"company_id": idStr},
			fmt.Errorf("%w: invalid company ID %q", models.ErrDataValidation, idStr))
		return
	}

	detail, err := h.companySvc.GetCompanyDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, "GetCompanyDetail", log.Fields{"company_id": id}, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
