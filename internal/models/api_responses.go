package models

// ListCompaniesParams are the user-facing parameters of the company listing
type ListCompaniesParams struct {
	Bankruptcy string `form:"bankruptcy"`
	SortBy     string `form:"sort_by,default=company_id"`
	SortOrder  string `form:"sort_order,default=asc"`
	Page       int    `form:"page,default=1"`
}

// CompanyPage is one page of the company listing plus what a caller needs to render navigation
type CompanyPage struct {
	Items      []Company `json:"items"`
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page"`
	TotalPages int       `json:"total_pages"`
	TotalItems int64     `json:"total_items"`
	HasPrev    bool      `json:"has_prev"`
	HasNext    bool      `json:"has_next"`
}

// AnalysisResponse represents the response of the bankrupt vs. solvent comparison
type AnalysisResponse struct {
	Ratios map[string]RatioComparison `json:"ratios"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
