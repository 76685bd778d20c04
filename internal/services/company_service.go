package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/epeers/bankruptcy/internal/models"
	"github.com/epeers/bankruptcy/internal/repository"
	"github.com/go-playground/validator/v10"
)

// PageSize is the fixed number of companies per listing page
const PageSize = 20

// listQuery is the validated form of models.ListCompaniesParams
type listQuery struct {
	SortBy    string `param:"sort_by" validate:"oneof=company_id year"`
	SortOrder string `param:"sort_order" validate:"oneof=asc desc"`
	Page      int    `param:"page" validate:"gte=1"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("param")
	})
	return v
}

// CompanyService handles the company listing and detail views
type CompanyService struct {
	store CompanyReader
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(store CompanyReader) *CompanyService {
	return &CompanyService{store: store}
}

// ListCompanies returns one page of companies, filtered by bankruptcy status and sorted.
// Parameters are validated before the store is touched.
func (s *CompanyService) ListCompanies(ctx context.Context, params models.ListCompaniesParams) (*models.CompanyPage, error) {
	defer TrackTime("ListCompanies", time.Now())

	q := listQuery{SortBy: params.SortBy, SortOrder: params.SortOrder, Page: params.Page}
	if err := validate.Struct(q); err != nil {
		return nil, validationError(err)
	}

	status := ParseBankruptcyFilter(params.Bankruptcy)

	total, err := s.store.Count(ctx, status)
	if err != nil {
		return nil, err
	}
	totalPages := int((total + PageSize - 1) / PageSize)

	if q.Page > 1 && q.Page > totalPages {
		return nil, fmt.Errorf("%w: no companies found for page %d", models.ErrQuery, q.Page)
	}

	items, err := s.store.List(ctx, repository.ListOptions{
		Status:     status,
		SortColumn: q.SortBy,
		Descending: q.SortOrder == "desc",
		Limit:      PageSize,
		Offset:     (q.Page - 1) * PageSize,
	})
	if err != nil {
		return nil, err
	}

	return &models.CompanyPage{
		Items:      items,
		Page:       q.Page,
		PerPage:    PageSize,
		TotalPages: totalPages,
		TotalItems: total,
		HasPrev:    q.Page > 1,
		HasNext:    q.Page < totalPages,
	}, nil
}

// GetCompanyDetail returns a company with all of its ratios
func (s *CompanyService) GetCompanyDetail(ctx context.Context, id int64) (*models.CompanyDetail, error) {
	defer TrackTime("GetCompanyDetail", time.Now())

	c, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrCompanyNotFound) {
		return nil, fmt.Errorf("%w: company %d", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	ratios, err := s.store.GetRatios(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(ratios) == 0 {
		return nil, fmt.Errorf("%w: no financial ratios found for company %d", models.ErrQuery, id)
	}

	return &models.CompanyDetail{Company: *c, Ratios: ratios}, nil
}

// ParseBankruptcyFilter maps the user-facing filter value to a status.
// "yes" selects bankrupt companies, "no" solvent ones; anything else means no filter.
func ParseBankruptcyFilter(v string) *models.BankruptcyStatus {
	var s models.BankruptcyStatus
	switch v {
	case "yes":
		s = models.StatusBankrupt
	case "no":
		s = models.StatusSolvent
	default:
		return nil
	}
	return &s
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", models.ErrDataValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("invalid %s %q: must be one of [%s]", fe.Field(), fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be a positive integer", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("invalid %s", fe.Field()))
		}
	}
	return fmt.Errorf("%w: %s", models.ErrDataValidation, strings.Join(msgs, "; "))
}
