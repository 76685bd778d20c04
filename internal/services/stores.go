package services

import (
	"context"

	"github.com/epeers/bankruptcy/internal/models"
	"github.com/epeers/bankruptcy/internal/repository"
	"github.com/jackc/pgx/v5"
)

// The services depend on these narrow views of the record store.
// *repository.CompanyRepository implements all of them.

// CompanyReader is the read path used by the listing and detail views
type CompanyReader interface {
	Count(ctx context.Context, status *models.BankruptcyStatus) (int64, error)
	List(ctx context.Context, opts repository.ListOptions) ([]models.Company, error)
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	GetRatios(ctx context.Context, companyID int64) ([]models.FinancialRatio, error)
}

// RatioAggregator computes per-group aggregates of one ratio
type RatioAggregator interface {
	RatioGroupStats(ctx context.Context, ratioName string) (map[models.BankruptcyStatus]repository.RatioAggregate, error)
}

// ReloadStore is the write path used by the loader
type ReloadStore interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	LockReload(ctx context.Context, tx pgx.Tx) error
	ResetSchema(ctx context.Context, tx pgx.Tx) error
	InsertCompanies(ctx context.Context, tx pgx.Tx, companies []models.Company) (int64, error)
	InsertRatios(ctx context.Context, tx pgx.Tx, ratios []models.FinancialRatio) (int64, error)
}

var (
	_ CompanyReader   = (*repository.CompanyRepository)(nil)
	_ RatioAggregator = (*repository.CompanyRepository)(nil)
	_ ReloadStore     = (*repository.CompanyRepository)(nil)
)
