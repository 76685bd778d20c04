package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/epeers/bankruptcy/internal/models"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// reloadLockKey identifies the advisory lock held for the duration of a reload
const reloadLockKey int64 = 0x62616e6b // "bank"

var ErrCompanyNotFound = errors.New("company not found")

// Columns a listing may be ordered by, mapped to their SQL expression
var sortColumns = map[string]string{
	"company_id": "company_id",
	"year":       "year",
}

// ListOptions selects one page of companies
type ListOptions struct {
	Status     *models.BankruptcyStatus
	SortColumn string
	Descending bool
	Limit      int
	Offset     int
}

// RatioAggregate holds the raw SQL aggregates of one ratio within one
// bankruptcy group. A nil field means SQL returned NULL.
type RatioAggregate struct {
	Mean *float64
	Std  *float64
	Min  *float64
	Max  *float64
}

// CompanyRepository handles database operations for companies and their ratios
type CompanyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// BeginTx starts a new transaction
func (r *CompanyRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// LockReload blocks until no other reload holds the reload lock.
// The lock is released when tx ends.
func (r *CompanyRepository) LockReload(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, reloadLockKey); err != nil {
		return fmt.Errorf("failed to acquire reload lock: %w", err)
	}
	return nil
}

// ResetSchema drops and recreates the companies and financial_ratios tables
func (r *CompanyRepository) ResetSchema(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to reset schema: %w", err)
	}
	return nil
}

// InsertCompanies bulk-copies companies into the companies table
func (r *CompanyRepository) InsertCompanies(ctx context.Context, tx pgx.Tx, companies []models.Company) (int64, error) {
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"companies"},
		[]string{"company_id", "bankruptcy_status", "year", "industry"},
		pgx.CopyFromSlice(len(companies), func(i int) ([]any, error) {
			c := companies[i]
			return []any{c.CompanyID, int16(c.BankruptcyStatus), int32(c.Year), c.Industry}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert companies: %w", err)
	}
	return n, nil
}

// InsertRatios bulk-copies ratios into the financial_ratios table.
// ratio_id is assigned by the database.
func (r *CompanyRepository) InsertRatios(ctx context.Context, tx pgx.Tx, ratios []models.FinancialRatio) (int64, error) {
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"financial_ratios"},
		[]string{"company_id", "ratio_name", "ratio_value"},
		pgx.CopyFromSlice(len(ratios), func(i int) ([]any, error) {
			fr := ratios[i]
			return []any{fr.CompanyID, fr.RatioName, fr.RatioValue}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert ratios: %w", err)
	}
	return n, nil
}

// Count returns the number of companies, optionally restricted to one status
func (r *CompanyRepository) Count(ctx context.Context, status *models.BankruptcyStatus) (int64, error) {
	query := `SELECT count(*) FROM companies WHERE ($1::smallint IS NULL OR bankruptcy_status = $1)`

	var n int64
	if err := r.pool.QueryRow(ctx, query, statusArg(status)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count companies: %w", err)
	}
	return n, nil
}

// List returns one page of companies. Rows with equal sort keys are ordered
// by company_id so repeated calls return the same sequence.
func (r *CompanyRepository) List(ctx context.Context, opts ListOptions) ([]models.Company, error) {
	col, ok := sortColumns[opts.SortColumn]
	if !ok {
		return nil, fmt.Errorf("unsupported sort column %q", opts.SortColumn)
	}
	dir := "ASC"
	if opts.Descending {
		dir = "DESC"
	}

	orderBy := fmt.Sprintf("%s %s", col, dir)
	if col != "company_id" {
		orderBy += ", company_id ASC"
	}

	query := `
		SELECT company_id, bankruptcy_status, year, industry
		FROM companies
		WHERE ($1::smallint IS NULL OR bankruptcy_status = $1)
		ORDER BY ` + orderBy + `
		LIMIT $2 OFFSET $3
	`
	companies := []models.Company{}
	if err := pgxscan.Select(ctx, r.pool, &companies, query, statusArg(opts.Status), opts.Limit, opts.Offset); err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// GetByID retrieves a company by ID
func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	query := `
		SELECT company_id, bankruptcy_status, year, industry
		FROM companies
		WHERE company_id = $1
	`
	c := &models.Company{}
	err := pgxscan.Get(ctx, r.pool, c, query, id)
	if pgxscan.NotFound(err) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return c, nil
}

// GetRatios retrieves all ratios of a company in insertion order
func (r *CompanyRepository) GetRatios(ctx context.Context, companyID int64) ([]models.FinancialRatio, error) {
	query := `
		SELECT ratio_id, company_id, ratio_name, ratio_value
		FROM financial_ratios
		WHERE company_id = $1
		ORDER BY ratio_id
	`
	var ratios []models.FinancialRatio
	if err := pgxscan.Select(ctx, r.pool, &ratios, query, companyID); err != nil {
		return nil, fmt.Errorf("failed to query ratios: %w", err)
	}
	return ratios, nil
}

// RatioGroupStats aggregates one ratio per bankruptcy group. Groups without
// any row for the ratio are absent from the result.
func (r *CompanyRepository) RatioGroupStats(ctx context.Context, ratioName string) (map[models.BankruptcyStatus]RatioAggregate, error) {
	query := `
		SELECT c.bankruptcy_status,
		       AVG(fr.ratio_value),
		       STDDEV_SAMP(fr.ratio_value),
		       MIN(fr.ratio_value),
		       MAX(fr.ratio_value)
		FROM financial_ratios fr
		JOIN companies c ON c.company_id = fr.company_id
		WHERE fr.ratio_name = $1
		GROUP BY c.bankruptcy_status
	`
	rows, err := r.pool.Query(ctx, query, ratioName)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratio %q: %w", ratioName, err)
	}
	defer rows.Close()

	result := make(map[models.BankruptcyStatus]RatioAggregate, 2)
	for rows.Next() {
		var status int16
		var agg RatioAggregate
		if err := rows.Scan(&status, &agg.Mean, &agg.Std, &agg.Min, &agg.Max); err != nil {
			return nil, fmt.Errorf("failed to scan ratio aggregate: %w", err)
		}
		result[models.BankruptcyStatus(status)] = agg
	}
	return result, rows.Err()
}

func statusArg(status *models.BankruptcyStatus) *int16 {
	if status == nil {
		return nil
	}
	v := int16(*status)
	return &v
}
