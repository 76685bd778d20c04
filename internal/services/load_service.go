package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/epeers/bankruptcy/internal/dataset"
	"github.com/epeers/bankruptcy/internal/metrics"
	"github.com/epeers/bankruptcy/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

const (
	baseYear        = 1999
	yearCycle       = 11
	defaultIndustry = "Finance"
)

// LoadService replaces the stored companies and ratios with a cleaned dataset
type LoadService struct {
	store   ReloadStore
	metrics *metrics.Metrics
	label   string
}

// NewLoadService creates a new LoadService. label names the bankruptcy column of input files.
func NewLoadService(store ReloadStore, m *metrics.Metrics, label string) *LoadService {
	return &LoadService{
		store:   store,
		metrics: m,
		label:   label,
	}
}

// Prepare reads and cleans the file at path without touching the store
func (s *LoadService) Prepare(path string) (*dataset.Table, *dataset.CleanSummary, error) {
	defer TrackTime("Prepare", time.Now())

	raw, err := dataset.ReadFile(path, s.label)
	if err != nil {
		return nil, nil, err
	}
	cleaned, summary, err := dataset.Clean(raw, s.label)
	if err != nil {
		return nil, nil, err
	}

	log.WithFields(log.Fields{
		"file":          path,
		"rows_in":       summary.RowsIn,
		"rows_out":      summary.RowsOut,
		"imputed_cells": summary.ImputedCells,
	}).Info("Dataset cleaned")
	s.metrics.ObserveClean(summary.ImputedCells, summary.Dropped)

	return cleaned, summary, nil
}

// Reload reads, cleans and loads the file at path
func (s *LoadService) Reload(ctx context.Context, path string) (*models.LoadResult, error) {
	cleaned, _, err := s.Prepare(path)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, cleaned, s.label)
}

// Load drops and recreates the store from a cleaned table.
// All writes happen in one transaction: companies are copied in a first
// checkpoint, ratios in a second, and nothing is visible to readers until
// the final commit. Any failure leaves the previous contents in place.
func (s *LoadService) Load(ctx context.Context, cleaned *dataset.Table, label string) (result *models.LoadResult, err error) {
	defer TrackTime("Load", time.Now())
	start := time.Now()

	batchID := uuid.New()
	logger := log.WithField("batch_id", batchID)

	var nCompanies, nRatios int64
	defer func() {
		s.metrics.ObserveReload(err, time.Since(start), int(nCompanies), int(nRatios))
		if err != nil {
			logger.WithError(err).Error("Reload failed, previous data kept")
		}
	}()

	companies, ratios, err := Materialize(cleaned, label)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.store.LockReload(ctx, tx); err != nil {
		return nil, err
	}
	if err := s.store.ResetSchema(ctx, tx); err != nil {
		return nil, err
	}

	err = checkpoint(ctx, tx, "companies", func(sp pgx.Tx) error {
		n, err := s.store.InsertCompanies(ctx, sp, companies)
		nCompanies = n
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.WithField("companies", nCompanies).Debug("Companies written")

	err = checkpoint(ctx, tx, "ratios", func(sp pgx.Tx) error {
		n, err := s.store.InsertRatios(ctx, sp, ratios)
		nRatios = n
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.WithField("ratios", nRatios).Debug("Ratios written")

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit reload: %w", err)
	}

	result = &models.LoadResult{
		BatchID:   batchID,
		Companies: int(nCompanies),
		Ratios:    int(nRatios),
		Duration:  time.Since(start),
	}
	logger.WithFields(log.Fields{
		"companies": result.Companies,
		"ratios":    result.Ratios,
		"duration":  result.Duration.String(),
	}).Info("Reload committed")
	return result, nil
}

// checkpoint runs fn inside a savepoint of tx and releases it on success
func checkpoint(ctx context.Context, tx pgx.Tx, name string, fn func(pgx.Tx) error) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to open %s checkpoint: %w", name, err)
	}
	defer sp.Rollback(ctx)

	if err := fn(sp); err != nil {
		return err
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("failed to release %s checkpoint: %w", name, err)
	}
	return nil
}

// Materialize turns a cleaned table into companies and their ratios.
// Company ids follow row order starting at 1; each company gets one ratio
// per non-label column, in column order.
func Materialize(cleaned *dataset.Table, label string) ([]models.Company, []models.FinancialRatio, error) {
	labelIdx, err := cleaned.RequireColumn(label)
	if err != nil {
		return nil, nil, err
	}

	companies := make([]models.Company, 0, cleaned.Len())
	ratios := make([]models.FinancialRatio, 0, cleaned.Len()*(len(cleaned.Columns)-1))

	for i, row := range cleaned.Rows {
		status, err := labelStatus(row[labelIdx])
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		id := int64(i + 1)
		companies = append(companies, models.Company{
			CompanyID:        id,
			BankruptcyStatus: status,
			Year:             baseYear + i%yearCycle,
			Industry:         defaultIndustry,
		})

		for j, col := range cleaned.Columns {
			if j == labelIdx {
				continue
			}
			if dataset.IsMissing(row[j]) {
				return nil, nil, fmt.Errorf("%w: row %d, column %q is missing after cleaning", models.ErrDataValidation, i+1, col)
			}
			ratios = append(ratios, models.FinancialRatio{
				CompanyID:  id,
				RatioName:  col,
				RatioValue: row[j],
			})
		}
	}
	return companies, ratios, nil
}

func labelStatus(v float64) (models.BankruptcyStatus, error) {
	switch {
	case v == 0:
		return models.StatusSolvent, nil
	case v == 1:
		return models.StatusBankrupt, nil
	case math.IsNaN(v):
		return 0, fmt.Errorf("%w: bankruptcy label is missing", models.ErrDataValidation)
	default:
		return 0, fmt.Errorf("%w: bankruptcy label must be 0 or 1, got %v", models.ErrDataValidation, v)
	}
}
