package services

import (
	"context"
	"time"

	"github.com/epeers/bankruptcy/internal/models"
	"github.com/epeers/bankruptcy/internal/repository"
)

// AnalysisRatios are the ratios compared by the analysis view
var AnalysisRatios = []string{
	"ROA(C) before interest and depreciation before interest",
	"ROA(A) before interest and % after tax",
	"ROA(B) before interest and depreciation after tax",
}

// AnalysisService compares ratio distributions of bankrupt and solvent companies
type AnalysisService struct {
	store RatioAggregator
}

// NewAnalysisService creates a new AnalysisService
func NewAnalysisService(store RatioAggregator) *AnalysisService {
	return &AnalysisService{store: store}
}

// CompareRatios returns mean, sample std, min and max of each named ratio for
// both groups. A group with no rows, or a statistic SQL leaves NULL, reports 0.
func (s *AnalysisService) CompareRatios(ctx context.Context, names []string) (map[string]models.RatioComparison, error) {
	defer TrackTime("CompareRatios", time.Now())

	result := make(map[string]models.RatioComparison, len(names))
	for _, name := range names {
		if _, done := result[name]; done {
			continue
		}
		groups, err := s.store.RatioGroupStats(ctx, name)
		if err != nil {
			return nil, err
		}
		result[name] = models.RatioComparison{
			Bankrupt: groupStats(groups[models.StatusBankrupt]),
			Solvent:  groupStats(groups[models.StatusSolvent]),
		}
	}
	return result, nil
}

func groupStats(agg repository.RatioAggregate) models.GroupStats {
	return models.GroupStats{
		Mean: orZero(agg.Mean),
		Std:  orZero(agg.Std),
		Min:  orZero(agg.Min),
		Max:  orZero(agg.Max),
	}
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
