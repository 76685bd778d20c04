package dataset

import (
	"fmt"
	"math"
	"sort"

	"github.com/epeers/bankruptcy/internal/models"
)

// outlierSigmas is the half-width of the kept band, in standard deviations
const outlierSigmas = 3.0

// CleanSummary describes what Clean changed
type CleanSummary struct {
	RowsIn       int                `json:"rows_in"`
	RowsOut      int                `json:"rows_out"`
	ImputedCells int                `json:"imputed_cells"`
	Medians      map[string]float64 `json:"medians"`
	// Dropped counts rows removed by each column's outlier pass
	Dropped map[string]int `json:"dropped"`
}

// Clean imputes missing values and removes outliers. The input is not modified.
//
// Imputation replaces every missing cell with the median of its column's present
// values, taken before any row is removed. Outlier removal then walks the
// non-label columns in order; each pass measures mean and population standard
// deviation on the rows left by the previous pass and drops rows outside
// mean ± 3σ. A row therefore survives only if it passes every column's filter
// as measured at the time that filter ran.
func Clean(raw *Table, label string) (*Table, *CleanSummary, error) {
	labelIdx, err := raw.RequireColumn(label)
	if err != nil {
		return nil, nil, err
	}

	t := raw.Clone()
	summary := &CleanSummary{
		RowsIn:  t.Len(),
		Medians: make(map[string]float64, len(t.Columns)),
		Dropped: make(map[string]int, len(t.Columns)),
	}

	if err := impute(t, summary); err != nil {
		return nil, nil, err
	}

	for j, col := range t.Columns {
		if j == labelIdx {
			continue
		}
		before := t.Len()
		t.Rows = filterOutliers(t.Rows, j)
		summary.Dropped[col] = before - t.Len()
	}

	summary.RowsOut = t.Len()
	return t, summary, nil
}

func impute(t *Table, summary *CleanSummary) error {
	if t.Len() == 0 {
		return nil
	}
	for j, col := range t.Columns {
		values := t.Column(j)
		present := values[:0:0]
		for _, v := range values {
			if !IsMissing(v) {
				present = append(present, v)
			}
		}
		if len(present) == len(values) {
			summary.Medians[col] = Median(present)
			continue
		}
		if len(present) == 0 {
			return fmt.Errorf("%w: column %q has no values to impute from", models.ErrDataValidation, col)
		}

		m := Median(present)
		summary.Medians[col] = m
		for _, row := range t.Rows {
			if IsMissing(row[j]) {
				row[j] = m
				summary.ImputedCells++
			}
		}
	}
	return nil
}

// filterOutliers keeps rows whose value in column j lies within mean ± 3σ of
// the given rows. Row order is preserved.
func filterOutliers(rows [][]float64, j int) [][]float64 {
	if len(rows) == 0 {
		return rows
	}
	values := make([]float64, len(rows))
	for i, row := range rows {
		values[i] = row[j]
	}
	mean, std := MeanStd(values)
	lo, hi := mean-outlierSigmas*std, mean+outlierSigmas*std

	kept := rows[:0:0]
	for _, row := range rows {
		if std == 0 || (row[j] >= lo && row[j] <= hi) {
			kept = append(kept, row)
		}
	}
	return kept
}

// Median returns the median of values, averaging the two middle values for
// an even count. It returns NaN for an empty slice.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// MeanStd returns the mean and population standard deviation of values
func MeanStd(values []float64) (mean, std float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= n

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / n)
}
