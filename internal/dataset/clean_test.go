package dataset

import (
	"math"
	"math/rand"
	"testing"

	"github.com/epeers/bankruptcy/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLabel = "Bankrupt?"

// newTable builds a table from column-major data
func newTable(columns []string, data ...[]float64) *Table {
	n := len(data[0])
	t := &Table{Columns: columns, Rows: make([][]float64, n)}
	for i := 0; i < n; i++ {
		row := make([]float64, len(columns))
		for j := range columns {
			row[j] = data[j][i]
		}
		t.Rows[i] = row
	}
	return t
}

func TestClean_MissingLabelColumn(t *testing.T) {
	raw := newTable([]string{"ROA"}, []float64{0.1, 0.2})

	_, _, err := Clean(raw, testLabel)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrSchema)
}

func TestClean_ImputesWithColumnMedian(t *testing.T) {
	nan := math.NaN()
	raw := newTable([]string{testLabel, "ROA", "Debt ratio %"},
		[]float64{0, 1, 0, nan, 1},
		[]float64{1, nan, 3, 5, nan},
		[]float64{0.5, 0.25, 0.75, 1, 0.5},
	)

	cleaned, summary, err := Clean(raw, testLabel)
	require.NoError(t, err)
	require.Equal(t, 5, cleaned.Len(), "five rows cannot hold a 3-sigma outlier")

	assert.Equal(t, 3.0, cleaned.Rows[1][1])
	assert.Equal(t, 3.0, cleaned.Rows[4][1])
	assert.Equal(t, 0.5, cleaned.Rows[3][0], "label column is imputed too")
	assert.Equal(t, 3, summary.ImputedCells)
	assert.Equal(t, 3.0, summary.Medians["ROA"])

	for i, row := range cleaned.Rows {
		for j, v := range row {
			assert.False(t, IsMissing(v), "row %d column %q still missing", i, cleaned.Columns[j])
		}
	}
}

func TestClean_DoesNotModifyInput(t *testing.T) {
	nan := math.NaN()
	raw := newTable([]string{testLabel, "ROA"},
		[]float64{0, 1, 0},
		[]float64{1, nan, 3},
	)

	_, _, err := Clean(raw, testLabel)
	require.NoError(t, err)
	assert.True(t, IsMissing(raw.Rows[1][1]))
}

func TestClean_MedianTakenBeforeOutlierRemoval(t *testing.T) {
	label := make([]float64, 20)
	x := make([]float64, 20)
	for i := 0; i < 19; i++ {
		x[i] = float64(i)
	}
	x[3] = math.NaN()
	x[19] = 1000

	cleaned, summary, err := Clean(newTable([]string{testLabel, "X"}, label, x), testLabel)
	require.NoError(t, err)

	// present values are 0..18 without 3, plus 1000; their median is 10.
	// After the 1000 row is dropped the median would have been 9.5.
	require.Equal(t, 19, cleaned.Len())
	assert.Equal(t, 10.0, cleaned.Rows[3][1])
	assert.Equal(t, 10.0, summary.Medians["X"])
	assert.Equal(t, 1, summary.Dropped["X"])
}

func TestClean_AllMissingColumn(t *testing.T) {
	nan := math.NaN()
	raw := newTable([]string{testLabel, "Empty"},
		[]float64{0, 1},
		[]float64{nan, nan},
	)

	_, _, err := Clean(raw, testLabel)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDataValidation)
}

func TestClean_EmptyTable(t *testing.T) {
	raw := &Table{Columns: []string{testLabel, "ROA"}}

	cleaned, summary, err := Clean(raw, testLabel)
	require.NoError(t, err)
	assert.Equal(t, 0, cleaned.Len())
	assert.Equal(t, 0, summary.RowsOut)
}

// Column A drops row 19. Measured on the full table, row 0 of column B is
// inside the band; measured on the 19 rows left after A's pass it is not.
func TestClean_OutlierPassesAreSequential(t *testing.T) {
	label := make([]float64, 20)
	a := make([]float64, 20)
	b := make([]float64, 20)
	label[5] = 1
	a[19] = 100
	b[19] = 1000
	b[0] = 10

	cleaned, summary, err := Clean(newTable([]string{testLabel, "A", "B"}, label, a, b), testLabel)
	require.NoError(t, err)

	assert.Equal(t, 18, cleaned.Len())
	assert.Equal(t, 1, summary.Dropped["A"])
	assert.Equal(t, 1, summary.Dropped["B"])
	for _, row := range cleaned.Rows {
		assert.NotEqual(t, 10.0, row[2], "row 0 should be dropped by B's pass on the shrunken table")
	}

	// the lone bankrupt row would be a label outlier, but the label is never filtered
	var bankrupt int
	for _, row := range cleaned.Rows {
		if row[0] == 1 {
			bankrupt++
		}
	}
	assert.Equal(t, 1, bankrupt)
}

func TestClean_SurvivorsMatchSequentialReplay(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const rows = 400
	columns := []string{testLabel, "ROA", "Debt ratio %", "Cash flow rate", "Current ratio"}

	raw := &Table{Columns: columns}
	for i := 0; i < rows; i++ {
		row := make([]float64, len(columns))
		row[0] = float64(rng.Intn(2))
		for j := 1; j < len(columns); j++ {
			row[j] = rng.NormFloat64()
			if rng.Float64() < 0.02 {
				row[j] *= 25 // heavy tail
			}
			if rng.Float64() < 0.05 {
				row[j] = math.NaN()
			}
		}
		raw.Rows = append(raw.Rows, row)
	}

	cleaned, _, err := Clean(raw, testLabel)
	require.NoError(t, err)

	// replay: impute, then filter column by column on the shrinking table
	expected := raw.Clone()
	for j := range columns {
		var present []float64
		for _, row := range expected.Rows {
			if !math.IsNaN(row[j]) {
				present = append(present, row[j])
			}
		}
		m := Median(present)
		for _, row := range expected.Rows {
			if math.IsNaN(row[j]) {
				row[j] = m
			}
		}
	}
	survivors := expected.Rows
	for j := 1; j < len(columns); j++ {
		var sum float64
		for _, row := range survivors {
			sum += row[j]
		}
		mean := sum / float64(len(survivors))
		var ss float64
		for _, row := range survivors {
			ss += (row[j] - mean) * (row[j] - mean)
		}
		sigma := math.Sqrt(ss / float64(len(survivors)))

		var next [][]float64
		for _, row := range survivors {
			if math.Abs(row[j]-mean) <= 3*sigma {
				next = append(next, row)
			}
		}
		survivors = next
	}

	require.Less(t, len(survivors), rows, "heavy tails should produce some outliers")
	require.Equal(t, len(survivors), cleaned.Len())
	for i := range survivors {
		assert.Equal(t, survivors[i], cleaned.Rows[i], "row %d differs", i)
	}
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
	assert.True(t, math.IsNaN(Median(nil)))
}

func TestMeanStd_Population(t *testing.T) {
	mean, std := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 5.0, mean)
	assert.Equal(t, 2.0, std)
}
