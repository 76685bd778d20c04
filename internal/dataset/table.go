// Package dataset reads the raw bankruptcy ratio file and cleans it before loading.
package dataset

import (
	"fmt"
	"math"

	"github.com/epeers/bankruptcy/internal/models"
)

// Table is an in-memory numeric table. Rows[i][j] is the value of Columns[j]
// in row i; a missing cell is NaN.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// ColumnIndex returns the position of the named column, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns a copy of the values of column j
func (t *Table) Column(j int) []float64 {
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[j]
	}
	return out
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]float64, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]float64(nil), row...)
	}
	return out
}

// RequireColumn returns the index of a required column or an ErrSchema error
func (t *Table) RequireColumn(name string) (int, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return -1, fmt.Errorf("%w: missing required column %q", models.ErrSchema, name)
	}
	return idx, nil
}

// IsMissing reports whether a cell holds no value
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}
