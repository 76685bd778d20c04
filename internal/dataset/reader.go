package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/epeers/bankruptcy/internal/models"
	"github.com/xuri/excelize/v2"
)

// missingTokens are cell values read as a missing value (compared lowercased)
var missingTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
}

// ReadFile reads a ratio file, choosing the parser from its extension.
// Supported: .csv and .xlsx (first sheet).
func ReadFile(path, label string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		return ReadCSV(f, label)
	case ".xlsx":
		return ReadXLSX(path, label)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", models.ErrSchema, filepath.Ext(path))
	}
}

// ReadCSV parses a ratio CSV. The first row is the header; every other cell
// must be numeric or one of the missing-value tokens.
// The label column must be present.
func ReadCSV(r io.Reader, label string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// field count is checked per row below to report a validation error
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input, no header row", models.ErrSchema)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to read CSV record: %w", len(records)+2, err)
		}
		records = append(records, record)
	}

	return buildTable(header, records, label)
}

// ReadXLSX parses the first sheet of a workbook with the same rules as ReadCSV
func ReadXLSX(path, label string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", models.ErrSchema)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no header row", models.ErrSchema, sheets[0])
	}

	// GetRows drops trailing empty cells; pad to header width so they read as missing
	header := rows[0]
	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		records = append(records, row)
	}

	return buildTable(header, records, label)
}

func buildTable(header []string, records [][]string, label string) (*Table, error) {
	columns := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, col := range header {
		name := strings.TrimSpace(col)
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", models.ErrSchema, name)
		}
		seen[name] = struct{}{}
		columns[i] = name
	}

	t := &Table{Columns: columns, Rows: make([][]float64, 0, len(records))}
	if _, err := t.RequireColumn(label); err != nil {
		return nil, err
	}

	for i, record := range records {
		rowNum := i + 2 // header is row 1
		if len(record) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d fields, expected %d",
				models.ErrDataValidation, rowNum, len(record), len(columns))
		}
		row := make([]float64, len(columns))
		for j, cell := range record {
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d, column %q: invalid number %q",
					models.ErrDataValidation, rowNum, columns[j], strings.TrimSpace(cell))
			}
			row[j] = v
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func parseCell(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if _, ok := missingTokens[strings.ToLower(s)]; ok {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) {
		return 0, fmt.Errorf("infinite value")
	}
	return v, nil
}
