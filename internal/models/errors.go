package models

import "errors"

// Error kinds shared by the cleaning pipeline, the loader and the read path.
// Callers wrap them with fmt.Errorf("...: %w") and test with errors.Is.
var (
	// ErrSchema: a required column is absent from batch input
	ErrSchema = errors.New("schema error")
	// ErrDataValidation: a cell or a caller-supplied parameter is outside its domain
	ErrDataValidation = errors.New("data validation error")
	// ErrQuery: a well-formed query cannot be satisfied
	ErrQuery = errors.New("query error")
	// ErrNotFound: the referenced entity does not exist
	ErrNotFound = errors.New("not found")
)
