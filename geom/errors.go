package geom

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCandidates is returned when the candidate table has no rows.
	ErrEmptyCandidates = errors.New("candidate input is empty")

	// ErrEmptyDemand is returned when the demand table has no rows.
	ErrEmptyDemand = errors.New("demand input is empty")

	// ErrMissingColumn indicates a required column is absent from the header.
	ErrMissingColumn = errors.New("required column missing")

	// ErrShortRow indicates a row with fewer cells than the header requires.
	ErrShortRow = errors.New("row has too few cells")

	// ErrNegativeWeight indicates a demand weight below zero.
	ErrNegativeWeight = errors.New("weight must be >= 0")
)

// ValidationError reports malformed tabular input. It names the table
// and column, and the zero-based row where applicable (Row is -1 for
// table-level problems such as a missing column).
//
// The underlying cause can be accessed via errors.Unwrap.
type ValidationError struct {
	Table  string
	Column string
	Row    int
	cause  error
}

func (e *ValidationError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("invalid %s input: column %q: %v", e.Table, e.Column, e.cause)
	}
	return fmt.Sprintf("invalid %s input: column %q, row %d: %v", e.Table, e.Column, e.Row, e.cause)
}

func (e *ValidationError) Unwrap() error { return e.cause }
