// Package geom holds the validated, immutable geometry for one solve:
// candidate-site coordinates and weighted demand points.
//
// Raw input arrives as a Table (header + string cells, typically read
// from CSV). NewStore validates the tables and produces typed arrays;
// after that nothing is mutated for the lifetime of the solve.
package geom

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Required columns for both tables.
const (
	ColumnID = "id"
	ColumnX  = "x"
	ColumnY  = "y"

	// ColumnWeight is the demand weight column. ColumnPop is accepted
	// as a synonym (survey datasets commonly label it "pop").
	ColumnWeight = "weight"
	ColumnPop    = "pop"
)

// Table is a raw tabular input: a header row and string cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadCSV reads a table from CSV. The first record is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("geom: read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("geom: csv has no header row")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	return &Table{Header: header, Rows: records[1:]}, nil
}

// columnIndex returns the position of name in the header, or -1.
func (t *Table) columnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Store owns the typed coordinate and weight buffers for one solve.
// All slices are aligned by index and must be treated as read-only;
// concurrent readers need no synchronization.
type Store struct {
	// Candidate sites, in input order.
	CandidateIDs []int64
	CandidateX   []float64
	CandidateY   []float64

	// Demand points, in input order.
	PointIDs []int64
	PointX   []float64
	PointY   []float64
	Weights  []float64
}

// NumCandidates returns the number of candidate sites.
func (s *Store) NumCandidates() int { return len(s.CandidateIDs) }

// NumPoints returns the number of demand points.
func (s *Store) NumPoints() int { return len(s.PointIDs) }

// TotalWeight returns the sum of all demand weights.
func (s *Store) TotalWeight() float64 {
	var sum float64
	for _, w := range s.Weights {
		sum += w
	}
	return sum
}

// NewStore validates the candidate and demand tables and builds the
// typed arrays. Candidates require columns id,x,y; demand points
// require id,x,y and optionally weight (or pop). A missing weight
// column defaults every weight to 1.0; a weight cell that does not
// parse defaults to 0.0. Any other non-numeric cell is a
// ValidationError naming the offending column and row.
func NewStore(candidates, demand *Table) (*Store, error) {
	if candidates == nil || len(candidates.Rows) == 0 {
		return nil, ErrEmptyCandidates
	}
	if demand == nil || len(demand.Rows) == 0 {
		return nil, ErrEmptyDemand
	}

	s := &Store{}

	var err error
	s.CandidateIDs, s.CandidateX, s.CandidateY, err = parsePoints("candidates", candidates)
	if err != nil {
		return nil, err
	}
	s.PointIDs, s.PointX, s.PointY, err = parsePoints("demand", demand)
	if err != nil {
		return nil, err
	}

	s.Weights, err = parseWeights(demand)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func parsePoints(table string, t *Table) (ids []int64, xs, ys []float64, err error) {
	idCol := t.columnIndex(ColumnID)
	xCol := t.columnIndex(ColumnX)
	yCol := t.columnIndex(ColumnY)
	switch {
	case idCol < 0:
		return nil, nil, nil, &ValidationError{Table: table, Column: ColumnID, Row: -1, cause: ErrMissingColumn}
	case xCol < 0:
		return nil, nil, nil, &ValidationError{Table: table, Column: ColumnX, Row: -1, cause: ErrMissingColumn}
	case yCol < 0:
		return nil, nil, nil, &ValidationError{Table: table, Column: ColumnY, Row: -1, cause: ErrMissingColumn}
	}

	n := len(t.Rows)
	ids = make([]int64, n)
	xs = make([]float64, n)
	ys = make([]float64, n)

	for i, row := range t.Rows {
		if len(row) <= idCol || len(row) <= xCol || len(row) <= yCol {
			return nil, nil, nil, &ValidationError{Table: table, Column: ColumnID, Row: i, cause: ErrShortRow}
		}
		ids[i], err = parseID(row[idCol])
		if err != nil {
			return nil, nil, nil, &ValidationError{Table: table, Column: ColumnID, Row: i, cause: err}
		}
		xs[i], err = strconv.ParseFloat(strings.TrimSpace(row[xCol]), 64)
		if err != nil {
			return nil, nil, nil, &ValidationError{Table: table, Column: ColumnX, Row: i, cause: err}
		}
		ys[i], err = strconv.ParseFloat(strings.TrimSpace(row[yCol]), 64)
		if err != nil {
			return nil, nil, nil, &ValidationError{Table: table, Column: ColumnY, Row: i, cause: err}
		}
	}

	return ids, xs, ys, nil
}

func parseWeights(t *Table) ([]float64, error) {
	col := t.columnIndex(ColumnWeight)
	if col < 0 {
		col = t.columnIndex(ColumnPop)
	}

	weights := make([]float64, len(t.Rows))
	if col < 0 {
		// No weight column: every point counts as 1.
		for i := range weights {
			weights[i] = 1.0
		}
		return weights, nil
	}

	for i, row := range t.Rows {
		if len(row) <= col {
			continue // short row: weight 0
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			// Unparseable weight cells count as 0, not as an error.
			continue
		}
		if w < 0 {
			return nil, &ValidationError{Table: "demand", Column: ColumnWeight, Row: i, cause: ErrNegativeWeight}
		}
		weights[i] = w
	}
	return weights, nil
}

func parseID(cell string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
}
