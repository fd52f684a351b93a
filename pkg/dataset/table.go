package dataset

import (
	"fmt"
	"slices"

	"github.com/ja7ad/ppifit/pkg/util"
)

// Observation is one stellar model of the metallicity sweep. Masses are in Msun.
type Observation struct {
	Z        float64
	MheInit  float64
	MhePreCC float64
	Mco      float64
	Mbh      float64
	DMPulse  float64
	DMWind   float64
	DMSN     float64
}

// Table is an immutable rows × named-columns matrix.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]float64
}

// NewTable builds a table from column names and row values. Every row must
// have one value per column. Inputs are copied.
func NewTable(columns []string, rows [][]float64) (*Table, error) {
	l := Layout{HeaderLines: 0, DataLines: 1, Columns: columns}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	cp := make([][]float64, len(rows))
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrInvalidLayout, i, len(r), len(columns))
		}
		cp[i] = slices.Clone(r)
	}
	return newTable(columns, cp), nil
}

func newTable(columns []string, rows [][]float64) *Table {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return &Table{columns: slices.Clone(columns), index: idx, rows: rows}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns the column names in declaration order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// Index resolves a column name to its position.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	out := make([]float64, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out, nil
}

// Row returns a copy of row i in column order.
func (t *Table) Row(i int) []float64 { return slices.Clone(t.rows[i]) }

// Filter keeps the rows whose mask entry is true.
func (t *Table) Filter(mask []bool) (*Table, error) {
	if len(mask) != len(t.rows) {
		return nil, fmt.Errorf("%w: %d != %d", ErrMaskLength, len(mask), len(t.rows))
	}
	rows := make([][]float64, 0, len(t.rows))
	for i, keep := range mask {
		if keep {
			rows = append(rows, t.rows[i])
		}
	}
	// rows are never mutated, so sharing the backing slices is safe
	return newTable(t.columns, rows), nil
}

// Where keeps the rows whose named column satisfies pred.
func (t *Table) Where(name string, pred func(float64) bool) (*Table, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	mask := make([]bool, len(col))
	for i, v := range col {
		mask[i] = pred(v)
	}
	return t.Filter(mask)
}

// Unique returns the distinct values of a column in ascending order.
func (t *Table) Unique(name string) ([]float64, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	return util.UniqueSorted(col), nil
}

// Observations returns the rows as named records. The table must carry all
// eight canonical columns, in any order.
func (t *Table) Observations() ([]Observation, error) {
	var idx [8]int
	for k, name := range DefaultColumns() {
		j, ok := t.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		idx[k] = j
	}
	out := make([]Observation, len(t.rows))
	for i, r := range t.rows {
		out[i] = Observation{
			Z:        r[idx[0]],
			MheInit:  r[idx[1]],
			MhePreCC: r[idx[2]],
			Mco:      r[idx[3]],
			Mbh:      r[idx[4]],
			DMPulse:  r[idx[5]],
			DMWind:   r[idx[6]],
			DMSN:     r[idx[7]],
		}
	}
	return out, nil
}
