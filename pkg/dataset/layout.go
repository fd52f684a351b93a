package dataset

import "fmt"

// Canonical column names of datafile1.txt.
const (
	ColZ        = "Z"
	ColMheInit  = "Mhe_init"
	ColMhePreCC = "Mhe_preCC"
	ColMco      = "Mco"
	ColMbh      = "Mbh"
	ColDMPulse  = "dMpulse"
	ColDMWind   = "dMwind"
	ColDMSN     = "dMSN"
)

// Layout declares which lines of the input hold data and what their columns are.
//   - HeaderLines: number of lines skipped before the first data line
//   - DataLines: number of consecutive data lines; later lines are ignored
//   - Columns: names of the numeric fields, in file order
type Layout struct {
	HeaderLines int
	DataLines   int
	Columns     []string
}

// DefaultColumns returns the column list of the metallicity sweep in file order.
func DefaultColumns() []string {
	return []string{ColZ, ColMheInit, ColMhePreCC, ColMco, ColMbh, ColDMPulse, ColDMWind, ColDMSN}
}

// DefaultLayout returns the band of datafile1.txt (zenodo record 3346593)
// holding the runs that vary only Z: zero-based lines 43 through 267.
func DefaultLayout() Layout {
	return Layout{
		HeaderLines: 43,
		DataLines:   225,
		Columns:     DefaultColumns(),
	}
}

// Validate checks counts and column names.
func (l Layout) Validate() error {
	if l.HeaderLines < 0 {
		return fmt.Errorf("%w: header lines %d < 0", ErrInvalidLayout, l.HeaderLines)
	}
	if l.DataLines <= 0 {
		return fmt.Errorf("%w: data lines %d <= 0", ErrInvalidLayout, l.DataLines)
	}
	if len(l.Columns) == 0 {
		return fmt.Errorf("%w: no columns", ErrInvalidLayout)
	}
	seen := make(map[string]struct{}, len(l.Columns))
	for _, c := range l.Columns {
		if c == "" {
			return fmt.Errorf("%w: empty column name", ErrInvalidLayout)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidLayout, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}
