// Package dataset loads the stellar-evolution observation table that feeds the
// pulsational pair-instability fit.
//
// # Input format
//
// The input is a plain-text, whitespace-delimited table. A fixed number of
// header lines precede a contiguous block of data lines; anything after that
// block is ignored and never read. Each data line carries a leading index token
// and a trailing annotation token, both discarded. The remaining tokens are
// parsed as float64 and must match the declared column list one to one.
//
// The band is an explicit Layout value:
//
//	Layout{
//	    HeaderLines: 43,  // zero-based index of the first data line
//	    DataLines:   225, // length of the metallicity sweep block
//	    Columns:     []string{"Z", "Mhe_init", "Mhe_preCC", "Mco", "Mbh", "dMpulse", "dMwind", "dMSN"},
//	}
//
// Selecting the metallicity sweep out of a file that also holds other parameter
// variations is a property of how the file is organised, not an algorithm: the
// sweep occupies one contiguous block and Layout names it.
//
// # Errors
//
// Any line inside the band that cannot be split into the expected number of
// numeric fields, or a file that ends before the band is complete, yields a
// *MalformedInputError (errors.Is(err, ErrMalformedInput) also holds).
//
// # Tables
//
// Table is read-only after load. Columns are resolved by name, so the physical
// column order of the file does not matter to callers:
//
//	tbl, err := dataset.Load("data/datafile1.txt", dataset.DefaultLayout())
//	if err != nil { ... }
//	mco, _ := tbl.Column(dataset.ColMco)
//	zs, _ := tbl.Unique(dataset.ColZ) // sorted metallicity groups
package dataset
