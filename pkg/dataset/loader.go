package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

// Load opens path and reads the data band declared by layout.
func Load(path string, layout Layout) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open: %w", err)
	}
	defer f.Close()

	return Read(f, layout)
}

// Read parses the data band of r. Reading stops at the end of the band, so
// trailing content is never inspected.
func Read(r io.Reader, layout Layout) (*Table, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	end := layout.HeaderLines + layout.DataLines
	want := len(layout.Columns)
	rows := make([][]float64, 0, layout.DataLines)

	n := 0 // zero-based index of the next line
	for n < end && sc.Scan() {
		if n >= layout.HeaderLines {
			row, err := parseLine(sc.Text(), n+1, want)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return nil, &MalformedInputError{Line: n + 1, Reason: "read failed", Err: err}
	}
	if len(rows) < layout.DataLines {
		return nil, &MalformedInputError{
			Line:   n + 1,
			Reason: fmt.Sprintf("got %d of %d data lines", len(rows), layout.DataLines),
			Err:    ErrShortInput,
		}
	}

	return newTable(layout.Columns, rows), nil
}

// parseLine drops the leading index and trailing annotation tokens and parses
// the rest. lineNo is 1-based and only used for error reporting.
func parseLine(text string, lineNo, want int) ([]float64, error) {
	fields := strings.Fields(text)
	if len(fields) != want+2 {
		got := len(fields) - 2
		if got < 0 {
			got = 0
		}
		return nil, &MalformedInputError{
			Line:   lineNo,
			Reason: fmt.Sprintf("got %d numeric fields, want %d", got, want),
		}
	}

	row := make([]float64, want)
	for i, tok := range fields[1 : len(fields)-1] {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, &MalformedInputError{
				Line:   lineNo,
				Reason: fmt.Sprintf("field %d", i+1),
				Err:    err,
			}
		}
		row[i] = v
	}
	return row, nil
}
