package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput matches every *MalformedInputError via errors.Is.
	ErrMalformedInput = errors.New("dataset: malformed input")

	// ErrShortInput indicates the file ended before the declared data band.
	ErrShortInput = errors.New("dataset: input shorter than data band")

	// ErrInvalidLayout indicates a Layout with negative counts or bad column names.
	ErrInvalidLayout = errors.New("dataset: invalid layout")

	// ErrUnknownColumn indicates a column name absent from the table.
	ErrUnknownColumn = errors.New("dataset: unknown column")

	// ErrMaskLength indicates a selection mask whose length differs from the row count.
	ErrMaskLength = errors.New("dataset: mask length mismatch")
)

// MalformedInputError reports a data line (1-based) that does not match the layout.
type MalformedInputError struct {
	Line   int
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	msg := fmt.Sprintf("dataset: malformed input at line %d: %s", e.Line, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }
