package fit

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData indicates too few points inside the fit window.
	ErrInsufficientData = errors.New("fit: insufficient data in window")

	// ErrNoConvergence indicates the iteration limit was reached before any tolerance was met.
	ErrNoConvergence = errors.New("fit: iteration limit reached")

	// ErrSingular indicates JᵀJ is singular at the solution, so the covariance is undefined.
	ErrSingular = errors.New("fit: singular covariance")

	// ErrNonFinite indicates a NaN or Inf in the residuals or the coefficients.
	ErrNonFinite = errors.New("fit: non-finite value")

	// ErrInvalidData indicates input values outside the model's domain (e.g. Z <= 0).
	ErrInvalidData = errors.New("fit: invalid data")

	// ErrInvalidSettings indicates an unusable Settings value.
	ErrInvalidSettings = errors.New("fit: invalid settings")
)

// ConvergenceError reports a fit that produced no usable parameters.
type ConvergenceError struct {
	Reason     string
	Iterations int
	Err        error
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("fit: no convergence after %d iterations: %s", e.Iterations, e.Reason)
}

func (e *ConvergenceError) Unwrap() error { return e.Err }
