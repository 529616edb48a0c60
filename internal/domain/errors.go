package domain

import "errors"

// Error kinds returned by the numeric core. Callers match them with errors.Is;
// the wrapped message carries the detail.
var (
	// ErrInvalidArgument reports a parameter outside its accepted range, such
	// as an unknown normalization mode or a percentile outside (0, 100).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDimensionMismatch reports two inputs whose axes disagree in length or labels.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrPreconditionViolation reports input that breaks an assumption of the
	// algorithm, such as a grid with a single row or non-uniform spacing.
	ErrPreconditionViolation = errors.New("precondition violation")

	// ErrNotReady reports a computation requested before any dataset was loaded.
	ErrNotReady = errors.New("dataset not loaded")
)
