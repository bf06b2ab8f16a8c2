package core

import "errors"

// Error categories shared by all mmv packages. Concrete failures wrap one of
// these so callers can classify them with errors.Is.
var (
	// ErrConfiguration marks invalid construction-time parameters. It is
	// never retryable.
	ErrConfiguration = errors.New("mmv: invalid configuration")

	// ErrNumericalDegeneracy marks a trial that hit a degenerate operator,
	// such as a zero-norm measurement column.
	ErrNumericalDegeneracy = errors.New("mmv: numerical degeneracy")
)
