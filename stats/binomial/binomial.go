// Package binomial provides confidence intervals for a binomial proportion.
package binomial

import (
	"errors"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultAlpha gives a two-sided 95% interval.
const DefaultAlpha = 0.05

// Errors returned by interval functions.
var (
	ErrInvalidTrials    = errors.New("binomial: trials must be > 0")
	ErrInvalidSuccesses = errors.New("binomial: successes must be in [0, trials]")
	ErrInvalidAlpha     = errors.New("binomial: alpha must be in (0, 1)")
)

// Jeffreys returns the equal-tailed Jeffreys interval for successes out of
// trials at significance alpha:
//
//	lower = Beta(s+½, n−s+½).Quantile(alpha/2)
//	upper = Beta(s+½, n−s+½).Quantile(1−alpha/2)
//
// No boundary adjustment is applied at s = 0 or s = n.
func Jeffreys(successes, trials int, alpha float64) (lower, upper float64, err error) {
	if trials <= 0 {
		return 0, 0, ErrInvalidTrials
	}
	if successes < 0 || successes > trials {
		return 0, 0, ErrInvalidSuccesses
	}
	if !(alpha > 0 && alpha < 1) {
		return 0, 0, ErrInvalidAlpha
	}

	posterior := distuv.Beta{
		Alpha: float64(successes) + 0.5,
		Beta:  float64(trials-successes) + 0.5,
	}
	return posterior.Quantile(alpha / 2), posterior.Quantile(1 - alpha/2), nil
}

// Width returns upper − lower of the Jeffreys interval.
func Width(successes, trials int, alpha float64) (float64, error) {
	lo, hi, err := Jeffreys(successes, trials, alpha)
	if err != nil {
		return 0, err
	}
	return hi - lo, nil
}
