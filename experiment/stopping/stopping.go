// Package stopping decides when a Monte-Carlo cell has run enough trials.
//
// A Rule is a pure function of the cumulative (successes, trials) counts.
// Two modes exist: Confidence continues until the Jeffreys interval of the
// success probability is narrower than a tolerance, and FixedCount continues
// until a trial cutoff is reached.
package stopping

import (
	"fmt"
	"math"

	"github.com/regfish7/anomaly/mmv/core"
	"github.com/regfish7/anomaly/stats/binomial"
)

// Rule reports whether another trial should be run.
type Rule interface {
	KeepGoing(successes, trials int) bool
	String() string
}

// Confidence keeps going while the Jeffreys interval width exceeds Tolerance.
type Confidence struct {
	tolerance float64
	alpha     float64
}

// ConfidenceOption mutates a Confidence rule.
type ConfidenceOption func(*Confidence)

// WithAlpha sets the interval significance level (default 0.05).
func WithAlpha(alpha float64) ConfidenceOption {
	return func(c *Confidence) {
		if alpha > 0 && alpha < 1 {
			c.alpha = alpha
		}
	}
}

// NewConfidence builds a confidence-interval rule. tolerance must lie in (0, 1).
func NewConfidence(tolerance float64, opts ...ConfidenceOption) (*Confidence, error) {
	if !(tolerance > 0 && tolerance < 1) {
		return nil, fmt.Errorf("%w: confidence tolerance must be in (0,1): %g", core.ErrConfiguration, tolerance)
	}
	c := &Confidence{tolerance: tolerance, alpha: binomial.DefaultAlpha}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Tolerance returns the interval width at which the rule halts.
func (c *Confidence) Tolerance() float64 { return c.tolerance }

// Alpha returns the interval significance level.
func (c *Confidence) Alpha() float64 { return c.alpha }

// KeepGoing implements Rule.
func (c *Confidence) KeepGoing(successes, trials int) bool {
	if trials <= 0 {
		return true
	}
	w, err := binomial.Width(successes, trials, c.alpha)
	if err != nil {
		// Counts outside [0, trials] cannot come from a trial loop.
		return false
	}
	return w > c.tolerance
}

func (c *Confidence) String() string {
	return fmt.Sprintf("jeffreys(width<=%g, alpha=%g)", c.tolerance, c.alpha)
}

// FixedCount keeps going while fewer than Cutoff trials have run.
type FixedCount struct {
	cutoff int
}

// NewFixedCount builds a fixed-count rule. cutoff must be >= 1.
func NewFixedCount(cutoff int) (*FixedCount, error) {
	if cutoff < 1 {
		return nil, fmt.Errorf("%w: trial cutoff must be a positive integer: %d", core.ErrConfiguration, cutoff)
	}
	return &FixedCount{cutoff: cutoff}, nil
}

// Cutoff returns the number of trials after which the rule halts.
func (f *FixedCount) Cutoff() int { return f.cutoff }

// KeepGoing implements Rule. successes is ignored.
func (f *FixedCount) KeepGoing(_, trials int) bool {
	return trials < f.cutoff
}

func (f *FixedCount) String() string {
	return fmt.Sprintf("fixed(%d trials)", f.cutoff)
}

// New builds a rule from a single threshold: an interval width in (0,1)
// when confidence is set, otherwise a positive integral trial count. opts
// only apply to the confidence rule.
func New(confidence bool, threshold float64, opts ...ConfidenceOption) (Rule, error) {
	if confidence {
		c, err := NewConfidence(threshold, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	if threshold != math.Trunc(threshold) || math.IsInf(threshold, 0) || threshold > math.MaxInt32 {
		return nil, fmt.Errorf("%w: trial cutoff must be a positive integer: %g", core.ErrConfiguration, threshold)
	}
	f, err := NewFixedCount(int(threshold))
	if err != nil {
		return nil, err
	}
	return f, nil
}
