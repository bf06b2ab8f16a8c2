package recovery

import (
	"gonum.org/v1/gonum/mat"

	"github.com/regfish7/anomaly/internal/lasso"
	"github.com/regfish7/anomaly/mmv/sensing"
	"github.com/regfish7/anomaly/mmv/signal"
)

// Lasso stacks the T measurement systems into one (T·M)×N regression,
// fits an L1-penalised model, and keeps the K largest coefficients.
//
// Coefficients are ranked by signed value, not magnitude: large negative
// coefficients rank last.
type Lasso struct {
	Options lasso.Options
}

// NewLasso returns a Lasso strategy with the solver's default penalty.
func NewLasso() *Lasso {
	return &Lasso{Options: lasso.DefaultOptions()}
}

// Name implements Recoverer.
func (*Lasso) Name() string { return "lasso" }

// Recover implements Recoverer.
func (l *Lasso) Recover(x mat.Matrix, op *sensing.Operator, k int) (signal.Support, error) {
	if _, err := checkInputs(x, op, k); err != nil {
		return nil, err
	}
	y, err := op.Measure(x)
	if err != nil {
		return nil, err
	}
	if k == 0 {
		return signal.Support{}, nil
	}

	res, err := lasso.Fit(op.Stacked(), sensing.StackMeasurements(y), l.Options)
	if err != nil {
		return nil, err
	}
	return TopK(res.Coef, k), nil
}
