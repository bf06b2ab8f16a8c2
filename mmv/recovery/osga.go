package recovery

import (
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/regfish7/anomaly/mmv/sensing"
	"github.com/regfish7/anomaly/mmv/signal"
)

// OSGA is the energy-threshold strategy:
//
//	xi[n] = (1/T) · Σ_t (y_tᵀ Φ_t[:,n])²
//
// and the support is the K indices with the largest xi.
type OSGA struct{}

// Name implements Recoverer.
func (OSGA) Name() string { return "osga" }

// Recover implements Recoverer.
func (OSGA) Recover(x mat.Matrix, op *sensing.Operator, k int) (signal.Support, error) {
	if _, err := checkInputs(x, op, k); err != nil {
		return nil, err
	}
	y, err := op.Measure(x)
	if err != nil {
		return nil, err
	}
	return TopK(Energy(op, y), k), nil
}

// Energy returns the per-candidate statistic xi for measurements y.
func Energy(op *sensing.Operator, y []*mat.VecDense) []float64 {
	_, n := op.Dims()
	steps := op.Steps()

	xi := make([]float64, n)
	even := mat.NewVecDense(n, nil)
	odd := mat.NewVecDense(n, nil)
	sq := make([]float64, n)

	// Steps are consumed in pairs: p_t² + p_{t+1}² is the power of the
	// complex vector p_t + i·p_{t+1}.
	for t := 0; t < steps; t += 2 {
		even.MulVec(op.Phi[t].T(), y[t])
		if t+1 < steps {
			odd.MulVec(op.Phi[t+1].T(), y[t+1])
			vecmath.Power(sq, even.RawVector().Data, odd.RawVector().Data)
		} else {
			vecmath.MulBlock(sq, even.RawVector().Data, even.RawVector().Data)
		}
		floats.Add(xi, sq)
	}

	floats.Scale(1/float64(steps), xi)
	return xi
}
