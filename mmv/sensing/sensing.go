// Package sensing draws Gaussian measurement operators and applies them to
// multi-time-step signals.
package sensing

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/regfish7/anomaly/mmv/core"
)

// Operator is a sequence of T measurement matrices, each M×N.
//
// When TimeVarying is false every entry of Phi refers to the same matrix:
// one draw is reused for all time steps. Operators are read-only after
// construction.
type Operator struct {
	Phi         []*mat.Dense
	TimeVarying bool
}

// Generate draws an operator with t steps of m×n standard normal matrices.
func Generate(rng *rand.Rand, n, t, m int, timeVarying bool) (*Operator, error) {
	if n <= 0 || t <= 0 || m <= 0 {
		return nil, fmt.Errorf("%w: sensing: N, T and M must be > 0: N=%d T=%d M=%d",
			core.ErrConfiguration, n, t, m)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: sensing: nil random source", core.ErrConfiguration)
	}

	phi := make([]*mat.Dense, t)
	if timeVarying {
		for i := range phi {
			phi[i] = gaussian(rng, m, n)
		}
	} else {
		fixed := gaussian(rng, m, n)
		for i := range phi {
			phi[i] = fixed
		}
	}

	return &Operator{Phi: phi, TimeVarying: timeVarying}, nil
}

func gaussian(rng *rand.Rand, rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return mat.NewDense(rows, cols, data)
}

// Steps returns the number of time steps T.
func (op *Operator) Steps() int { return len(op.Phi) }

// Dims returns (M, N) of each step's matrix.
func (op *Operator) Dims() (m, n int) {
	if len(op.Phi) == 0 {
		return 0, 0
	}
	return op.Phi[0].Dims()
}

// Measure projects every time slice of x through its step's matrix:
// y_t = Phi_t · x[:, t]. x must be N×T.
func (op *Operator) Measure(x mat.Matrix) ([]*mat.VecDense, error) {
	m, n := op.Dims()
	rows, cols := x.Dims()
	if rows != n || cols != op.Steps() {
		return nil, fmt.Errorf("sensing: signal is %d×%d, operator expects %d×%d", rows, cols, n, op.Steps())
	}

	y := make([]*mat.VecDense, cols)
	for t := range y {
		y[t] = mat.NewVecDense(m, nil)
		y[t].MulVec(op.Phi[t], mat.NewVecDense(n, mat.Col(nil, t, x)))
	}
	return y, nil
}

// Stacked concatenates all step matrices row-wise into one (T·M)×N matrix.
func (op *Operator) Stacked() *mat.Dense {
	m, n := op.Dims()
	out := mat.NewDense(op.Steps()*m, n, nil)
	for t, phi := range op.Phi {
		out.Slice(t*m, (t+1)*m, 0, n).(*mat.Dense).Copy(phi)
	}
	return out
}

// StackMeasurements concatenates per-step measurements into one T·M vector
// matching the row order of Stacked.
func StackMeasurements(y []*mat.VecDense) *mat.VecDense {
	total := 0
	for _, v := range y {
		total += v.Len()
	}
	data := make([]float64, 0, total)
	for _, v := range y {
		for i := 0; i < v.Len(); i++ {
			data = append(data, v.AtVec(i))
		}
	}
	return mat.NewVecDense(total, data)
}
