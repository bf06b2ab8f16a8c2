package recovery

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/regfish7/anomaly/mmv/core"
	"github.com/regfish7/anomaly/mmv/sensing"
	"github.com/regfish7/anomaly/mmv/signal"
)

// SOMP is simultaneous orthogonal matching pursuit run for exactly K rounds.
//
// Each round scores every unselected candidate n by
//
//	Σ_t |r_tᵀ Φ_t[:,n]| / ‖Φ_t[:,n]‖₂
//
// picks the best, Gram-Schmidt orthogonalises its column against the basis
// built so far for each step, and removes the residual's projection onto the
// new basis vector. Changing that order changes which supports are found.
type SOMP struct{}

// Name implements Recoverer.
func (SOMP) Name() string { return "somp" }

// Recover implements Recoverer. A zero-norm operator column yields an error
// wrapping core.ErrNumericalDegeneracy.
func (SOMP) Recover(x mat.Matrix, op *sensing.Operator, k int) (signal.Support, error) {
	n, err := checkInputs(x, op, k)
	if err != nil {
		return nil, err
	}
	y, err := op.Measure(x)
	if err != nil {
		return nil, err
	}
	if k == 0 {
		return signal.Support{}, nil
	}

	steps := op.Steps()
	norms, err := columnNorms(op)
	if err != nil {
		return nil, err
	}

	residuals := make([][]float64, steps)
	for t := range residuals {
		residuals[t] = mat.Col(nil, 0, y[t])
	}

	// basis[t][l] is the orthogonalised column chosen in round l at step t.
	basis := make([][][]float64, steps)
	for t := range basis {
		basis[t] = make([][]float64, 0, k)
	}

	selected := make([]bool, n)
	support := make(signal.Support, 0, k)
	scores := make([]float64, n)
	proj := mat.NewVecDense(n, nil)

	for round := 0; round < k; round++ {
		core.Zero(scores)
		for t := 0; t < steps; t++ {
			m := len(residuals[t])
			proj.MulVec(op.Phi[t].T(), mat.NewVecDense(m, residuals[t]))
			for j := 0; j < n; j++ {
				scores[j] += math.Abs(proj.AtVec(j)) / norms[t][j]
			}
		}

		best := -1
		for j := 0; j < n; j++ {
			if selected[j] {
				continue
			}
			if best < 0 || scores[j] > scores[best] {
				best = j
			}
		}
		selected[best] = true
		support = append(support, best)

		for t := 0; t < steps; t++ {
			col := mat.Col(nil, best, op.Phi[t])
			gamma := orthogonalize(col, basis[t])
			basis[t] = append(basis[t], gamma)

			gg := floats.Dot(gamma, gamma)
			if gg == 0 {
				continue
			}
			floats.AddScaled(residuals[t], -floats.Dot(residuals[t], gamma)/gg, gamma)
		}
	}

	return support, nil
}

// orthogonalize returns col minus its projections onto every vector in
// basis, with all coefficients taken against the original col.
func orthogonalize(col []float64, basis [][]float64) []float64 {
	out := make([]float64, len(col))
	copy(out, col)
	for _, b := range basis {
		bb := floats.Dot(b, b)
		if bb == 0 {
			continue
		}
		floats.AddScaled(out, -floats.Dot(col, b)/bb, b)
	}
	return out
}

// columnNorms returns ‖Φ_t[:,n]‖₂ for every step and column. Steps that
// share a matrix share their norms.
func columnNorms(op *sensing.Operator) ([][]float64, error) {
	m, n := op.Dims()
	norms := make([][]float64, op.Steps())
	col := make([]float64, m)

	for t, phi := range op.Phi {
		if t > 0 && phi == op.Phi[t-1] {
			norms[t] = norms[t-1]
			continue
		}
		norms[t] = make([]float64, n)
		for j := 0; j < n; j++ {
			mat.Col(col, j, phi)
			norms[t][j] = floats.Norm(col, 2)
			if norms[t][j] == 0 {
				return nil, fmt.Errorf("%w: somp: column %d of step %d has zero norm",
					core.ErrNumericalDegeneracy, j, t)
			}
		}
	}
	return norms, nil
}
