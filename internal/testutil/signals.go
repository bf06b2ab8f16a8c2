package testutil

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// DeterministicGaussian returns a rows×cols matrix of standard normal
// values drawn from a fixed seed.
func DeterministicGaussian(seed uint64, rows, cols int) *mat.Dense {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return mat.NewDense(rows, cols, data)
}

// SparseRows returns an n×t signal whose rows listed in support hold value
// and whose remaining rows are zero.
func SparseRows(n, t int, support []int, value float64) *mat.Dense {
	x := mat.NewDense(n, t, nil)
	for _, i := range support {
		row := x.RawRowView(i)
		for j := range row {
			row[j] = value
		}
	}
	return x
}

// Repeat returns a slice holding m exactly t times.
func Repeat(m *mat.Dense, t int) []*mat.Dense {
	out := make([]*mat.Dense, t)
	for i := range out {
		out[i] = m
	}
	return out
}
