package lasso

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func BenchmarkFitStacked(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 2))
	const rows, features = 50 * 10, 100
	data := make([]float64, rows*features)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	x := mat.NewDense(rows, features, data)
	y := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		y.SetVec(i, rng.NormFloat64())
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Fit(x, y, DefaultOptions()); err != nil {
			b.Fatal(err)
		}
	}
}
