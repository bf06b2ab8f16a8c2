// Package signal generates ground-truth multi-time-step signals with a
// sparse anomalous support.
package signal

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/regfish7/anomaly/mmv/core"
)

// Signal is an N×T array of real values together with its true support.
// Row n holds the T samples of random variable n.
type Signal struct {
	X       *mat.Dense
	Support Support
}

// Generator draws signals for a fixed model from an owned random source.
// A Generator is not safe for concurrent use; give each worker its own.
type Generator struct {
	model core.Model
	rng   *rand.Rand
	null  distuv.Normal
	anom  distuv.Normal
}

// NewGenerator validates model and binds it to rng.
func NewGenerator(model core.Model, rng *rand.Rand) (*Generator, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: signal: nil random source", core.ErrConfiguration)
	}
	return &Generator{
		model: model,
		rng:   rng,
		null:  distuv.Normal{Mu: model.Mu0, Sigma: model.Sigma0, Src: rng},
		anom:  distuv.Normal{Mu: model.Mu1, Sigma: model.Sigma1, Src: rng},
	}, nil
}

// Model returns the model the generator draws from.
func (g *Generator) Model() core.Model { return g.model }

// Generate draws a fresh N×T signal. K support indices are chosen uniformly
// without replacement; support rows are filled from the anomalous
// distribution and all other rows from the null distribution.
func (g *Generator) Generate(t int) (Signal, error) {
	if t < 1 {
		return Signal{}, fmt.Errorf("%w: T must be >= 1: %d", core.ErrConfiguration, t)
	}
	n, k := g.model.N, g.model.K

	support := make(Support, k)
	if k > 0 {
		sampleuv.WithoutReplacement(support, n, g.rng)
	}

	x := mat.NewDense(n, t, nil)
	for i := 0; i < n; i++ {
		row := x.RawRowView(i)
		for j := range row {
			row[j] = g.null.Rand()
		}
	}
	for _, i := range support {
		row := x.RawRowView(i)
		for j := range row {
			row[j] = g.anom.Rand()
		}
	}

	return Signal{X: x, Support: support}, nil
}

// Generate draws a single signal for model with t time steps using rng.
func Generate(rng *rand.Rand, model core.Model, t int) (Signal, error) {
	g, err := NewGenerator(model, rng)
	if err != nil {
		return Signal{}, err
	}
	return g.Generate(t)
}
