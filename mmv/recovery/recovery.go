package recovery

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/regfish7/anomaly/mmv/core"
	"github.com/regfish7/anomaly/mmv/sensing"
	"github.com/regfish7/anomaly/mmv/signal"
)

// Recoverer maps a signal and its measurement operator to a predicted
// support of exactly k indices.
type Recoverer interface {
	Name() string
	Recover(x mat.Matrix, op *sensing.Operator, k int) (signal.Support, error)
}

// Trial is the outcome of one Monte-Carlo recovery.
type Trial struct {
	Truth     signal.Support
	Predicted signal.Support
	Success   bool
}

// RunTrial draws a fresh signal and operator from rng, recovers the support
// with rec, and compares it against the truth.
func RunTrial(rng *rand.Rand, model core.Model, t, m int, timeVarying bool, rec Recoverer) (Trial, error) {
	sig, err := signal.Generate(rng, model, t)
	if err != nil {
		return Trial{}, err
	}
	op, err := sensing.Generate(rng, model.N, t, m, timeVarying)
	if err != nil {
		return Trial{}, err
	}
	predicted, err := rec.Recover(sig.X, op, model.K)
	if err != nil {
		return Trial{}, err
	}
	return Trial{
		Truth:     sig.Support,
		Predicted: predicted,
		Success:   sig.Support.Equal(predicted),
	}, nil
}

// TopK returns the indices of the k largest values, largest first. Ties are
// broken in favour of the lower index.
func TopK(values []float64, k int) signal.Support {
	if k <= 0 {
		return signal.Support{}
	}
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(values[b], values[a])
	})
	return signal.Support(idx[:min(k, len(idx))])
}

func checkInputs(x mat.Matrix, op *sensing.Operator, k int) (int, error) {
	if op == nil || op.Steps() == 0 {
		return 0, fmt.Errorf("%w: recovery: empty operator", core.ErrConfiguration)
	}
	n, _ := x.Dims()
	if k < 0 || k > n {
		return 0, fmt.Errorf("%w: recovery: K=%d outside [0,%d]", core.ErrConfiguration, k, n)
	}
	return n, nil
}
