package experiment

import (
	"time"

	"gonum.org/v1/gonum/mat"
)

// CellStats summarises the trials of one (M, T) cell.
type CellStats struct {
	M, T        int
	Trials      int
	Successes   int
	Elapsed     time.Duration
	SuccessRate float64
	// Truncated is set when the cell hit Config.CellTimeout before its
	// stopping rule halted.
	Truncated bool
}

// Result holds the three MaxM×MaxT matrices of a sweep. Entry (i, j)
// belongs to the cell M=i+1, T=j+1. Elapsed is in seconds.
type Result struct {
	Label   Label
	Trials  *mat.Dense
	Elapsed *mat.Dense
	Scores  *mat.Dense
	Cells   []CellStats
}

func newResult(label Label, maxM, maxT int) *Result {
	return &Result{
		Label:   label,
		Trials:  mat.NewDense(maxM, maxT, nil),
		Elapsed: mat.NewDense(maxM, maxT, nil),
		Scores:  mat.NewDense(maxM, maxT, nil),
		Cells:   make([]CellStats, maxM*maxT),
	}
}

// set stores cs. Distinct cells touch distinct elements, so concurrent calls
// for different cells are safe.
func (r *Result) set(cs CellStats) {
	i, j := cs.M-1, cs.T-1
	r.Trials.Set(i, j, float64(cs.Trials))
	r.Elapsed.Set(i, j, cs.Elapsed.Seconds())
	r.Scores.Set(i, j, cs.SuccessRate)
	r.Cells[i*r.Label.T+j] = cs
}

// Cell returns the statistics of cell (m, t), 1-based.
func (r *Result) Cell(m, t int) CellStats {
	return r.Cells[(m-1)*r.Label.T+(t-1)]
}

// Truncated returns the number of cells that hit their timeout.
func (r *Result) Truncated() int {
	n := 0
	for _, c := range r.Cells {
		if c.Truncated {
			n++
		}
	}
	return n
}
