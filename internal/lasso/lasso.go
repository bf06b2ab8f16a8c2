// Package lasso fits L1-penalised linear least squares by cyclic coordinate
// descent.
//
// The objective is
//
//	(1 / (2·rows)) · ‖y − X·w − b‖² + Alpha · ‖w‖₁
//
// with the intercept b fitted on centred data when FitIntercept is set.
// Convergence follows the usual two-stage test: once the largest coordinate
// update is small relative to the largest coefficient, the duality gap is
// evaluated and iteration stops when it drops below Tol·‖y‖².
package lasso

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Errors returned by Fit.
var (
	ErrEmptyDesign      = errors.New("lasso: design matrix is empty")
	ErrLengthMismatch   = errors.New("lasso: target length does not match design rows")
	ErrInvalidAlpha     = errors.New("lasso: alpha must be >= 0")
	ErrInvalidMaxIter   = errors.New("lasso: max iterations must be > 0")
	ErrInvalidTolerance = errors.New("lasso: tolerance must be > 0")
)

// Options configures the solver.
type Options struct {
	Alpha        float64
	MaxIter      int
	Tol          float64
	FitIntercept bool
}

// DefaultOptions returns unit penalty, 1000 sweeps, tolerance 1e-4 and a
// fitted intercept.
func DefaultOptions() Options {
	return Options{
		Alpha:        1,
		MaxIter:      1000,
		Tol:          1e-4,
		FitIntercept: true,
	}
}

// Validate checks the option values.
func (o Options) Validate() error {
	if !(o.Alpha >= 0) {
		return ErrInvalidAlpha
	}
	if o.MaxIter <= 0 {
		return ErrInvalidMaxIter
	}
	if !(o.Tol > 0) {
		return ErrInvalidTolerance
	}
	return nil
}

// Result holds a fitted model.
type Result struct {
	Coef       []float64
	Intercept  float64
	Iterations int
	DualGap    float64
	Converged  bool
}

// Fit solves the Lasso problem for design x (rows×features) and target y.
// Non-convergence within MaxIter is not an error; inspect Result.Converged.
func Fit(x mat.Matrix, y mat.Vector, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	rows, features := x.Dims()
	if rows == 0 || features == 0 {
		return nil, ErrEmptyDesign
	}
	if y.Len() != rows {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, y.Len(), rows)
	}

	// Column-major copy; every update walks a single feature column.
	cols := make([][]float64, features)
	offsets := make([]float64, features)
	for j := range cols {
		cols[j] = mat.Col(nil, j, x)
		if opts.FitIntercept {
			offsets[j] = floats.Sum(cols[j]) / float64(rows)
			floats.AddConst(-offsets[j], cols[j])
		}
	}

	target := make([]float64, rows)
	for i := range target {
		target[i] = y.AtVec(i)
	}
	var yOffset float64
	if opts.FitIntercept {
		yOffset = floats.Sum(target) / float64(rows)
		floats.AddConst(-yOffset, target)
	}

	res := descend(cols, target, opts.Alpha*float64(rows), opts.Tol, opts.MaxIter)
	if opts.FitIntercept {
		res.Intercept = yOffset - floats.Dot(offsets, res.Coef)
	}
	return res, nil
}

func descend(cols [][]float64, y []float64, alpha, tol float64, maxIter int) *Result {
	features := len(cols)
	w := make([]float64, features)
	residual := make([]float64, len(y))
	copy(residual, y)

	norms := make([]float64, features)
	for j, col := range cols {
		norms[j] = floats.Dot(col, col)
	}

	gapTol := tol * floats.Dot(y, y)
	res := &Result{Coef: w}
	if gapTol == 0 {
		// A zero target is fitted exactly by w = 0.
		res.Converged = true
		return res
	}

	for iter := 0; iter < maxIter; iter++ {
		res.Iterations = iter + 1
		var wMax, dwMax float64

		for j, col := range cols {
			if norms[j] == 0 {
				continue
			}
			prev := w[j]
			if prev != 0 {
				floats.AddScaled(residual, prev, col)
			}

			rho := floats.Dot(col, residual)
			w[j] = softThreshold(rho, alpha) / norms[j]

			if w[j] != 0 {
				floats.AddScaled(residual, -w[j], col)
			}

			dwMax = math.Max(dwMax, math.Abs(w[j]-prev))
			wMax = math.Max(wMax, math.Abs(w[j]))
		}

		if wMax == 0 || dwMax/wMax < tol || iter == maxIter-1 {
			res.DualGap = dualityGap(cols, y, residual, w, alpha)
			if res.DualGap < gapTol {
				res.Converged = true
				break
			}
		}
	}
	return res
}

func softThreshold(v, t float64) float64 {
	switch {
	case v > t:
		return v - t
	case v < -t:
		return v + t
	default:
		return 0
	}
}

func dualityGap(cols [][]float64, y, residual, w []float64, alpha float64) float64 {
	var dualNorm float64
	for _, col := range cols {
		dualNorm = math.Max(dualNorm, math.Abs(floats.Dot(col, residual)))
	}

	rNorm2 := floats.Dot(residual, residual)
	scale := 1.0
	var gap float64
	if dualNorm > alpha {
		scale = alpha / dualNorm
		gap = 0.5 * (rNorm2 + rNorm2*scale*scale)
	} else {
		gap = rNorm2
	}

	var l1 float64
	for _, v := range w {
		l1 += math.Abs(v)
	}
	return gap + alpha*l1 - scale*floats.Dot(residual, y)
}
