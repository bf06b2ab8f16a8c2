// Package summary condenses sweep grids into scalar figures: moments of the
// success rates and the phase-transition curve of the smallest M that
// reaches a target rate for every T.
package summary

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Stats holds the moments and extremes of a set of values.
type Stats struct {
	Count    int
	Mean     float64
	Variance float64 // population variance
	Min      float64
	MinPos   int
	Max      float64
	MaxPos   int
}

func emptyStats() Stats {
	return Stats{Mean: math.NaN(), Variance: math.NaN(), Min: math.NaN(), Max: math.NaN(), MinPos: -1, MaxPos: -1}
}

// Streaming accumulates Stats across several blocks. NaN values are skipped
// but still advance the position counter.
type Streaming struct {
	n       int
	pos     int
	mean    float64
	m2      float64
	minVal  float64
	minPos  int
	maxVal  float64
	maxPos  int
	hasData bool
}

// NewStreaming returns an empty accumulator.
func NewStreaming() *Streaming {
	return &Streaming{}
}

// Update adds values to the running statistics.
func (s *Streaming) Update(values ...float64) {
	for _, x := range values {
		pos := s.pos
		s.pos++
		if math.IsNaN(x) {
			continue
		}
		s.n++

		// Welford update.
		delta := x - s.mean
		s.mean += delta / float64(s.n)
		s.m2 += delta * (x - s.mean)

		if !s.hasData {
			s.minVal, s.minPos = x, pos
			s.maxVal, s.maxPos = x, pos
			s.hasData = true
			continue
		}
		if x > s.maxVal {
			s.maxVal, s.maxPos = x, pos
		}
		if x < s.minVal {
			s.minVal, s.minPos = x, pos
		}
	}
}

// Result returns the statistics so far. An empty accumulator yields NaN
// moments and -1 positions.
func (s *Streaming) Result() Stats {
	if s.n == 0 {
		return emptyStats()
	}
	return Stats{
		Count:    s.n,
		Mean:     s.mean,
		Variance: s.m2 / float64(s.n),
		Min:      s.minVal,
		MinPos:   s.minPos,
		Max:      s.maxVal,
		MaxPos:   s.maxPos,
	}
}

// Reset clears all accumulated data.
func (s *Streaming) Reset() {
	*s = Streaming{}
}

// Calculate computes Stats of values in one pass.
func Calculate(values []float64) Stats {
	var s Streaming
	s.Update(values...)
	return s.Result()
}

// Grid computes Stats over every entry of m in row-major order, so
// positions decode as row = pos / cols, col = pos % cols.
func Grid(m mat.Matrix) Stats {
	rows, cols := m.Dims()
	var s Streaming
	for i := range rows {
		for j := range cols {
			s.Update(m.At(i, j))
		}
	}
	return s.Result()
}

// Transition returns, for every column t of a scores grid, the smallest
// 1-based row M whose score is at least level. Columns that never reach
// level report 0.
func Transition(scores mat.Matrix, level float64) []int {
	rows, cols := scores.Dims()
	out := make([]int, cols)
	for j := range cols {
		for i := range rows {
			if scores.At(i, j) >= level {
				out[j] = i + 1
				break
			}
		}
	}
	return out
}
