// Package results persists and renders sweep results.
package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/regfish7/anomaly/experiment"
)

// ErrMalformedCSV is returned when a matrix file is ragged or non-numeric.
var ErrMalformedCSV = errors.New("results: malformed matrix csv")

// Output kinds written by CSVSink.
const (
	KindRuns   = "runs"
	KindTimes  = "times"
	KindScores = "scores"
)

// CSVSink writes the trial-count, elapsed-time and score matrices of a
// sweep as comma-separated files under Dir.
type CSVSink struct {
	Dir string
}

// Record implements experiment.ResultSink.
func (s CSVSink) Record(res *experiment.Result) error {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("results: create %s: %w", dir, err)
	}
	for _, out := range []struct {
		kind string
		m    *mat.Dense
	}{
		{KindRuns, res.Trials},
		{KindTimes, res.Elapsed},
		{KindScores, res.Scores},
	} {
		if err := WriteMatrixFile(s.Path(res.Label, out.kind), out.m); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the file that Record writes for label and kind.
func (s CSVSink) Path(label experiment.Label, kind string) string {
	return filepath.Join(s.Dir, label.Stem(kind)+".csv")
}

// WriteMatrixFile writes m to path, one row per line.
func WriteMatrixFile(path string, m mat.Matrix) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("results: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("results: %w", cerr)
		}
	}()
	return WriteMatrix(f, m)
}

// WriteMatrix writes m as CSV using the shortest exact float formatting.
func WriteMatrix(w io.Writer, m mat.Matrix) error {
	rows, cols := m.Dims()
	cw := csv.NewWriter(w)
	record := make([]string, cols)
	for i := range rows {
		for j := range cols {
			record[j] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("results: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("results: %w", err)
	}
	return nil
}

// ReadMatrixFile reads a matrix written by WriteMatrixFile.
func ReadMatrixFile(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("results: %w", err)
	}
	defer f.Close()
	return ReadMatrix(f)
}

// ReadMatrix parses a rectangular numeric CSV.
func ReadMatrix(r io.Reader) (*mat.Dense, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrMalformedCSV)
	}
	rows, cols := len(records), len(records[0])
	data := make([]float64, 0, rows*cols)
	for i, rec := range records {
		if len(rec) != cols {
			return nil, fmt.Errorf("%w: row %d has %d fields, want %d", ErrMalformedCSV, i+1, len(rec), cols)
		}
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %d: %w", ErrMalformedCSV, i+1, j+1, err)
			}
			data = append(data, v)
		}
	}
	return mat.NewDense(rows, cols, data), nil
}

// Multi returns a sink that records into every sink and joins their errors.
func Multi(sinks ...experiment.ResultSink) experiment.ResultSink {
	return experiment.Sinks(sinks)
}
