package experiment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/regfish7/anomaly/experiment/stopping"
	"github.com/regfish7/anomaly/mmv/core"
)

// Config is the immutable description of one sweep.
type Config struct {
	Model       core.Model
	MaxM        int
	MaxT        int
	TimeVarying bool
	Algorithm   string

	// Confidence selects the Jeffreys interval rule; Threshold is then the
	// interval width in (0,1). Otherwise Threshold is a trial count.
	Confidence bool
	Threshold  float64
	// Alpha is the interval significance level; zero means 0.05.
	Alpha float64

	Seed        uint64
	Workers     int
	BatchSize   int
	CellTimeout time.Duration
}

// DefaultConfig returns the reference experiment: N=100, K=5, null N(0,1),
// anomalous N(7,1), a 50×50 grid, time-varying operators, SOMP, and a 0.1
// wide Jeffreys interval.
func DefaultConfig() Config {
	return Config{
		Model:       core.DefaultModel(),
		MaxM:        50,
		MaxT:        50,
		TimeVarying: true,
		Algorithm:   "somp",
		Confidence:  true,
		Threshold:   0.1,
		Seed:        1,
		Workers:     1,
		BatchSize:   1,
	}
}

// Validate checks every field. Failures wrap core.ErrConfiguration.
func (c Config) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return err
	}
	if c.MaxM <= 0 {
		return fmt.Errorf("%w: M must be > 0: %d", core.ErrConfiguration, c.MaxM)
	}
	if c.MaxT <= 0 {
		return fmt.Errorf("%w: T must be > 0: %d", core.ErrConfiguration, c.MaxT)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0: %d", core.ErrConfiguration, c.Workers)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("%w: batch size must be >= 0: %d", core.ErrConfiguration, c.BatchSize)
	}
	if c.CellTimeout < 0 {
		return fmt.Errorf("%w: cell timeout must be >= 0: %s", core.ErrConfiguration, c.CellTimeout)
	}
	if c.Alpha != 0 && !(c.Alpha > 0 && c.Alpha < 1) {
		return fmt.Errorf("%w: alpha must be in (0,1): %g", core.ErrConfiguration, c.Alpha)
	}
	if _, err := stopping.New(c.Confidence, c.Threshold); err != nil {
		return err
	}
	return nil
}

func (c Config) workers() int {
	return max(c.Workers, 1)
}

func (c Config) batchSize() int {
	return max(c.BatchSize, 1)
}

// Label is the configuration tuple that names a sweep's outputs.
type Label struct {
	RunID       string
	Algorithm   string
	N, T, M, K  int
	Threshold   float64
	TimeVarying bool
}

// Label returns the output label of c. RunID is left empty.
func (c Config) Label() Label {
	return Label{
		Algorithm:   strings.ToLower(c.Algorithm),
		N:           c.Model.N,
		T:           c.MaxT,
		M:           c.MaxM,
		K:           c.Model.K,
		Threshold:   c.Threshold,
		TimeVarying: c.TimeVarying,
	}
}

// Stem returns the file name stem for an output kind, for example
// "somp_scores_N100_T50_M50_K5_runs0.1_tvTrue". An empty kind omits the
// kind segment.
func (l Label) Stem(kind string) string {
	var b strings.Builder
	b.WriteString(l.Algorithm)
	if kind != "" {
		b.WriteByte('_')
		b.WriteString(kind)
	}
	fmt.Fprintf(&b, "_N%d_T%d_M%d_K%d_runs%s_tv%s",
		l.N, l.T, l.M, l.K,
		strconv.FormatFloat(l.Threshold, 'g', -1, 64),
		titleBool(l.TimeVarying))
	return b.String()
}

func titleBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
