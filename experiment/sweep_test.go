package experiment

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/regfish7/anomaly/mmv/core"
	"github.com/regfish7/anomaly/mmv/recovery"
	"github.com/regfish7/anomaly/mmv/sensing"
	"github.com/regfish7/anomaly/mmv/signal"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Model = core.ApplyModelOptions(core.WithSignals(20), core.WithAnomalies(2))
	cfg.MaxM = 3
	cfg.MaxT = 3
	cfg.Algorithm = "osga"
	cfg.Confidence = false
	cfg.Threshold = 5
	cfg.Seed = 42
	return cfg
}

type failingRecoverer struct {
	failAtM int
	err     error
}

func (failingRecoverer) Name() string { return "failing" }

func (f failingRecoverer) Recover(x mat.Matrix, op *sensing.Operator, k int) (signal.Support, error) {
	if m, _ := op.Dims(); m == f.failAtM {
		return nil, f.err
	}
	return recovery.OSGA{}.Recover(x, op, k)
}

type slowRecoverer struct{ delay time.Duration }

func (slowRecoverer) Name() string { return "slow" }

func (s slowRecoverer) Recover(x mat.Matrix, op *sensing.Operator, k int) (signal.Support, error) {
	time.Sleep(s.delay)
	return recovery.OSGA{}.Recover(x, op, k)
}

type countingObserver struct {
	trials    atomic.Int64
	successes atomic.Int64
	cells     atomic.Int64
}

func (c *countingObserver) TrialDone(_, _ int, success bool, _ time.Duration) {
	c.trials.Add(1)
	if success {
		c.successes.Add(1)
	}
}

func (c *countingObserver) CellDone(CellStats) { c.cells.Add(1) }

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero M", func(c *Config) { c.MaxM = 0 }},
		{"negative T", func(c *Config) { c.MaxT = -1 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
		{"negative batch", func(c *Config) { c.BatchSize = -1 }},
		{"negative timeout", func(c *Config) { c.CellTimeout = -time.Second }},
		{"alpha one", func(c *Config) { c.Alpha = 1 }},
		{"bad model", func(c *Config) { c.Model.K = c.Model.N + 1 }},
		{"fractional cutoff", func(c *Config) { c.Confidence = false; c.Threshold = 2.5 }},
		{"wide interval", func(c *Config) { c.Threshold = 1.5 }},
	}
	require.NoError(t, DefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrConfiguration)
		})
	}
}

func TestLabelStem(t *testing.T) {
	label := DefaultConfig().Label()
	assert.Equal(t, "somp_scores_N100_T50_M50_K5_runs0.1_tvTrue", label.Stem("scores"))
	assert.Equal(t, "somp_N100_T50_M50_K5_runs0.1_tvTrue", label.Stem(""))

	cfg := smallConfig()
	cfg.Threshold = 100
	cfg.TimeVarying = false
	assert.Equal(t, "osga_runs_N20_T3_M3_K2_runs100_tvFalse", cfg.Label().Stem("runs"))
}

func TestNewRejectsBadInput(t *testing.T) {
	cfg := smallConfig()
	cfg.Algorithm = "nope"
	_, err := New(cfg)
	assert.ErrorIs(t, err, core.ErrConfiguration)

	cfg = smallConfig()
	cfg.Threshold = 2.5
	_, err = New(cfg)
	assert.ErrorIs(t, err, core.ErrConfiguration)

	cfg = smallConfig()
	cfg.Confidence = true
	cfg.Threshold = 3
	_, err = New(cfg)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestSweepFixedCount(t *testing.T) {
	sw, err := New(smallConfig(), WithRunID("run-1"))
	require.NoError(t, err)

	res, err := sw.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.Label.RunID)
	assert.Equal(t, "osga", res.Label.Algorithm)
	rows, cols := res.Scores.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
	for m := 1; m <= 3; m++ {
		for tt := 1; tt <= 3; tt++ {
			cs := res.Cell(m, tt)
			assert.Equal(t, m, cs.M)
			assert.Equal(t, tt, cs.T)
			assert.Equal(t, 5, cs.Trials)
			assert.False(t, cs.Truncated)
			assert.InDelta(t, float64(cs.Successes)/5, res.Scores.At(m-1, tt-1), 1e-15)
			assert.Equal(t, 5.0, res.Trials.At(m-1, tt-1))
			assert.GreaterOrEqual(t, res.Elapsed.At(m-1, tt-1), 0.0)
		}
	}
}

func TestSweepReproducibleAcrossWorkers(t *testing.T) {
	cfg := smallConfig()
	cfg.Confidence = true
	cfg.Threshold = 0.3

	run := func(workers int) *Result {
		c := cfg
		c.Workers = workers
		sw, err := New(c)
		require.NoError(t, err)
		res, err := sw.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	serial := run(1)
	parallel := run(4)
	assert.True(t, mat.Equal(serial.Trials, parallel.Trials))
	assert.True(t, mat.Equal(serial.Scores, parallel.Scores))
}

func TestSweepBatches(t *testing.T) {
	cfg := smallConfig()
	cfg.BatchSize = 4
	cfg.Threshold = 6

	run := func() *Result {
		sw, err := New(cfg)
		require.NoError(t, err)
		res, err := sw.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	first := run()
	for _, cs := range first.Cells {
		assert.Equal(t, 8, cs.Trials, "cell %d,%d", cs.M, cs.T)
	}
	assert.True(t, mat.Equal(first.Scores, run().Scores))
}

func TestSweepZeroAnomalies(t *testing.T) {
	cfg := smallConfig()
	cfg.Model.K = 0
	for _, alg := range recovery.Names() {
		cfg.Algorithm = alg
		sw, err := New(cfg)
		require.NoError(t, err)
		res, err := sw.Run(context.Background())
		require.NoError(t, err, alg)
		for _, cs := range res.Cells {
			assert.Equal(t, 1.0, cs.SuccessRate, alg)
		}
	}
}

func TestSweepTrialErrorAborts(t *testing.T) {
	sw, err := New(smallConfig(), WithRecoverer(failingRecoverer{failAtM: 2, err: core.ErrNumericalDegeneracy}))
	require.NoError(t, err)

	res, err := sw.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, core.ErrNumericalDegeneracy)
	assert.Contains(t, err.Error(), "M=2")
}

func TestSweepContextCancelled(t *testing.T) {
	sw, err := New(smallConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sw.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = sw.RunCell(ctx, 1, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunCellTimeout(t *testing.T) {
	cfg := smallConfig()
	cfg.Threshold = 1000
	cfg.CellTimeout = 20 * time.Millisecond

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sw, err := New(cfg, WithRecoverer(slowRecoverer{delay: 5 * time.Millisecond}), WithLogger(logger))
	require.NoError(t, err)

	cs, err := sw.RunCell(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.True(t, cs.Truncated)
	assert.GreaterOrEqual(t, cs.Trials, 1)
	assert.Less(t, cs.Trials, 1000)
	assert.Contains(t, logs.String(), "cell truncated")
}

func TestRunCellOutOfRange(t *testing.T) {
	sw, err := New(smallConfig())
	require.NoError(t, err)
	for _, c := range [][2]int{{0, 1}, {1, 0}, {4, 1}, {1, 4}} {
		_, err := sw.RunCell(context.Background(), c[0], c[1])
		assert.Error(t, err, "cell %v", c)
	}
}

func TestSweepObserverAndSink(t *testing.T) {
	obs := &countingObserver{}
	var recorded []*Result
	sink := SinkFunc(func(res *Result) error {
		recorded = append(recorded, res)
		return nil
	})

	cfg := smallConfig()
	cfg.Workers = 3
	sw, err := New(cfg, WithObserver(obs), WithSink(sink))
	require.NoError(t, err)

	res, err := sw.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Same(t, res, recorded[0])

	var trials, successes int
	for _, cs := range res.Cells {
		trials += cs.Trials
		successes += cs.Successes
	}
	assert.Equal(t, int64(9), obs.cells.Load())
	assert.Equal(t, int64(trials), obs.trials.Load())
	assert.Equal(t, int64(successes), obs.successes.Load())
}

func TestSweepSinkError(t *testing.T) {
	boom := errors.New("disk full")
	ok := SinkFunc(func(*Result) error { return nil })
	bad := SinkFunc(func(*Result) error { return boom })

	sw, err := New(smallConfig(), WithSink(ok), WithSink(bad))
	require.NoError(t, err)

	res, err := sw.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.NotNil(t, res)
}

func TestSweepLogsRows(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	cfg := smallConfig()
	cfg.Workers = 2
	sw, err := New(cfg, WithLogger(logger))
	require.NoError(t, err)
	_, err = sw.Run(context.Background())
	require.NoError(t, err)

	out := logs.String()
	assert.Equal(t, 3, strings.Count(out, "row complete"))
	assert.Contains(t, out, "sweep finished")
	assert.NotContains(t, out, "cell done")
}
