package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regfish7/anomaly/experiment"
	"github.com/regfish7/anomaly/mmv/core"
)

func TestObserverCounts(t *testing.T) {
	m := New()
	obs := m.Observer("osga")

	obs.TrialDone(1, 1, true, time.Millisecond)
	obs.TrialDone(1, 1, false, time.Millisecond)
	obs.TrialDone(1, 2, true, time.Millisecond)
	obs.CellDone(experiment.CellStats{M: 1, T: 1, Trials: 2, Elapsed: time.Second})
	obs.CellDone(experiment.CellStats{M: 1, T: 2, Trials: 1, Truncated: true})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TrialsTotal.WithLabelValues("osga", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TrialsTotal.WithLabelValues("osga", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CellsTotal.WithLabelValues("osga", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CellsTotal.WithLabelValues("osga", "true")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CellTrials))
}

func TestSeparateRegistries(t *testing.T) {
	a, b := New(), New()
	a.Observer("somp").TrialDone(1, 1, true, 0)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.TrialsTotal.WithLabelValues("somp", OutcomeSuccess)))
	assert.Equal(t, 0, testutil.CollectAndCount(b.TrialsTotal))
}

func TestSweepIntegration(t *testing.T) {
	cfg := experiment.DefaultConfig()
	cfg.Model = core.ApplyModelOptions(core.WithSignals(20), core.WithAnomalies(2))
	cfg.MaxM, cfg.MaxT = 2, 2
	cfg.Algorithm = "osga"
	cfg.Confidence = false
	cfg.Threshold = 3
	cfg.Workers = 2

	m := New()
	sw, err := experiment.New(cfg, experiment.WithObserver(m.Observer("osga")))
	require.NoError(t, err)
	_, err = sw.Run(context.Background())
	require.NoError(t, err)

	total := testutil.ToFloat64(m.TrialsTotal.WithLabelValues("osga", OutcomeSuccess)) +
		testutil.ToFloat64(m.TrialsTotal.WithLabelValues("osga", OutcomeFailure))
	assert.Equal(t, 12.0, total)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.CellsTotal.WithLabelValues("osga", "false")))
}

func TestWriteToTextfile(t *testing.T) {
	m := New()
	m.Observer("lasso").TrialDone(3, 4, true, time.Millisecond)

	path := filepath.Join(t.TempDir(), "mmv.prom")
	require.NoError(t, m.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, `mmv_trials_total{algorithm="lasso",outcome="success"} 1`), out)
	assert.Contains(t, out, "mmv_trial_duration_seconds_bucket")
}
