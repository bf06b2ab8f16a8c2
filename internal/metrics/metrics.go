// Package metrics exports sweep progress as Prometheus metrics.
//
// Each Metrics value owns its registry, so several sweeps in one process (or
// one test) never collide. Call Observer to obtain an experiment.Observer
// bound to an algorithm label, and WriteToTextfile to dump the registry in
// the node-exporter textfile format once the run ends.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/regfish7/anomaly/experiment"
)

const namespace = "mmv"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the sweep collectors.
type Metrics struct {
	registry *prometheus.Registry

	// TrialsTotal counts trials. Labels: algorithm, outcome.
	TrialsTotal *prometheus.CounterVec

	// TrialDurationSeconds measures single trial latency. Labels: algorithm.
	TrialDurationSeconds *prometheus.HistogramVec

	// CellsTotal counts finished cells. Labels: algorithm, truncated.
	CellsTotal *prometheus.CounterVec

	// CellDurationSeconds measures cell wall time. Labels: algorithm.
	CellDurationSeconds *prometheus.HistogramVec

	// CellTrials records how many trials each cell needed. Labels: algorithm.
	CellTrials *prometheus.HistogramVec
}

// New registers a fresh set of collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		TrialsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_total",
			Help:      "Recovery trials by algorithm and outcome",
		}, []string{"algorithm", "outcome"}),
		TrialDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trial_duration_seconds",
			Help:      "Latency of a single recovery trial",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"algorithm"}),
		CellsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_total",
			Help:      "Finished sweep cells by algorithm and truncation",
		}, []string{"algorithm", "truncated"}),
		CellDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cell_duration_seconds",
			Help:      "Wall time spent on one (M, T) cell",
			Buckets:   prometheus.ExponentialBuckets(1e-3, 4, 10),
		}, []string{"algorithm"}),
		CellTrials: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cell_trials",
			Help:      "Trials needed before a cell's stopping rule halted",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"algorithm"}),
	}
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteToTextfile writes the registry to path atomically.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Observer returns an experiment.Observer that records under algorithm.
func (m *Metrics) Observer(algorithm string) experiment.Observer {
	return &observer{
		success:  m.TrialsTotal.WithLabelValues(algorithm, OutcomeSuccess),
		failure:  m.TrialsTotal.WithLabelValues(algorithm, OutcomeFailure),
		trialDur: m.TrialDurationSeconds.WithLabelValues(algorithm),
		cells:    m.CellsTotal,
		cellDur:  m.CellDurationSeconds.WithLabelValues(algorithm),
		trials:   m.CellTrials.WithLabelValues(algorithm),
		alg:      algorithm,
	}
}

type observer struct {
	success, failure prometheus.Counter
	trialDur         prometheus.Observer
	cells            *prometheus.CounterVec
	cellDur          prometheus.Observer
	trials           prometheus.Observer
	alg              string
}

func (o *observer) TrialDone(_, _ int, success bool, d time.Duration) {
	if success {
		o.success.Inc()
	} else {
		o.failure.Inc()
	}
	o.trialDur.Observe(d.Seconds())
}

func (o *observer) CellDone(cs experiment.CellStats) {
	o.cells.WithLabelValues(o.alg, strconv.FormatBool(cs.Truncated)).Inc()
	o.cellDur.Observe(cs.Elapsed.Seconds())
	o.trials.Observe(float64(cs.Trials))
}
