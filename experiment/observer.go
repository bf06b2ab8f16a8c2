package experiment

import (
	"errors"
	"time"
)

// Observer receives progress events. Calls arrive from worker goroutines
// and must be safe for concurrent use.
type Observer interface {
	TrialDone(m, t int, success bool, d time.Duration)
	CellDone(cs CellStats)
}

// ResultSink persists the result of a completed sweep.
type ResultSink interface {
	Record(res *Result) error
}

// Observers fans events out to every non-nil member.
type Observers []Observer

// TrialDone implements Observer.
func (o Observers) TrialDone(m, t int, success bool, d time.Duration) {
	for _, obs := range o {
		if obs != nil {
			obs.TrialDone(m, t, success, d)
		}
	}
}

// CellDone implements Observer.
func (o Observers) CellDone(cs CellStats) {
	for _, obs := range o {
		if obs != nil {
			obs.CellDone(cs)
		}
	}
}

// Sinks records into every non-nil member and joins their errors.
type Sinks []ResultSink

// Record implements ResultSink.
func (s Sinks) Record(res *Result) error {
	var errs []error
	for _, sink := range s {
		if sink == nil {
			continue
		}
		if err := sink.Record(res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SinkFunc adapts a function to ResultSink.
type SinkFunc func(res *Result) error

// Record implements ResultSink.
func (f SinkFunc) Record(res *Result) error { return f(res) }
