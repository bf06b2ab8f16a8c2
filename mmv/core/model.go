package core

import "fmt"

// Model describes the Gaussian null/anomalous generative model.
//
// N rows of a signal are drawn per time step; K of them (the support) come
// from Normal(Mu1, Sigma1) and the rest from Normal(Mu0, Sigma0). Sigma
// values are standard deviations.
type Model struct {
	N      int
	K      int
	Mu0    float64
	Sigma0 float64
	Mu1    float64
	Sigma1 float64
}

// ModelOption mutates a Model.
type ModelOption func(*Model)

// DefaultModel returns the parameters of the reference experiment:
// 100 signals, 5 anomalies, null N(0,1) and anomalous N(7,1).
func DefaultModel() Model {
	return Model{
		N:      100,
		K:      5,
		Mu0:    0,
		Sigma0: 1,
		Mu1:    7,
		Sigma1: 1,
	}
}

// WithSignals sets the number of random variables N.
func WithSignals(n int) ModelOption {
	return func(m *Model) {
		if n > 0 {
			m.N = n
		}
	}
}

// WithAnomalies sets the support size K.
func WithAnomalies(k int) ModelOption {
	return func(m *Model) {
		if k >= 0 {
			m.K = k
		}
	}
}

// WithNull sets the null distribution parameters.
func WithNull(mu, sigma float64) ModelOption {
	return func(m *Model) {
		if sigma > 0 {
			m.Mu0, m.Sigma0 = mu, sigma
		}
	}
}

// WithAnomalous sets the anomalous distribution parameters.
func WithAnomalous(mu, sigma float64) ModelOption {
	return func(m *Model) {
		if sigma > 0 {
			m.Mu1, m.Sigma1 = mu, sigma
		}
	}
}

// ApplyModelOptions applies zero or more options to the default model.
func ApplyModelOptions(opts ...ModelOption) Model {
	m := DefaultModel()
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Validate reports whether the model parameters are usable. Failures wrap
// ErrConfiguration.
func (m Model) Validate() error {
	if m.N <= 0 {
		return fmt.Errorf("%w: N must be > 0: %d", ErrConfiguration, m.N)
	}
	if m.K < 0 {
		return fmt.Errorf("%w: K must be >= 0: %d", ErrConfiguration, m.K)
	}
	if m.K > m.N {
		return fmt.Errorf("%w: K (%d) must not exceed N (%d)", ErrConfiguration, m.K, m.N)
	}
	if !(m.Sigma0 > 0) {
		return fmt.Errorf("%w: sigma0 must be > 0: %g", ErrConfiguration, m.Sigma0)
	}
	if !(m.Sigma1 > 0) {
		return fmt.Errorf("%w: sigma1 must be > 0: %g", ErrConfiguration, m.Sigma1)
	}
	return nil
}
