package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regfish7/anomaly/mmv/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mmv.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 100, cfg.Model.N)
	assert.Equal(t, []int{5, 10}, cfg.Model.K)
	assert.Equal(t, Distribution{Mu: 0, Sigma: 1}, cfg.Model.Null)
	assert.Equal(t, Distribution{Mu: 7, Sigma: 1}, cfg.Model.Anomalous)
	assert.Equal(t, 50, cfg.Sweep.MaxM)
	assert.Equal(t, 50, cfg.Sweep.MaxT)
	assert.Equal(t, "somp", cfg.Sweep.Algorithm)
	assert.True(t, cfg.Sweep.Confidence)
	assert.True(t, cfg.Sweep.TimeVarying)
	assert.Equal(t, 0.1, cfg.Sweep.Threshold)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
model:
  n: 40
  k: [3]
  anomalous: {mu: 4, sigma: 0.5}
sweep:
  max_m: 10
  algorithm: osga
  confidence: false
  threshold: 200
  workers: 4
  cell_timeout: 30s
logging:
  level: debug
`)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 40, cfg.Model.N)
	assert.Equal(t, []int{3}, cfg.Model.K)
	assert.Equal(t, Distribution{Mu: 4, Sigma: 0.5}, cfg.Model.Anomalous)
	assert.Equal(t, Distribution{Mu: 0, Sigma: 1}, cfg.Model.Null)
	assert.Equal(t, 10, cfg.Sweep.MaxM)
	assert.Equal(t, 50, cfg.Sweep.MaxT)
	assert.Equal(t, "osga", cfg.Sweep.Algorithm)
	assert.Equal(t, 30*time.Second, cfg.Sweep.CellTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFromFile(writeConfig(t, "model: [unclosed"))
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MMV_LOG_LEVEL", "trace")
	t.Setenv("MMV_ALGORITHM", "lasso")
	t.Setenv("MMV_WORKERS", "8")
	t.Setenv("MMV_SEED", "99")
	t.Setenv("MMV_OUTPUT_DIR", "/tmp/out")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "trace", cfg.Logging.Level)
	assert.Equal(t, "lasso", cfg.Sweep.Algorithm)
	assert.Equal(t, 8, cfg.Sweep.Workers)
	assert.Equal(t, uint64(99), cfg.Sweep.Seed)
	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
}

func TestLoadEnvInvalid(t *testing.T) {
	t.Setenv("MMV_WORKERS", "many")
	_, err := Load("")
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no K", func(c *Config) { c.Model.K = nil }},
		{"K above N", func(c *Config) { c.Model.K = []int{5, 101} }},
		{"unknown algorithm", func(c *Config) { c.Sweep.Algorithm = "magic" }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"zero grid", func(c *Config) { c.Sweep.MaxT = 0 }},
		{"negative sigma", func(c *Config) { c.Model.Null.Sigma = -1 }},
		{"bad threshold", func(c *Config) { c.Sweep.Threshold = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), core.ErrConfiguration)
		})
	}
}

func TestSweepConfigs(t *testing.T) {
	cfg := Default()
	cfg.Sweep.Seed = 7
	sweeps := cfg.SweepConfigs()
	require.Len(t, sweeps, 2)
	for i, k := range []int{5, 10} {
		assert.Equal(t, k, sweeps[i].Model.K)
		assert.Equal(t, 100, sweeps[i].Model.N)
		assert.Equal(t, 7.0, sweeps[i].Model.Mu1)
		assert.Equal(t, uint64(7), sweeps[i].Seed)
		assert.Equal(t, "somp", sweeps[i].Algorithm)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Sweep.CellTimeout = time.Minute
	data, err := cfg.Marshal()
	require.NoError(t, err)

	got, err := LoadFromFile(writeConfig(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
