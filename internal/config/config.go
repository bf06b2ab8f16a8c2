// Package config loads sweep settings from YAML files and environment
// variables. Command line flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/regfish7/anomaly/experiment"
	"github.com/regfish7/anomaly/internal/logging"
	"github.com/regfish7/anomaly/mmv/core"
	"github.com/regfish7/anomaly/mmv/recovery"
)

// Config contains every setting of an mmvsweep invocation.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Sweep   SweepConfig   `yaml:"sweep"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// Distribution is a normal distribution given by mean and standard deviation.
type Distribution struct {
	Mu    float64 `yaml:"mu"`
	Sigma float64 `yaml:"sigma"`
}

// ModelConfig describes the signal population. One sweep runs per entry
// of K.
type ModelConfig struct {
	N         int          `yaml:"n"`
	K         []int        `yaml:"k"`
	Null      Distribution `yaml:"null"`
	Anomalous Distribution `yaml:"anomalous"`
}

// SweepConfig describes the grid, the algorithm and the stopping rule.
type SweepConfig struct {
	MaxM        int           `yaml:"max_m"`
	MaxT        int           `yaml:"max_t"`
	TimeVarying bool          `yaml:"time_varying"`
	Algorithm   string        `yaml:"algorithm"`
	Confidence  bool          `yaml:"confidence"`
	Threshold   float64       `yaml:"threshold"`
	Alpha       float64       `yaml:"alpha,omitempty"`
	Seed        uint64        `yaml:"seed"`
	Workers     int           `yaml:"workers"`
	BatchSize   int           `yaml:"batch"`
	CellTimeout time.Duration `yaml:"cell_timeout,omitempty"`
}

// OutputConfig selects where results go.
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	Heatmap     bool   `yaml:"heatmap"`
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

// LoggingConfig sets the log verbosity: "info", "debug" or "trace".
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the reference experiment for K=5 and K=10.
func Default() *Config {
	sweep := experiment.DefaultConfig()
	model := sweep.Model
	return &Config{
		Model: ModelConfig{
			N:         model.N,
			K:         []int{5, 10},
			Null:      Distribution{Mu: model.Mu0, Sigma: model.Sigma0},
			Anomalous: Distribution{Mu: model.Mu1, Sigma: model.Sigma1},
		},
		Sweep: SweepConfig{
			MaxM:        sweep.MaxM,
			MaxT:        sweep.MaxT,
			TimeVarying: sweep.TimeVarying,
			Algorithm:   sweep.Algorithm,
			Confidence:  sweep.Confidence,
			Threshold:   sweep.Threshold,
			Seed:        sweep.Seed,
			Workers:     sweep.Workers,
			BatchSize:   sweep.BatchSize,
		},
		Output:  OutputConfig{Dir: ".", Heatmap: true},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load returns the defaults, overlaid with path when it is non-empty, then
// with environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks every derived sweep configuration.
func (c *Config) Validate() error {
	if len(c.Model.K) == 0 {
		return fmt.Errorf("%w: at least one K is required", core.ErrConfiguration)
	}
	if _, err := recovery.Lookup(c.Sweep.Algorithm); err != nil {
		return err
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: invalid log level: %s (valid: info, debug, trace, warn)", core.ErrConfiguration, c.Logging.Level)
	}
	for _, sc := range c.SweepConfigs() {
		if err := sc.Validate(); err != nil {
			return fmt.Errorf("K=%d: %w", sc.Model.K, err)
		}
	}
	return nil
}

// SweepConfigs returns one experiment configuration per K, in order. Values
// are copied verbatim so Validate sees them unchanged.
func (c *Config) SweepConfigs() []experiment.Config {
	out := make([]experiment.Config, 0, len(c.Model.K))
	for _, k := range c.Model.K {
		out = append(out, experiment.Config{
			Model: core.Model{
				N:      c.Model.N,
				K:      k,
				Mu0:    c.Model.Null.Mu,
				Sigma0: c.Model.Null.Sigma,
				Mu1:    c.Model.Anomalous.Mu,
				Sigma1: c.Model.Anomalous.Sigma,
			},
			MaxM:        c.Sweep.MaxM,
			MaxT:        c.Sweep.MaxT,
			TimeVarying: c.Sweep.TimeVarying,
			Algorithm:   c.Sweep.Algorithm,
			Confidence:  c.Sweep.Confidence,
			Threshold:   c.Sweep.Threshold,
			Alpha:       c.Sweep.Alpha,
			Seed:        c.Sweep.Seed,
			Workers:     c.Sweep.Workers,
			BatchSize:   c.Sweep.BatchSize,
			CellTimeout: c.Sweep.CellTimeout,
		})
	}
	return out
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("MMV_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MMV_ALGORITHM"); v != "" {
		cfg.Sweep.Algorithm = v
	}
	if v := os.Getenv("MMV_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("MMV_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: MMV_WORKERS: %w", core.ErrConfiguration, err)
		}
		cfg.Sweep.Workers = n
	}
	if v := os.Getenv("MMV_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: MMV_SEED: %w", core.ErrConfiguration, err)
		}
		cfg.Sweep.Seed = n
	}
	return nil
}
