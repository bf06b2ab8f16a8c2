package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/algo-vecmath/cpu"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/regfish7/anomaly/experiment"
	"github.com/regfish7/anomaly/experiment/results"
	"github.com/regfish7/anomaly/internal/config"
	"github.com/regfish7/anomaly/internal/logging"
	"github.com/regfish7/anomaly/internal/metrics"
	"github.com/regfish7/anomaly/stats/summary"
)

// transitionLevel is the success rate reported by the phase-transition line.
const transitionLevel = 0.5

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sweep M and T for every K and write the result matrices",
		Long: `Run one sweep per K. Every sweep writes <alg>_runs_*.csv, <alg>_times_*.csv
and <alg>_scores_*.csv to --out and, unless --heatmap=false, draws the
score matrix on stdout.

Settings come from defaults, then --config, then MMV_* environment
variables, then flags.`,
		Args: cobra.NoArgs,
		RunE: runSweeps,
	}
	addModelFlags(cmd.Flags())
	addSweepFlags(cmd.Flags())

	f := cmd.Flags()
	f.String("config", "", "YAML configuration file")
	f.IntSlice("k", nil, "Number of anomalies; repeat for several sweeps (default 5,10)")
	f.String("out", "", "Output directory for CSV files")
	f.Bool("heatmap", true, "Draw each score matrix on stdout")
	f.String("metrics-file", "", "Write Prometheus metrics to this file when done")
	f.String("run-id", "", "Run identifier (default random UUID)")
	return cmd
}

func addModelFlags(f *pflag.FlagSet) {
	f.Int("n", 0, "Number of signals N (default 100)")
	f.Float64("mu0", 0, "Null distribution mean")
	f.Float64("sigma0", 0, "Null distribution standard deviation (default 1)")
	f.Float64("mu1", 0, "Anomalous distribution mean (default 7)")
	f.Float64("sigma1", 0, "Anomalous distribution standard deviation (default 1)")
	f.String("alg", "", "Recovery algorithm: osga, lasso, somp (default somp)")
	f.Bool("tv", true, "Draw a fresh sensing matrix per time step")
	f.Uint64("seed", 0, "Random seed (default 1)")
}

func addSweepFlags(f *pflag.FlagSet) {
	f.Int("max-m", 0, "Largest number of measurements M (default 50)")
	f.Int("max-t", 0, "Largest number of time steps T (default 50)")
	f.Bool("confidence", true, "Stop on Jeffreys interval width instead of a trial count")
	f.Float64("threshold", 0, "Interval width, or trial count with --confidence=false (default 0.1)")
	f.Float64("alpha", 0, "Interval significance level (default 0.05)")
	f.Int("workers", 0, "Cells evaluated in parallel (default 1)")
	f.Int("batch", 0, "Trials per parallel batch within a cell (default 1)")
	f.Duration("cell-timeout", 0, "Truncate a cell after this long (0 disables)")
}

// applyFlags copies every flag the user set onto cfg.
func applyFlags(f *pflag.FlagSet, cfg *config.Config) error {
	setters := map[string]func() error{
		"k":            func() (err error) { cfg.Model.K, err = f.GetIntSlice("k"); return err },
		"n":            func() (err error) { cfg.Model.N, err = f.GetInt("n"); return err },
		"mu0":          func() (err error) { cfg.Model.Null.Mu, err = f.GetFloat64("mu0"); return err },
		"sigma0":       func() (err error) { cfg.Model.Null.Sigma, err = f.GetFloat64("sigma0"); return err },
		"mu1":          func() (err error) { cfg.Model.Anomalous.Mu, err = f.GetFloat64("mu1"); return err },
		"sigma1":       func() (err error) { cfg.Model.Anomalous.Sigma, err = f.GetFloat64("sigma1"); return err },
		"alg":          func() (err error) { cfg.Sweep.Algorithm, err = f.GetString("alg"); return err },
		"tv":           func() (err error) { cfg.Sweep.TimeVarying, err = f.GetBool("tv"); return err },
		"seed":         func() (err error) { cfg.Sweep.Seed, err = f.GetUint64("seed"); return err },
		"max-m":        func() (err error) { cfg.Sweep.MaxM, err = f.GetInt("max-m"); return err },
		"max-t":        func() (err error) { cfg.Sweep.MaxT, err = f.GetInt("max-t"); return err },
		"confidence":   func() (err error) { cfg.Sweep.Confidence, err = f.GetBool("confidence"); return err },
		"threshold":    func() (err error) { cfg.Sweep.Threshold, err = f.GetFloat64("threshold"); return err },
		"alpha":        func() (err error) { cfg.Sweep.Alpha, err = f.GetFloat64("alpha"); return err },
		"workers":      func() (err error) { cfg.Sweep.Workers, err = f.GetInt("workers"); return err },
		"batch":        func() (err error) { cfg.Sweep.BatchSize, err = f.GetInt("batch"); return err },
		"cell-timeout": func() (err error) { cfg.Sweep.CellTimeout, err = f.GetDuration("cell-timeout"); return err },
		"out":          func() (err error) { cfg.Output.Dir, err = f.GetString("out"); return err },
		"heatmap":      func() (err error) { cfg.Output.Heatmap, err = f.GetBool("heatmap"); return err },
		"metrics-file": func() (err error) { cfg.Output.MetricsFile, err = f.GetString("metrics-file"); return err },
		"log-level":    func() (err error) { cfg.Logging.Level, err = f.GetString("log-level"); return err },
	}
	for name, apply := range setters {
		if f.Lookup(name) == nil || !f.Changed(name) {
			continue
		}
		if err := apply(); err != nil {
			return fmt.Errorf("flag --%s: %w", name, err)
		}
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := ""
	if cmd.Flags().Lookup("config") != nil {
		path, _ = cmd.Flags().GetString("config")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, level string) *slog.Logger {
	logger := logging.NewLogger(level, cmd.ErrOrStderr())
	f := cpu.DetectFeatures()
	logger.Debug("cpu features", "arch", f.Architecture, "sse2", f.HasSSE2, "avx2", f.HasAVX2,
		"neon", f.HasNEON, "generic", f.ForceGeneric)
	return logger
}

func runSweeps(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg.Logging.Level)

	runID, _ := cmd.Flags().GetString("run-id")
	if runID == "" {
		runID = uuid.NewString()
	}

	var reg *metrics.Metrics
	if cfg.Output.MetricsFile != "" {
		reg = metrics.New()
	}

	out := cmd.OutOrStdout()
	for _, sc := range cfg.SweepConfigs() {
		sinks := []experiment.ResultSink{results.CSVSink{Dir: cfg.Output.Dir}}
		if cfg.Output.Heatmap {
			sinks = append(sinks, results.HeatmapSink{W: out})
		}
		opts := []experiment.Option{
			experiment.WithLogger(logger),
			experiment.WithRunID(runID),
			experiment.WithSink(results.Multi(sinks...)),
		}
		if reg != nil {
			opts = append(opts, experiment.WithObserver(reg.Observer(sc.Label().Algorithm)))
		}

		sw, err := experiment.New(sc, opts...)
		if err != nil {
			return err
		}
		start := time.Now()
		res, err := sw.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("K=%d: %w", sc.Model.K, err)
		}
		grid := summary.Grid(res.Scores)
		fmt.Fprintf(out, "K=%d: %d cells, mean score %.3f, %d truncated, %s -> %s\n",
			sc.Model.K, grid.Count, grid.Mean, res.Truncated(),
			time.Since(start).Round(time.Millisecond),
			results.CSVSink{Dir: cfg.Output.Dir}.Path(res.Label, results.KindScores))
		fmt.Fprintf(out, "K=%d: smallest M with score >= %g per T: %v\n",
			sc.Model.K, transitionLevel, summary.Transition(res.Scores, transitionLevel))
	}

	if reg != nil {
		if err := reg.WriteToTextfile(cfg.Output.MetricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		logger.Info("metrics written", "path", cfg.Output.MetricsFile)
	}
	return nil
}
