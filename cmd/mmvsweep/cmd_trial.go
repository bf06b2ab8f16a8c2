package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/regfish7/anomaly/mmv/recovery"
)

func newTrialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trial",
		Short: "Run a single recovery trial per K and print the supports",
		Args:  cobra.NoArgs,
		RunE:  runTrials,
	}
	addModelFlags(cmd.Flags())
	f := cmd.Flags()
	f.IntSlice("k", nil, "Number of anomalies; repeat for several trials (default 5,10)")
	f.Int("m", 20, "Measurements per time step")
	f.Int("t", 10, "Time steps")
	return cmd
}

func runTrials(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg.Logging.Level)
	m, _ := cmd.Flags().GetInt("m")
	t, _ := cmd.Flags().GetInt("t")
	if m <= 0 || t <= 0 {
		return fmt.Errorf("--m and --t must be positive: m=%d t=%d", m, t)
	}

	rec, err := recovery.Lookup(cfg.Sweep.Algorithm)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewPCG(cfg.Sweep.Seed, 0))
	out := cmd.OutOrStdout()
	for _, sc := range cfg.SweepConfigs() {
		tr, err := recovery.RunTrial(rng, sc.Model, t, m, sc.TimeVarying, rec)
		if err != nil {
			return fmt.Errorf("K=%d: %w", sc.Model.K, err)
		}
		logger.Debug("trial", "K", sc.Model.K, "m", m, "t", t, "success", tr.Success)
		fmt.Fprintf(out, "K=%d M=%d T=%d %s: truth %s predicted %s success=%t\n",
			sc.Model.K, m, t, rec.Name(), tr.Truth.Sorted(), tr.Predicted.Sorted(), tr.Success)
	}
	return nil
}
