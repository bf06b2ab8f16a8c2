// Command mmvsweep measures how well joint-sparse recovery algorithms find
// the anomalous signals of a multiple-measurement-vector model.
//
// Usage:
//
//	mmvsweep run [flags]           sweep M and T for every K, write CSVs
//	mmvsweep trial [flags]         run a single recovery trial
//	mmvsweep heatmap FILE [flags]  render a scores CSV in the terminal
//	mmvsweep algorithms            list recovery algorithms
//	mmvsweep version               print version and SIMD features
//
// Examples:
//
//	mmvsweep run
//	mmvsweep run --alg osga --k 5 --max-m 20 --max-t 20 --workers 8
//	mmvsweep run --config sweep.yaml --metrics-file mmv.prom
//	mmvsweep run --confidence=false --threshold 200 --out results/
//	mmvsweep trial --alg lasso --m 30 --t 10 --seed 4
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/cwbudde/algo-vecmath/cpu"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mmvsweep",
		Short: "Monte-Carlo sweeps of sparse anomaly recovery",
		Long: `mmvsweep estimates how often OSGA, Lasso and SOMP recover the exact
set of anomalous signals from compressed measurements, for every number
of measurements M and time steps T up to a limit.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if generic, _ := cmd.Flags().GetBool("force-generic"); generic {
				cpu.SetForcedFeatures(cpu.Features{ForceGeneric: true, Architecture: runtime.GOARCH})
			}
		},
	}

	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug, trace, warn")
	rootCmd.PersistentFlags().Bool("force-generic", false, "Disable SIMD kernels")

	rootCmd.AddCommand(
		newVersionCmd(),
		newAlgorithmsCmd(),
		newRunCmd(),
		newTrialCmd(),
		newHeatmapCmd(),
	)
	return rootCmd
}
