package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/regfish7/anomaly/experiment"
	"github.com/regfish7/anomaly/experiment/results"
	"github.com/regfish7/anomaly/stats/summary"
)

func newHeatmapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heatmap FILE",
		Short: "Render a scores CSV as a terminal heatmap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scores, err := results.ReadMatrixFile(args[0])
			if err != nil {
				return err
			}
			k, _ := cmd.Flags().GetInt("k")
			out := cmd.OutOrStdout()
			if _, err := io.WriteString(out, results.RenderHeatmap(lipgloss.NewRenderer(out), experiment.Label{K: k}, scores)); err != nil {
				return err
			}
			grid := summary.Grid(scores)
			_, err = fmt.Fprintf(out, "mean %.3f, min %.3f, max %.3f, M(score >= %g) per T: %v\n",
				grid.Mean, grid.Min, grid.Max, transitionLevel, summary.Transition(scores, transitionLevel))
			return err
		},
	}
	cmd.Flags().Int("k", 0, "K shown in the title")
	return cmd
}
