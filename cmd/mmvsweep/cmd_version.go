package main

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath/cpu"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and SIMD features",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mmvsweep version %s\n", version)
			fmt.Fprintf(out, "simd: %s\n", describeFeatures(cpu.DetectFeatures()))
		},
	}
}

func describeFeatures(f cpu.Features) string {
	if f.ForceGeneric {
		return f.Architecture + " generic (forced)"
	}
	return fmt.Sprintf("%s sse2=%t avx2=%t neon=%t", f.Architecture, f.HasSSE2, f.HasAVX2, f.HasNEON)
}
