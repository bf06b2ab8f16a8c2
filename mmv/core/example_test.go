package core_test

import (
	"fmt"

	"github.com/regfish7/anomaly/mmv/core"
)

func ExampleApplyModelOptions() {
	m := core.ApplyModelOptions(
		core.WithSignals(200),
		core.WithAnomalies(10),
	)

	fmt.Printf("N=%d K=%d null=N(%g,%g) anomalous=N(%g,%g)\n", m.N, m.K, m.Mu0, m.Sigma0, m.Mu1, m.Sigma1)

	// Output:
	// N=200 K=10 null=N(0,1) anomalous=N(7,1)
}
