package recovery

import (
	"math/rand/v2"
	"testing"

	"github.com/regfish7/anomaly/mmv/core"
)

func benchmarkTrial(b *testing.B, rec Recoverer) {
	model := core.DefaultModel()
	rng := rand.New(rand.NewPCG(1, 2))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := RunTrial(rng, model, 20, 20, true, rec); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTrialOSGA(b *testing.B)  { benchmarkTrial(b, OSGA{}) }
func BenchmarkTrialLasso(b *testing.B) { benchmarkTrial(b, NewLasso()) }
func BenchmarkTrialSOMP(b *testing.B)  { benchmarkTrial(b, SOMP{}) }
