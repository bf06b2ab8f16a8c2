package summary_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/regfish7/anomaly/stats/summary"
)

func ExampleTransition() {
	scores := mat.NewDense(3, 2, []float64{
		0.1, 0.3,
		0.4, 0.8,
		0.9, 1.0,
	})
	fmt.Println(summary.Transition(scores, 0.5))

	// Output:
	// [3 2]
}

func ExampleStreaming() {
	s := summary.NewStreaming()
	s.Update(0, 1)
	s.Update(0.5)
	st := s.Result()
	fmt.Printf("n=%d mean=%.2f max@%d\n", st.Count, st.Mean, st.MaxPos)

	// Output:
	// n=3 mean=0.50 max@1
}
