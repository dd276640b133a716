package mvt_test

import (
	"fmt"

	"github.com/chrissnell/mvtanalyzer/internal/mvt"
)

func ExampleAnalyze() {
	samples, err := mvt.NewSamples([]string{"P1", "P2", "P3"}, []float64{100, 110, 105})
	if err != nil {
		fmt.Println(err)
		return
	}

	a, err := mvt.Analyze(samples)
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, r := range a.Records {
		fmt.Printf("%s slope=%+.1f c=%.2f method=%s residual=%.1f\n",
			r.SegmentLabel, r.Slope, r.CPosition, r.CMethod, r.Residual)
	}
	fmt.Println("trend:", a.OverallTrend)

	// Output:
	// P1 → P2 slope=+10.0 c=0.00 method=INTERIOR_INTERPOLATION residual=0.0
	// P2 → P3 slope=-5.0 c=2.00 method=INTERIOR_INTERPOLATION residual=0.0
	// trend: GROWTH
}

func ExampleNormalize() {
	_, err := mvt.Normalize([]mvt.RawRow{{Label: "Q1", Value: "12"}, {Label: "Q2", Value: "n/a"}})
	fmt.Println(err)

	// Output:
	// at least 2 periods are required for analysis, got 1
}
