package mvt

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MethodCounts tallies how many segments used each way of locating c
type MethodCounts struct {
	InteriorInterpolation int `json:"interior_interpolation"`
	MidpointTie           int `json:"midpoint_tie"`
	LeftEndpoint          int `json:"left_endpoint"`
	RightEndpoint         int `json:"right_endpoint"`
}

func (m *MethodCounts) add(method CMethod) {
	switch method {
	case InteriorInterpolation:
		m.InteriorInterpolation++
	case MidpointTie:
		m.MidpointTie++
	case LeftEndpoint:
		m.LeftEndpoint++
	case RightEndpoint:
		m.RightEndpoint++
	}
}

// Diagnostics summarizes the quality of the per-segment estimates and the overall trend
type Diagnostics struct {
	Residuals    []float64    `json:"residuals"`
	MeanSlope    float64      `json:"mean_slope"`
	MeanResidual float64      `json:"mean_residual"`
	MaxResidual  float64      `json:"max_residual"`
	Bracketed    int          `json:"bracketed"`
	Methods      MethodCounts `json:"methods"`
	Trend        Trend        `json:"trend"`
}

// Report aggregates residuals and the mean slope across all segments.
// An empty record set yields zero diagnostics with a STABLE trend.
func Report(records []MVTRecord) Diagnostics {
	var d Diagnostics
	if len(records) == 0 {
		return d
	}

	slopes := make([]float64, len(records))
	d.Residuals = make([]float64, len(records))
	for i, r := range records {
		slopes[i] = r.Slope
		d.Residuals[i] = r.Residual
		if r.Bracketed {
			d.Bracketed++
		}
		d.Methods.add(r.CMethod)
	}

	d.MeanSlope = stat.Mean(slopes, nil)
	d.MeanResidual = stat.Mean(d.Residuals, nil)
	d.MaxResidual = floats.Max(d.Residuals)
	d.Trend = ClassifyTrend(d.MeanSlope)

	return d
}

// OverallTrend classifies a series of segment slopes by their mean
func OverallTrend(slopes []float64) Trend {
	if len(slopes) == 0 {
		return TrendStable
	}
	return ClassifyTrend(stat.Mean(slopes, nil))
}
