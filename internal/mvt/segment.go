package mvt

import "math"

// TieEpsilon is the tolerance for treating equal endpoint derivatives as equal to the slope
const TieEpsilon = 1e-9

// SegmentLabel names the segment between two periods
func SegmentLabel(a, b string) string {
	return a + " → " + b
}

// AnalyzeSegments produces one MVTRecord per consecutive sample pair.
// derivs must hold one estimate per sample.
func AnalyzeSegments(samples []Sample, derivs []DerivativeEstimate) []MVTRecord {
	if len(samples) < MinSamples || len(derivs) != len(samples) {
		return nil
	}

	records := make([]MVTRecord, 0, len(samples)-1)
	for i := 0; i < len(samples)-1; i++ {
		records = append(records, AnalyzeSegment(i, samples[i], samples[i+1], derivs[i].Value, derivs[i+1].Value))
	}
	return records
}

// AnalyzeSegment locates the estimated MVT point c in [i, i+1] for the segment
// between a and b, given derivative estimates at both endpoints.
func AnalyzeSegment(i int, a, b Sample, derivA, derivB float64) MVTRecord {
	// Average rate of change; spacing is one period
	slope := b.Value - a.Value

	// Intermediate value check: does the slope lie between the endpoint derivatives?
	bracketed := math.Min(derivA, derivB) <= slope && slope <= math.Max(derivA, derivB)

	c, method := locateC(i, slope, derivA, derivB, bracketed)

	// Both the function and its derivative are interpolated linearly across the segment
	offset := c - float64(i)
	fc := a.Value + offset*(b.Value-a.Value)
	fprimeC := derivA + offset*(derivB-derivA)

	return MVTRecord{
		SegmentIndex:    i,
		SegmentLabel:    SegmentLabel(a.Label, b.Label),
		ALabel:          a.Label,
		BLabel:          b.Label,
		AValue:          a.Value,
		BValue:          b.Value,
		Slope:           slope,
		DerivA:          derivA,
		DerivB:          derivB,
		Bracketed:       bracketed,
		CPosition:       c,
		CMethod:         method,
		FCEstimate:      fc,
		FPrimeCEstimate: fprimeC,
		Residual:        math.Abs(fprimeC - slope),
	}
}

// locateC picks c for segment i. An exact endpoint hit with differing derivatives
// (frac of 0 or 1) stays InteriorInterpolation.
func locateC(i int, slope, derivA, derivB float64, bracketed bool) (float64, CMethod) {
	left := float64(i)

	switch {
	case derivA != derivB && bracketed:
		// derivA != derivB guards the division
		frac := (slope - derivA) / (derivB - derivA)
		return left + frac, InteriorInterpolation

	case derivA == derivB && math.Abs(derivA-slope) < TieEpsilon && bracketed:
		return left + 0.5, MidpointTie
	}

	// Not bracketed: fall back to the endpoint whose derivative is closest. Ties go left.
	if math.Abs(derivA-slope) <= math.Abs(derivB-slope) {
		return left, LeftEndpoint
	}
	return left + 1, RightEndpoint
}
