package mvt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeSegment(t *testing.T) {
	a := Sample{Label: "a", Value: 0, Index: 3}
	b := Sample{Label: "b", Value: 10, Index: 4}

	tests := []struct {
		name      string
		derivA    float64
		derivB    float64
		bracketed bool
		method    CMethod
		c         float64
		fc        float64
		fprimeC   float64
		residual  float64
	}{
		{
			name:   "interior interpolation",
			derivA: 6, derivB: 14,
			bracketed: true, method: InteriorInterpolation,
			c: 3.5, fc: 5, fprimeC: 10, residual: 0,
		},
		{
			name:   "decreasing derivatives",
			derivA: 20, derivB: 0,
			bracketed: true, method: InteriorInterpolation,
			c: 3.5, fc: 5, fprimeC: 10, residual: 0,
		},
		{
			name:   "exact left hit stays interior",
			derivA: 10, derivB: 4,
			bracketed: true, method: InteriorInterpolation,
			c: 3, fc: 0, fprimeC: 10, residual: 0,
		},
		{
			name:   "midpoint tie",
			derivA: 10, derivB: 10,
			bracketed: true, method: MidpointTie,
			c: 3.5, fc: 5, fprimeC: 10, residual: 0,
		},
		{
			name:   "right endpoint closer",
			derivA: 2, derivB: 8,
			bracketed: false, method: RightEndpoint,
			c: 4, fc: 10, fprimeC: 8, residual: 2,
		},
		{
			name:   "left endpoint closer",
			derivA: 9, derivB: 1,
			bracketed: false, method: LeftEndpoint,
			c: 3, fc: 0, fprimeC: 9, residual: 1,
		},
		{
			name:   "equal derivatives off the slope tie left",
			derivA: 12, derivB: 12,
			bracketed: false, method: LeftEndpoint,
			c: 3, fc: 0, fprimeC: 12, residual: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := AnalyzeSegment(3, a, b, tt.derivA, tt.derivB)

			assert.Equal(t, 10.0, r.Slope)
			assert.Equal(t, tt.bracketed, r.Bracketed)
			assert.Equal(t, tt.method, r.CMethod)
			assert.InDelta(t, tt.c, r.CPosition, 1e-12)
			assert.InDelta(t, tt.fc, r.FCEstimate, 1e-12)
			assert.InDelta(t, tt.fprimeC, r.FPrimeCEstimate, 1e-12)
			assert.InDelta(t, tt.residual, r.Residual, 1e-12)
			assert.Equal(t, "a → b", r.SegmentLabel)
			assert.Equal(t, tt.method.Exact(), r.Residual < 1e-9)
		})
	}
}

func TestAnalyzeSegmentsNonBracketedSeries(t *testing.T) {
	samples := []Sample{
		{Label: "Q1", Value: 0, Index: 0},
		{Label: "Q2", Value: 10, Index: 1},
		{Label: "Q3", Value: 0, Index: 2},
		{Label: "Q4", Value: 10, Index: 3},
	}
	derivs := EstimateDerivatives(samples)
	records := AnalyzeSegments(samples, derivs)

	assert.Len(t, records, 3)
	assert.Equal(t, InteriorInterpolation, records[0].CMethod)
	assert.Equal(t, 0.0, records[0].CPosition)

	assert.False(t, records[1].Bracketed)
	assert.Equal(t, LeftEndpoint, records[1].CMethod)
	assert.Equal(t, 1.0, records[1].CPosition)
	assert.Equal(t, 10.0, records[1].Residual)

	assert.Equal(t, InteriorInterpolation, records[2].CMethod)
	assert.Equal(t, 3.0, records[2].CPosition)
}

func TestAnalyzeSegmentsMismatchedInput(t *testing.T) {
	samples := []Sample{{Value: 1}, {Value: 2, Index: 1}}
	assert.Nil(t, AnalyzeSegments(samples, nil))
	assert.Nil(t, AnalyzeSegments(samples[:1], nil))
}

func TestCMethodText(t *testing.T) {
	text, err := MidpointTie.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "MIDPOINT_TIE", string(text))
	assert.Equal(t, "UNKNOWN", CMethod(42).String())
	assert.NotEmpty(t, RightEndpoint.Description())
}
