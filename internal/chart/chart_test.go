package chart

import (
	"testing"

	"github.com/chrissnell/mvtanalyzer/internal/mvt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analysis(t *testing.T, values ...float64) *mvt.Analysis {
	t.Helper()
	labels := make([]string, len(values))
	for i := range labels {
		labels[i] = string(rune('A' + i))
	}
	samples, err := mvt.NewSamples(labels, values)
	require.NoError(t, err)
	a, err := mvt.Analyze(samples)
	require.NoError(t, err)
	return a
}

func TestBuild(t *testing.T) {
	a := analysis(t, 100, 110, 105)
	fig := Build(a, DefaultOptions())

	assert.Equal(t, []string{"A", "B", "C"}, fig.Labels)
	assert.Equal(t, []Point{{0, 100}, {1, 110}, {2, 105}}, fig.Series)

	require.Len(t, fig.Secants, 2)
	assert.Equal(t, Line{Segment: 1, From: Point{1, 110}, To: Point{2, 105}}, fig.Secants[1])

	require.Len(t, fig.Markers, 2)
	assert.Equal(t, Point{0, 100}, fig.Markers[0].At)
	assert.Equal(t, "c≈0.00", fig.Markers[0].Annotation)
	assert.Equal(t, Point{2, 105}, fig.Markers[1].At)

	require.Len(t, fig.Tangents, 2)
	first := fig.Tangents[0]
	require.Len(t, first.Points, 50)
	// Clipped to the left edge of the series
	assert.Equal(t, 0.0, first.Points[0].X)
	assert.InDelta(t, 0.8, first.Points[49].X, 1e-12)
	assert.InDelta(t, 108.0, first.Points[49].Y, 1e-9)
	assert.Equal(t, "Tangent approx seg 0 (+10.00)", first.Label)

	last := fig.Tangents[1]
	// Clipped to the right edge
	assert.InDelta(t, 1.2, last.Points[0].X, 1e-12)
	assert.InDelta(t, 2.0, last.Points[49].X, 1e-12)
	assert.InDelta(t, 109.0, last.Points[0].Y, 1e-9)
}

func TestBuildOptions(t *testing.T) {
	a := analysis(t, 0, 1, 2, 3)
	fig := Build(a, Options{HalfWidth: 0.25, Points: 3})

	mid := fig.Tangents[1]
	require.Len(t, mid.Points, 3)
	assert.InDelta(t, 1.25, mid.Points[0].X, 1e-12)
	assert.InDelta(t, 1.5, mid.Points[1].X, 1e-12)
	assert.InDelta(t, 1.75, mid.Points[2].X, 1e-12)

	// Zero options fall back to defaults
	fig = Build(a, Options{})
	assert.Len(t, fig.Tangents[0].Points, DefaultOptions().Points)

	assert.Equal(t, Figure{}, Build(nil, DefaultOptions()))
}
