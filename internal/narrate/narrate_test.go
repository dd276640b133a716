package narrate

import (
	"bytes"
	"testing"

	"github.com/chrissnell/mvtanalyzer/internal/mvt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	a, err := mvt.AnalyzeRows([]mvt.RawRow{
		{Label: "Q1", Value: "0"},
		{Label: "Q2", Value: "10"},
		{Label: "Q3", Value: "bad"},
		{Label: "Q4", Value: "0"},
		{Label: "Q5", Value: "10"},
	})
	require.NoError(t, err)

	n := Build(a)
	require.Len(t, n.Warnings, 1)
	require.Len(t, n.Sections, 3)

	bracketed := n.Sections[0]
	assert.Equal(t, "Q1 → Q2", bracketed.Segment)
	assert.Len(t, bracketed.Steps, 7)
	assert.Contains(t, bracketed.Steps[3], "lies between")
	assert.Contains(t, bracketed.Interpretation[0], "slope > 0")

	fallback := n.Sections[1]
	assert.Len(t, fallback.Steps, 6)
	assert.Contains(t, fallback.Steps[3], "does not lie between")
	assert.Contains(t, fallback.Steps[4], "left endpoint")
	assert.Contains(t, fallback.Interpretation[0], "slope < 0")

	assert.Equal(t, Summary(mvt.TrendGrowth), n.Summary)
}

func TestRender(t *testing.T) {
	samples, err := mvt.NewSamples([]string{"P1", "P2"}, []float64{5, 5})
	require.NoError(t, err)
	a, err := mvt.Analyze(samples)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, a))

	out := buf.String()
	assert.Contains(t, out, "== P1 → P2 ==")
	assert.Contains(t, out, "midpoint chosen")
	assert.Contains(t, out, "slope = 0")
	assert.Contains(t, out, Summary(mvt.TrendStable))
	assert.NotContains(t, out, "warning:")
}

func TestBuildNil(t *testing.T) {
	assert.Equal(t, Narration{}, Build(nil))
}
