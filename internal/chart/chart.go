// Package chart computes the geometry of the MVT chart: the raw series, the secant
// of every segment, the estimated MVT points and short tangent segments through them.
// Rendering is left to the client.
package chart

import (
	"fmt"
	"math"

	"github.com/chrissnell/mvtanalyzer/internal/mvt"
	"gonum.org/v1/gonum/floats"
)

// Options bounds the tangent segments drawn around each MVT point
type Options struct {
	HalfWidth float64
	Points    int
}

// DefaultOptions matches the classic chart: tangents span c±0.8 with 50 samples
func DefaultOptions() Options {
	return Options{HalfWidth: 0.8, Points: 50}
}

// Point is an (x, y) pair in series coordinates; x is the sample index
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Line is the secant of one segment
type Line struct {
	Segment int   `json:"segment"`
	From    Point `json:"from"`
	To      Point `json:"to"`
}

// Marker is an estimated MVT point
type Marker struct {
	Segment    int     `json:"segment"`
	At         Point   `json:"at"`
	Annotation string  `json:"annotation"`
	Slope      float64 `json:"slope"`
}

// Tangent is a line of slope Slope through a marker, sampled over a bounded window
type Tangent struct {
	Segment int     `json:"segment"`
	Slope   float64 `json:"slope"`
	Label   string  `json:"label"`
	Points  []Point `json:"points"`
}

// Figure holds everything needed to draw the chart
type Figure struct {
	Labels   []string  `json:"labels"`
	Series   []Point   `json:"series"`
	Secants  []Line    `json:"secants"`
	Markers  []Marker  `json:"markers"`
	Tangents []Tangent `json:"tangents"`
}

// Build derives chart geometry from a finished analysis
func Build(a *mvt.Analysis, opts Options) Figure {
	if opts.HalfWidth <= 0 {
		opts.HalfWidth = DefaultOptions().HalfWidth
	}
	if opts.Points < 2 {
		opts.Points = DefaultOptions().Points
	}

	var fig Figure
	if a == nil {
		return fig
	}

	n := len(a.Samples)
	lastX := float64(n - 1)

	for _, s := range a.Samples {
		fig.Labels = append(fig.Labels, s.Label)
		fig.Series = append(fig.Series, Point{X: float64(s.Index), Y: s.Value})
	}

	for _, r := range a.Records {
		i := float64(r.SegmentIndex)
		fig.Secants = append(fig.Secants, Line{
			Segment: r.SegmentIndex,
			From:    Point{X: i, Y: r.AValue},
			To:      Point{X: i + 1, Y: r.BValue},
		})

		at := Point{X: r.CPosition, Y: r.FCEstimate}
		fig.Markers = append(fig.Markers, Marker{
			Segment:    r.SegmentIndex,
			At:         at,
			Annotation: fmt.Sprintf("c≈%.2f", r.CPosition),
			Slope:      r.Slope,
		})

		lo := math.Max(0, r.CPosition-opts.HalfWidth)
		hi := math.Min(lastX, r.CPosition+opts.HalfWidth)
		xs := floats.Span(make([]float64, opts.Points), lo, hi)

		tangent := Tangent{
			Segment: r.SegmentIndex,
			Slope:   r.Slope,
			Label:   fmt.Sprintf("Tangent approx seg %d (%+.2f)", r.SegmentIndex, r.Slope),
			Points:  make([]Point, len(xs)),
		}
		for k, x := range xs {
			tangent.Points[k] = Point{X: x, Y: at.Y + r.Slope*(x-at.X)}
		}
		fig.Tangents = append(fig.Tangents, tangent)
	}

	return fig
}
