// Package narrate explains an analysis step by step in plain text, one section per
// segment, followed by an overall summary.
package narrate

import (
	"fmt"
	"io"
	"text/template"

	"github.com/chrissnell/mvtanalyzer/internal/mvt"
)

// Section is the step-by-step explanation of one segment
type Section struct {
	Segment        string   `json:"segment"`
	Steps          []string `json:"steps"`
	Interpretation []string `json:"interpretation"`
}

// Narration is the complete explanation of an analysis
type Narration struct {
	Warnings []string  `json:"warnings,omitempty"`
	Sections []Section `json:"sections"`
	Summary  string    `json:"summary"`
}

// Build explains every segment of the analysis
func Build(a *mvt.Analysis) Narration {
	var n Narration
	if a == nil {
		return n
	}

	for _, w := range a.Warnings {
		n.Warnings = append(n.Warnings, w.String())
	}
	for _, r := range a.Records {
		n.Sections = append(n.Sections, explain(r))
	}
	n.Summary = Summary(a.OverallTrend)
	return n
}

// Summary returns the qualitative conclusion for an overall trend
func Summary(t mvt.Trend) string {
	switch t {
	case mvt.TrendGrowth:
		return "The business is growing at a steady average rate over this period."
	case mvt.TrendDecline:
		return "The business shows a slight declining tendency over this period."
	default:
		return "The business is stable, with no significant overall change."
	}
}

func explain(r mvt.MVTRecord) Section {
	s := Section{Segment: r.SegmentLabel}

	s.Steps = append(s.Steps,
		fmt.Sprintf("Step 1 - input: a = %s = %.3f, b = %s = %.3f", r.ALabel, r.AValue, r.BLabel, r.BValue),
		fmt.Sprintf("Step 2 - average rate of change: slope = (f(b) - f(a)) / (t_b - t_a) = (%.3f - %.3f) / 1 = %+.3f",
			r.BValue, r.AValue, r.Slope),
		fmt.Sprintf("Step 3 - endpoint derivatives: f'(%s) ≈ %+.3f, f'(%s) ≈ %+.3f", r.ALabel, r.DerivA, r.BLabel, r.DerivB),
	)

	if r.Bracketed {
		s.Steps = append(s.Steps,
			fmt.Sprintf("Step 4 - intermediate value: slope %+.3f lies between f'(%s) and f'(%s), so some c in (%s, %s) has f'(c) = slope",
				r.Slope, r.ALabel, r.BLabel, r.ALabel, r.BLabel),
			fmt.Sprintf("Step 5 - locate c: %s; c ≈ %.3f (%.3f of the way from %s to %s)",
				r.CMethod.Description(), r.CPosition, r.Fraction(), r.ALabel, r.BLabel),
			fmt.Sprintf("f(c) by linear interpolation ≈ %.3f; f'(c) by interpolating the endpoint derivatives ≈ %+.3f",
				r.FCEstimate, r.FPrimeCEstimate),
			fmt.Sprintf("residual |f'(c) - slope| = %.3e (should be small)", r.Residual),
		)
	} else {
		s.Steps = append(s.Steps,
			fmt.Sprintf("Step 4 - intermediate value: slope %+.3f does not lie between f'(%s) and f'(%s)",
				r.Slope, r.ALabel, r.BLabel),
			fmt.Sprintf("Step 5 - locate c: %s; c = %.3f", r.CMethod.Description(), r.CPosition),
			fmt.Sprintf("f(c) ≈ %.3f, f'(c) ≈ %+.3f, residual = %.3e", r.FCEstimate, r.FPrimeCEstimate, r.Residual),
		)
	}

	switch mvt.ClassifyTrend(r.Slope) {
	case mvt.TrendGrowth:
		s.Interpretation = []string{
			"slope > 0: the metric increased on average over this interval.",
			"c marks the moment growth ran exactly at the average pace (peak momentum).",
		}
	case mvt.TrendDecline:
		s.Interpretation = []string{
			"slope < 0: the metric decreased on average over this interval.",
			"c may mark a point worth a management review of this interval.",
		}
	default:
		s.Interpretation = []string{"slope = 0: no overall change over this interval."}
	}

	return s
}

var textTemplate = template.Must(template.New("narration").Parse(`{{range .Warnings}}warning: {{.}}
{{end}}{{range .Sections}}== {{.Segment}} ==
{{range .Steps}}  {{.}}
{{end}}{{range .Interpretation}}  - {{.}}
{{end}}
{{end}}{{.Summary}}
`))

// Render writes the narration of a as plain text
func Render(w io.Writer, a *mvt.Analysis) error {
	return textTemplate.Execute(w, Build(a))
}
