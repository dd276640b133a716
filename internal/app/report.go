package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chrissnell/mvtanalyzer/internal/chart"
	"github.com/chrissnell/mvtanalyzer/internal/dataset"
	"github.com/chrissnell/mvtanalyzer/internal/mvt"
	"github.com/chrissnell/mvtanalyzer/internal/narrate"
	"github.com/chrissnell/mvtanalyzer/pkg/config"
	"github.com/chrissnell/mvtanalyzer/pkg/responseformat"
)

// Output formats accepted by WriteReport
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatMsgPack = "msgpack"
)

// Source selects the rows of a one-shot analysis. Input takes precedence over
// Dataset; "-" reads from stdin.
type Source struct {
	Input   string
	Dataset string
}

// Result is the machine-readable output of a one-shot analysis
type Result struct {
	Dataset   string            `json:"dataset"`
	Analysis  *mvt.Analysis     `json:"analysis"`
	Chart     chart.Figure      `json:"chart"`
	Narration narrate.Narration `json:"narration"`
}

// LoadRows resolves a source against the configured datasets and returns the
// rows with the name they were loaded under
func LoadRows(cfg *config.ConfigData, src Source, stdin io.Reader) (string, []mvt.RawRow, error) {
	switch src.Input {
	case "":
	case "-":
		rows, err := dataset.ReadCSV(stdin)
		return "stdin", rows, err
	default:
		f, err := os.Open(src.Input)
		if err != nil {
			return "", nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		rows, err := dataset.ReadCSV(f)
		return src.Input, rows, err
	}

	name := src.Dataset
	if name == "" {
		name = cfg.Analysis.DefaultDataset
	}
	rows, err := dataset.NewRegistry(cfg.Datasets).Rows(name)
	return name, rows, err
}

// WriteReport runs the analysis once and writes it in the requested format
func WriteReport(w io.Writer, cfg *config.ConfigData, name string, rows []mvt.RawRow, format string) error {
	a, err := mvt.AnalyzeRows(rows)
	if err != nil {
		return err
	}

	switch format {
	case FormatText, "":
		return writeText(w, name, a)
	case FormatJSON, FormatMsgPack:
		fig := chart.Build(a, chart.Options{
			HalfWidth: cfg.Analysis.TangentHalfWidth,
			Points:    cfg.Analysis.TangentPoints,
		})
		res := Result{
			Dataset:   name,
			Analysis:  a,
			Chart:     fig,
			Narration: narrate.Build(a),
		}
		b, err := responseformat.Encode(format, res)
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		if format == FormatJSON {
			b = append(b, '\n')
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func writeText(w io.Writer, name string, a *mvt.Analysis) error {
	title := fmt.Sprintf("Mean Value Theorem analysis: %s", name)
	fmt.Fprintf(w, "%s\n%s\n\n", title, strings.Repeat("=", len([]rune(title))))

	fmt.Fprintf(w, "Slopes\n")
	fmt.Fprintf(w, "%-24s | %10s | %10s | %10s | %-8s\n", "Period", "f(a)", "f(b)", "Slope", "Trend")
	fmt.Fprintf(w, "-------------------------+------------+------------+------------+---------\n")
	for _, row := range a.Slopes {
		fmt.Fprintf(w, "%-24s | %10.3f | %10.3f | %10.3f | %-8s\n", row.Period, row.AValue, row.BValue, row.Slope, row.Direction)
	}

	fmt.Fprintf(w, "\nDerivative estimates\n")
	fmt.Fprintf(w, "%-12s | %10s | %10s | %-8s\n", "Period", "Value", "f'", "Scheme")
	fmt.Fprintf(w, "-------------+------------+------------+---------\n")
	for _, row := range a.Derivatives {
		fmt.Fprintf(w, "%-12s | %10.3f | %10.3f | %-8s\n", row.Label, row.Value, row.Derivative, row.Scheme)
	}

	fmt.Fprintf(w, "\nMean value points\n")
	fmt.Fprintf(w, "%-24s | %8s | %10s | %10s | %10s | %-22s\n", "Segment", "c", "f(c)", "f'(c)", "Residual", "Method")
	fmt.Fprintf(w, "-------------------------+----------+------------+------------+------------+-----------------------\n")
	for _, r := range a.Records {
		fmt.Fprintf(w, "%-24s | %8.3f | %10.3f | %10.3f | %10.2e | %-22s\n",
			r.SegmentLabel, r.CPosition, r.FCEstimate, r.FPrimeCEstimate, r.Residual, r.CMethod)
	}

	d := a.Diagnostics
	fmt.Fprintf(w, "\nDiagnostics\n")
	fmt.Fprintf(w, "  Mean slope:    %.4f\n", d.MeanSlope)
	fmt.Fprintf(w, "  Mean residual: %.2e\n", d.MeanResidual)
	fmt.Fprintf(w, "  Max residual:  %.2e\n", d.MaxResidual)
	fmt.Fprintf(w, "  Bracketed:     %d of %d segments\n", d.Bracketed, len(a.Records))
	fmt.Fprintf(w, "  Overall trend: %s\n\n", a.OverallTrend)

	return narrate.Render(w, a)
}
