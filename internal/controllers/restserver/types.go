package restserver

import (
	"encoding/json"
	"strings"

	"github.com/chrissnell/mvtanalyzer/internal/chart"
	"github.com/chrissnell/mvtanalyzer/internal/mvt"
	"github.com/chrissnell/mvtanalyzer/internal/narrate"
)

// AnalyzeRequest is the JSON body of POST /api/analyze
type AnalyzeRequest struct {
	Rows []RequestRow `json:"rows"`
}

// RequestRow accepts the value as either a JSON number or a string
type RequestRow struct {
	Label json.RawMessage `json:"label"`
	Value json.RawMessage `json:"value"`
}

// rawRows converts request rows into normalizer input; labels are coerced to text
func (r AnalyzeRequest) rawRows() []mvt.RawRow {
	rows := make([]mvt.RawRow, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = mvt.RawRow{
			Label: rawText(row.Label),
			Value: rawText(row.Value),
		}
	}
	return rows
}

// rawText returns a JSON string unquoted, null as empty, and anything else verbatim
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

// AnalyzeResponse wraps one pipeline run
type AnalyzeResponse struct {
	ID        string             `json:"id"`
	Dataset   string             `json:"dataset,omitempty"`
	Analysis  *mvt.Analysis      `json:"analysis"`
	Chart     *chart.Figure      `json:"chart,omitempty"`
	Narration *narrate.Narration `json:"narration,omitempty"`
}

// DatasetInfo describes a registered dataset
type DatasetInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
	Default     bool   `json:"default,omitempty"`
}

// HealthResponse is returned by /healthz
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
