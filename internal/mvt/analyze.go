// Package mvt estimates, for each pair of consecutive periods in a short time series,
// the point where the instantaneous rate of change equals the average rate of change.
// The pipeline runs Normalize -> EstimateDerivatives -> AnalyzeSegments -> Report once
// per dataset and hands a single immutable Analysis to every consumer.
package mvt

// Analysis is the complete result of one pipeline run
type Analysis struct {
	Samples      []Sample                 `json:"samples"`
	Slopes       []SlopeRow               `json:"slopes_table"`
	Derivatives  []DerivativeRow          `json:"derivatives_table"`
	Records      []MVTRecord              `json:"mvt_records"`
	Diagnostics  Diagnostics              `json:"diagnostics"`
	OverallTrend Trend                    `json:"overall_trend"`
	Warnings     []NonNumericValueWarning `json:"warnings,omitempty"`
}

// Analyze runs the derivative, segment and diagnostic stages over an ordered sample
// sequence. Sample positions define time; the returned samples are a reindexed copy,
// so the caller's slice is never modified.
func Analyze(samples []Sample) (*Analysis, error) {
	if len(samples) < MinSamples {
		return nil, &InsufficientDataError{Got: len(samples)}
	}

	ordered := make([]Sample, len(samples))
	for i, s := range samples {
		s.Index = i
		ordered[i] = s
	}

	derivs := EstimateDerivatives(ordered)
	records := AnalyzeSegments(ordered, derivs)
	diag := Report(records)

	return &Analysis{
		Samples:      ordered,
		Slopes:       slopesTable(records),
		Derivatives:  derivativesTable(ordered, derivs),
		Records:      records,
		Diagnostics:  diag,
		OverallTrend: diag.Trend,
	}, nil
}

// AnalyzeRows normalizes raw rows and analyzes the result. Dropped rows are carried
// in Analysis.Warnings. Normalization failures short-circuit before any computation.
func AnalyzeRows(rows []RawRow) (*Analysis, error) {
	ds, err := Normalize(rows)
	if err != nil {
		return nil, err
	}

	a, err := Analyze(ds.Samples)
	if err != nil {
		return nil, err
	}
	a.Warnings = ds.Warnings
	return a, nil
}

func slopesTable(records []MVTRecord) []SlopeRow {
	rows := make([]SlopeRow, len(records))
	for i, r := range records {
		rows[i] = SlopeRow{
			Period:    r.SegmentLabel,
			AValue:    r.AValue,
			BValue:    r.BValue,
			Slope:     r.Slope,
			Direction: ClassifyTrend(r.Slope),
		}
	}
	return rows
}

func derivativesTable(samples []Sample, derivs []DerivativeEstimate) []DerivativeRow {
	rows := make([]DerivativeRow, len(samples))
	for i, s := range samples {
		rows[i] = DerivativeRow{
			Label:      s.Label,
			Value:      s.Value,
			Derivative: derivs[i].Value,
			Scheme:     derivs[i].Scheme,
		}
	}
	return rows
}
