package mvt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawRow is an uncleaned (label, value) pair as read from a table
type RawRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Dataset is a cleaned, ordered sample sequence plus the rows that were dropped
type Dataset struct {
	Samples  []Sample                 `json:"samples"`
	Warnings []NonNumericValueWarning `json:"warnings,omitempty"`
}

// Normalize coerces raw rows into an ordered sample sequence. Rows whose value is not
// a finite number are dropped and reported as warnings. Fails with an
// *InsufficientDataError when fewer than MinSamples rows survive.
func Normalize(rows []RawRow) (Dataset, error) {
	var ds Dataset

	for row, raw := range rows {
		label := strings.TrimSpace(raw.Label)
		value, ok := parseValue(raw.Value)
		if !ok {
			ds.Warnings = append(ds.Warnings, NonNumericValueWarning{
				Row:   row,
				Label: label,
				Raw:   raw.Value,
			})
			continue
		}

		ds.Samples = append(ds.Samples, Sample{
			Label: label,
			Value: value,
			Index: len(ds.Samples),
		})
	}

	if len(ds.Samples) < MinSamples {
		return ds, &InsufficientDataError{Got: len(ds.Samples)}
	}

	return ds, nil
}

// NewSamples builds a sample sequence from already numeric values
func NewSamples(labels []string, values []float64) ([]Sample, error) {
	if len(labels) != len(values) {
		return nil, fmt.Errorf("label/value length mismatch: %d labels, %d values", len(labels), len(values))
	}
	if len(values) < MinSamples {
		return nil, &InsufficientDataError{Got: len(values)}
	}

	samples := make([]Sample, len(values))
	for i := range values {
		samples[i] = Sample{Label: labels[i], Value: values[i], Index: i}
	}
	return samples, nil
}

// parseValue reads a finite float. NaN and infinities count as non-numeric so that
// every later stage stays total.
func parseValue(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
