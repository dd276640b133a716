package dataset

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/chrissnell/mvtanalyzer/internal/mvt"
	"github.com/chrissnell/mvtanalyzer/pkg/config"
)

// SampleName is the name under which the built-in dataset is always registered
const SampleName = "sample"

// ErrUnknownDataset is returned when a dataset name is not registered
var ErrUnknownDataset = errors.New("unknown dataset")

// Sample returns the built-in six-quarter dataset for a hypothetical company
func Sample() []mvt.RawRow {
	return []mvt.RawRow{
		{Label: "Q1 2024", Value: "120.5"},
		{Label: "Q2 2024", Value: "138.2"},
		{Label: "Q3 2024", Value: "142.8"},
		{Label: "Q4 2024", Value: "135.6"},
		{Label: "Q1 2025", Value: "150.3"},
		{Label: "Q2 2025", Value: "155.9"},
	}
}

// Registry resolves dataset names to raw rows
type Registry struct {
	datasets map[string]config.DatasetData
}

// NewRegistry builds a registry from configured datasets. The built-in sample is
// registered unless the configuration defines its own dataset named "sample".
func NewRegistry(datasets []config.DatasetData) *Registry {
	r := &Registry{datasets: make(map[string]config.DatasetData)}
	for _, ds := range datasets {
		r.datasets[ds.Name] = ds
	}
	if _, exists := r.datasets[SampleName]; !exists {
		r.datasets[SampleName] = config.DatasetData{
			Name:        SampleName,
			Description: "Built-in quarterly sample (hypothetical company)",
			Rows:        toConfigRows(Sample()),
		}
	}
	return r
}

// Names returns all registered dataset names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.datasets))
	for name := range r.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the configuration of a dataset
func (r *Registry) Describe(name string) (config.DatasetData, error) {
	ds, ok := r.datasets[name]
	if !ok {
		return config.DatasetData{}, fmt.Errorf("%s: %w", name, ErrUnknownDataset)
	}
	return ds, nil
}

// Rows loads the raw rows of a dataset. Datasets backed by a file are re-read on
// every call.
func (r *Registry) Rows(name string) ([]mvt.RawRow, error) {
	ds, err := r.Describe(name)
	if err != nil {
		return nil, err
	}

	if ds.File == "" {
		rows := make([]mvt.RawRow, len(ds.Rows))
		for i, row := range ds.Rows {
			rows[i] = mvt.RawRow{Label: row.Label, Value: row.Value}
		}
		return rows, nil
	}

	f, err := os.Open(ds.File)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", name, err)
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", name, err)
	}
	return rows, nil
}

func toConfigRows(rows []mvt.RawRow) []config.DatasetRow {
	out := make([]config.DatasetRow, len(rows))
	for i, row := range rows {
		out[i] = config.DatasetRow{Label: row.Label, Value: row.Value}
	}
	return out
}
