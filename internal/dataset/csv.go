// Package dataset sources raw (period, value) rows for analysis: delimited uploads,
// the built-in sample set and named datasets from configuration.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/chrissnell/mvtanalyzer/internal/mvt"
)

// ErrBadColumns is returned when a table does not expose a period and a value column
var ErrBadColumns = errors.New("table must have a period column and a value column")

// Header names accepted for each column, compared case-insensitively
var (
	labelHeaders = []string{"period", "label", "kỳ", "ky"}
	valueHeaders = []string{"value", "giá trị", "gia tri"}
)

// ReadCSV reads a delimited table with a header row into raw rows. Columns are located
// by header name. In a two column table one named column is enough, and a table with
// no named columns is read positionally.
// Values are left as text so the normalizer can report the ones that are not numeric.
func ReadCSV(r io.Reader) ([]mvt.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty table: %w", ErrBadColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	labelCol, valueCol, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []mvt.RawRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		// Blank lines are skipped by encoding/csv; short rows get empty fields
		rows = append(rows, mvt.RawRow{
			Label: field(record, labelCol),
			Value: field(record, valueCol),
		})
	}

	return rows, nil
}

func locateColumns(header []string) (int, int, error) {
	labelCol, valueCol := -1, -1
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		switch {
		case labelCol < 0 && slices.Contains(labelHeaders, name):
			labelCol = i
		case valueCol < 0 && slices.Contains(valueHeaders, name):
			valueCol = i
		}
	}

	if labelCol >= 0 && valueCol >= 0 {
		return labelCol, valueCol, nil
	}
	if len(header) == 2 {
		// One named column fixes the other as its partner
		switch {
		case labelCol >= 0:
			return labelCol, 1 - labelCol, nil
		case valueCol >= 0:
			return 1 - valueCol, valueCol, nil
		}
		return 0, 1, nil
	}
	return -1, -1, fmt.Errorf("header %q: %w", strings.Join(header, ","), ErrBadColumns)
}

func field(record []string, col int) string {
	if col < len(record) {
		return record[col]
	}
	return ""
}
