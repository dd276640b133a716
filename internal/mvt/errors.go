package mvt

import (
	"errors"
	"fmt"
)

// MinSamples is the smallest number of samples that forms a segment
const MinSamples = 2

// ErrInsufficientData matches any *InsufficientDataError via errors.Is
var ErrInsufficientData = errors.New("insufficient data for analysis")

// InsufficientDataError is returned when fewer than MinSamples valid samples remain
type InsufficientDataError struct {
	Got int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("at least %d periods are required for analysis, got %d", MinSamples, e.Got)
}

// Is lets errors.Is(err, ErrInsufficientData) succeed
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// NonNumericValueWarning describes a row dropped because its value could not be
// read as a number. It never aborts an analysis.
type NonNumericValueWarning struct {
	Row   int    `json:"row"`
	Label string `json:"label"`
	Raw   string `json:"raw"`
}

func (w NonNumericValueWarning) String() string {
	return fmt.Sprintf("row %d (%s): value %q is not numeric and was dropped", w.Row, w.Label, w.Raw)
}
