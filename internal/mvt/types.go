package mvt

// Sample is a single labeled observation. Index is the position in the ordered
// sequence and stands in for elapsed time with unit spacing between samples.
type Sample struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Index int     `json:"index"`
}

// DerivativeEstimate is the approximate instantaneous rate of change at one sample
type DerivativeEstimate struct {
	SampleIndex int              `json:"sample_index"`
	Value       float64          `json:"value"`
	Scheme      DifferenceScheme `json:"scheme"`
}

// DifferenceScheme identifies the finite difference used for a derivative estimate
type DifferenceScheme int

const (
	// SchemeSecant is used when only two samples exist and both ends share the one slope
	SchemeSecant DifferenceScheme = iota

	// SchemeForward is y[1]-y[0], used at the first sample
	SchemeForward

	// SchemeBackward is y[n-1]-y[n-2], used at the last sample
	SchemeBackward

	// SchemeCentral is (y[i+1]-y[i-1])/2, used at interior samples
	SchemeCentral
)

var schemeNames = map[DifferenceScheme]string{
	SchemeSecant:   "SECANT",
	SchemeForward:  "FORWARD",
	SchemeBackward: "BACKWARD",
	SchemeCentral:  "CENTRAL",
}

func (s DifferenceScheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText implements encoding.TextMarshaler
func (s DifferenceScheme) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CMethod records how the MVT point c was located within a segment
type CMethod int

const (
	// InteriorInterpolation interpolates linearly between the two endpoint derivatives
	InteriorInterpolation CMethod = iota

	// MidpointTie is used when both endpoint derivatives coincide with the slope
	MidpointTie

	// LeftEndpoint is the fallback when the slope is not bracketed and the left
	// derivative is at least as close to it as the right one
	LeftEndpoint

	// RightEndpoint is the fallback when the right derivative is strictly closer
	RightEndpoint
)

var cMethodNames = map[CMethod]string{
	InteriorInterpolation: "INTERIOR_INTERPOLATION",
	MidpointTie:           "MIDPOINT_TIE",
	LeftEndpoint:          "LEFT_ENDPOINT",
	RightEndpoint:         "RIGHT_ENDPOINT",
}

var cMethodDescriptions = map[CMethod]string{
	InteriorInterpolation: "linear interpolation between the endpoint derivative estimates",
	MidpointTie:           "both derivatives equal the slope, any point works; midpoint chosen",
	LeftEndpoint:          "slope not bracketed; left endpoint has the closest derivative",
	RightEndpoint:         "slope not bracketed; right endpoint has the closest derivative",
}

func (m CMethod) String() string {
	if name, ok := cMethodNames[m]; ok {
		return name
	}
	return "UNKNOWN"
}

// Description returns a human readable explanation of the method
func (m CMethod) Description() string {
	return cMethodDescriptions[m]
}

// Exact reports whether the method is expected to yield a near-zero residual
func (m CMethod) Exact() bool {
	return m == InteriorInterpolation || m == MidpointTie
}

// MarshalText implements encoding.TextMarshaler
func (m CMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Trend classifies the direction of change of a slope or of the whole series
type Trend int

const (
	TrendStable Trend = iota
	TrendGrowth
	TrendDecline
)

func (t Trend) String() string {
	switch t {
	case TrendGrowth:
		return "GROWTH"
	case TrendDecline:
		return "DECLINE"
	default:
		return "STABLE"
	}
}

// MarshalText implements encoding.TextMarshaler
func (t Trend) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ClassifyTrend maps a rate of change onto GROWTH, DECLINE or STABLE by its sign.
// Only an exact zero is STABLE.
func ClassifyTrend(rate float64) Trend {
	switch {
	case rate > 0:
		return TrendGrowth
	case rate < 0:
		return TrendDecline
	default:
		return TrendStable
	}
}

// MVTRecord is the estimated Mean Value Theorem point for one segment
// between samples i and i+1, along with its residual diagnostic.
type MVTRecord struct {
	SegmentIndex    int     `json:"segment_index"`
	SegmentLabel    string  `json:"segment_label"`
	ALabel          string  `json:"a_label"`
	BLabel          string  `json:"b_label"`
	AValue          float64 `json:"a_value"`
	BValue          float64 `json:"b_value"`
	Slope           float64 `json:"slope"`
	DerivA          float64 `json:"deriv_a"`
	DerivB          float64 `json:"deriv_b"`
	Bracketed       bool    `json:"bracketed"`
	CPosition       float64 `json:"c_position"`
	CMethod         CMethod `json:"c_method"`
	FCEstimate      float64 `json:"f_c_estimate"`
	FPrimeCEstimate float64 `json:"fprime_c_estimate"`
	Residual        float64 `json:"residual"`
}

// Fraction returns how far c lies into the segment, in [0, 1]
func (r MVTRecord) Fraction() float64 {
	return r.CPosition - float64(r.SegmentIndex)
}

// SlopeRow is one row of the slopes table
type SlopeRow struct {
	Period    string  `json:"period"`
	AValue    float64 `json:"a_value"`
	BValue    float64 `json:"b_value"`
	Slope     float64 `json:"slope"`
	Direction Trend   `json:"direction"`
}

// DerivativeRow is one row of the derivatives table
type DerivativeRow struct {
	Label      string           `json:"label"`
	Value      float64          `json:"value"`
	Derivative float64          `json:"derivative"`
	Scheme     DifferenceScheme `json:"scheme"`
}
