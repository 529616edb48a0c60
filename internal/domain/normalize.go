package domain

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// NormMode selects the reference signal subtracted from regional SLP before thresholding.
type NormMode int

const (
	// NormNone leaves the field unchanged.
	NormNone NormMode = iota
	// NormGlobalMean subtracts the global-mean series at each time step.
	NormGlobalMean
	// NormDetrend subtracts the linear trend of the global-mean series.
	NormDetrend
)

func (m NormMode) String() string {
	switch m {
	case NormNone:
		return "none"
	case NormGlobalMean:
		return "global_mean"
	case NormDetrend:
		return "detrend"
	default:
		return fmt.Sprintf("NormMode(%d)", int(m))
	}
}

// MarshalText encodes the mode by name.
func (m NormMode) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("%w: normalization mode %d", ErrInvalidArgument, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *NormMode) UnmarshalText(b []byte) error {
	parsed, err := ParseNormMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m NormMode) valid() bool {
	return m == NormNone || m == NormGlobalMean || m == NormDetrend
}

// ParseNormMode accepts "none", "global_mean" or "detrend".
func ParseNormMode(s string) (NormMode, error) {
	switch s {
	case "none":
		return NormNone, nil
	case "global_mean":
		return NormGlobalMean, nil
	case "detrend":
		return NormDetrend, nil
	default:
		return 0, fmt.Errorf("%w: unknown normalization mode %q", ErrInvalidArgument, s)
	}
}

// Normalize subtracts the reference selected by mode from every cell of f.
// The reference must share f's time labels; it is ignored for NormNone.
func Normalize(f Field, ref Series, mode NormMode) (Field, error) {
	switch mode {
	case NormNone:
		return f.Clone(), nil
	case NormGlobalMean:
		return subtractSeries(f, ref)
	case NormDetrend:
		trend, err := Trend(ref)
		if err != nil {
			return Field{}, fmt.Errorf("detrend: %w", err)
		}
		return subtractSeries(f, trend)
	default:
		return Field{}, fmt.Errorf("%w: normalization mode %d", ErrInvalidArgument, int(mode))
	}
}

func subtractSeries(f Field, ref Series) (Field, error) {
	if err := checkSameTime(f.Time, ref.Time); err != nil {
		return Field{}, fmt.Errorf("reference series: %w", err)
	}
	out := f.Clone()
	for t := range out.Time {
		step := out.Step(t)
		for k := range step {
			step[k] -= ref.Values[t]
		}
	}
	return out, nil
}

// Trend fits a least-squares line to s against its time labels and returns
// the fitted values at those labels.
func Trend(s Series) (Series, error) {
	if s.Len() < 2 {
		return Series{}, fmt.Errorf("%w: trend needs at least 2 points, got %d", ErrPreconditionViolation, s.Len())
	}
	if len(s.Time) != s.Len() {
		return Series{}, fmt.Errorf("%w: %d times for %d values", ErrDimensionMismatch, len(s.Time), s.Len())
	}
	x := make([]float64, len(s.Time))
	for i, year := range s.Time {
		x[i] = float64(year)
	}
	alpha, beta := stat.LinearRegression(x, s.Values, nil, false)

	fitted := make([]float64, len(x))
	for i := range x {
		fitted[i] = alpha + beta*x[i]
	}
	return Series{Time: append([]int(nil), s.Time...), Values: fitted}, nil
}
