package domain

import "fmt"

// Params controls one AHA computation.
type Params struct {
	Norm             NormMode `json:"norm"`
	CutoffPercentile float64  `json:"cutoff_percentile"`
	Window           int      `json:"window"`
}

// DefaultParams returns detrended normalization, a 90th percentile cutoff and
// a 25-year window.
func DefaultParams() Params {
	return Params{Norm: NormDetrend, CutoffPercentile: DefaultCutoffPercentile, Window: DefaultWindow}
}

// Validate checks the ranges that do not depend on the series length.
func (p Params) Validate() error {
	if !p.Norm.valid() {
		return fmt.Errorf("%w: normalization mode %d", ErrInvalidArgument, int(p.Norm))
	}
	if !(p.CutoffPercentile > 0 && p.CutoffPercentile < 100) {
		return fmt.Errorf("%w: cutoff percentile %g outside (0, 100)", ErrInvalidArgument, p.CutoffPercentile)
	}
	if p.Window < 1 {
		return fmt.Errorf("%w: window %d must be at least 1", ErrInvalidArgument, p.Window)
	}
	return nil
}

// Key identifies p for caching.
func (p Params) Key() string {
	return fmt.Sprintf("%s|%g|%d", p.Norm, p.CutoffPercentile, p.Window)
}
